package request

// AssignRequest confirms assignment of an open Sell Put.
type AssignRequest struct {
	AssignedPrice float64 `json:"assignedPrice"`
}

// CoveredCallRequest opens a covered call against held shares.
type CoveredCallRequest struct {
	Strike     float64  `json:"strike"`
	Credit     float64  `json:"creditCollected"`
	Expiration string   `json:"expiration"`
	Delta      *float64 `json:"delta,omitempty"`
	DTE        *int     `json:"dte,omitempty"`
}

// CloseCallRequest finalizes an open covered call.
// Result is "Called Away" or "Expired Worthless".
type CloseCallRequest struct {
	Result string `json:"result"`
}

// ClosePutRequest finalizes an open Sell Put without assignment.
// Result is "Expired Worthless" or "Bought Back"; BuybackPrice is the
// per-contract debit paid when buying back.
type ClosePutRequest struct {
	Result       string  `json:"result"`
	BuybackPrice float64 `json:"buybackPrice,omitempty"`
}
