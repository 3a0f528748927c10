package request

// CreateTradeRequest opens a new journal entry: a wheel Sell Put or a
// credit-spread position. Dates are YYYY-MM-DD strings.
type CreateTradeRequest struct {
	Strategy   string   `json:"strategy"`
	Ticker     string   `json:"ticker"`
	Date       string   `json:"date,omitempty"`
	Strike     float64  `json:"strike"`
	LongStrike *float64 `json:"longStrike,omitempty"`
	Delta      *float64 `json:"delta,omitempty"`
	DTE        *int     `json:"dte,omitempty"`
	Credit     float64  `json:"creditCollected"`
	Qty        int      `json:"qty"`
	Expiration string   `json:"expiration"`
	Notes      string   `json:"notes,omitempty"`
}
