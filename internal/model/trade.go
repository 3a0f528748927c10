package model

import (
	"math"
	"time"
)

// Strategy identifies which trading strategy a record belongs to.
type Strategy string

// Strategy values as they appear in the journal sheet.
const (
	StrategyWheel            Strategy = "Wheel Strategy"
	StrategyPutCreditSpread  Strategy = "Put Credit Spread"
	StrategyCallCreditSpread Strategy = "Call Credit Spread"
)

// Process identifies the step within a strategy's lifecycle.
type Process string

// Process values as they appear in the journal sheet.
const (
	ProcessSellPut     Process = "Sell Put"
	ProcessAssignment  Process = "Assignment"
	ProcessCoveredCall Process = "Covered Call"
	ProcessCalledAway  Process = "Called Away"
	ProcessSellPCS     Process = "Sell PCS"
	ProcessSellCCS     Process = "Sell CCS"
)

// Result is the current outcome of a trade record.
type Result string

// Result values as they appear in the journal sheet.
const (
	ResultOpen             Result = "Open"
	ResultAssigned         Result = "Assigned"
	ResultShares           Result = "Shares"
	ResultCalledAway       Result = "Called Away"
	ResultClosed           Result = "Closed"
	ResultExpiredWorthless Result = "Expired Worthless"
	ResultBoughtBack       Result = "Bought Back"
)

// TradeRecord is one row of the journal. A record is immutable once appended
// except for Result, AssignedPrice, SharesOwned and PL, which later lifecycle
// steps mutate in place.
//
// SourceRowID links a derived step (Assignment, Covered Call) to the record
// it was created from. Legacy rows imported without an ID are resolved with
// the most-recent-matching-row heuristic instead.
type TradeRecord struct {
	ID              string    `json:"id"`
	SourceRowID     string    `json:"sourceRowId,omitempty"`
	Strategy        Strategy  `json:"strategy"`
	Process         Process   `json:"process"`
	Ticker          string    `json:"ticker"`
	Date            time.Time `json:"date"`
	Strike          float64   `json:"strike"`
	LongStrike      *float64  `json:"longStrike,omitempty"`
	Width           *float64  `json:"width,omitempty"`
	Delta           *float64  `json:"delta,omitempty"`
	DTE             *int      `json:"dte,omitempty"`
	CreditCollected float64   `json:"creditCollected"`
	Qty             int       `json:"qty"`
	Expiration      time.Time `json:"expiration"`
	Result          Result    `json:"result"`
	AssignedPrice   *float64  `json:"assignedPrice,omitempty"`
	CurrentPrice    *float64  `json:"currentPriceAtTime,omitempty"`
	PL              float64   `json:"pl"`
	SharesOwned     *int      `json:"sharesOwned,omitempty"`
	Notes           string    `json:"notes,omitempty"`

	// RowNumber is the record's 1-based position in the backing row store,
	// including the header offset. It is addressing metadata, not a cell.
	RowNumber int `json:"rowNumber"`
}

// SpreadWidth returns |short strike - long strike| for a spread, or nil when
// either leg is absent.
func SpreadWidth(shortStrike float64, longStrike *float64) *float64 {
	if shortStrike == 0 || longStrike == nil {
		return nil
	}
	w := math.Abs(shortStrike - *longStrike)
	return &w
}

// RoundCents rounds a dollar amount to 2 decimal places. Profit/loss is
// rounded once, at the point of persistence, never between steps.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
