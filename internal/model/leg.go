package model

import "time"

// OptionType distinguishes puts from calls.
type OptionType string

const (
	OptionPut  OptionType = "Put"
	OptionCall OptionType = "Call"
)

// LegAction is the broker-side order action for one option leg.
type LegAction string

const (
	SellToOpen  LegAction = "STO"
	BuyToOpen   LegAction = "BTO"
	SellToClose LegAction = "STC"
	BuyToClose  LegAction = "BTC"
)

// Opens reports whether the action opens a position.
func (a LegAction) Opens() bool {
	return a == SellToOpen || a == BuyToOpen
}

// Closes reports whether the action closes a position.
func (a LegAction) Closes() bool {
	return a == SellToClose || a == BuyToClose
}

// SpreadLeg is one open or close instruction parsed from a broker export row.
type SpreadLeg struct {
	Symbol     string
	Expiration time.Time
	Strike     float64
	OptionType OptionType
	Action     LegAction
	Quantity   int
	Price      float64
	Timestamp  time.Time
}

// LegKey is the structural pairing key: an open leg is matched to the close
// leg sharing the same key.
type LegKey struct {
	Symbol     string
	Expiration string // YYYY-MM-DD
	Strike     float64
	OptionType OptionType
}

// Key returns the pairing key for the leg.
func (l SpreadLeg) Key() LegKey {
	return LegKey{
		Symbol:     l.Symbol,
		Expiration: l.Expiration.Format("2006-01-02"),
		Strike:     l.Strike,
		OptionType: l.OptionType,
	}
}
