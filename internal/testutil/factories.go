package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/ordonezjosue/wheeltracker/internal/model"
	"github.com/ordonezjosue/wheeltracker/internal/repository"
)

// TradeBuilder provides a fluent interface for creating test journal rows.
//
// Example usage:
//
//	// Simple creation with defaults (an open Sell Put)
//	trade := testutil.NewTrade().Build(t, repo)
//
//	// Customized trade
//	trade := testutil.NewTrade().
//	    WithTicker("SOFI").
//	    WithStrike(7.50).
//	    WithCredit(0.45).
//	    Build(t, repo)
type TradeBuilder struct {
	trade model.TradeRecord
}

// NewTrade creates a TradeBuilder with sensible defaults: an open wheel
// Sell Put, one contract, dated today.
func NewTrade() *TradeBuilder {
	return &TradeBuilder{
		trade: model.TradeRecord{
			ID:              MakeID(),
			Strategy:        model.StrategyWheel,
			Process:         model.ProcessSellPut,
			Ticker:          "AAPL",
			Date:            time.Now().UTC().Truncate(24 * time.Hour),
			Strike:          100,
			CreditCollected: 1.50,
			Qty:             1,
			Expiration:      time.Now().UTC().AddDate(0, 0, 30).Truncate(24 * time.Hour),
			Result:          model.ResultOpen,
		},
	}
}

// WithID sets a custom ID.
func (b *TradeBuilder) WithID(id string) *TradeBuilder {
	b.trade.ID = id
	return b
}

// WithSourceRowID links the row to its originating row.
func (b *TradeBuilder) WithSourceRowID(id string) *TradeBuilder {
	b.trade.SourceRowID = id
	return b
}

// WithStrategy sets the strategy.
func (b *TradeBuilder) WithStrategy(s model.Strategy) *TradeBuilder {
	b.trade.Strategy = s
	return b
}

// WithProcess sets the lifecycle step.
func (b *TradeBuilder) WithProcess(p model.Process) *TradeBuilder {
	b.trade.Process = p
	return b
}

// WithTicker sets the underlying symbol.
func (b *TradeBuilder) WithTicker(ticker string) *TradeBuilder {
	b.trade.Ticker = ticker
	return b
}

// WithDate sets the entry date.
func (b *TradeBuilder) WithDate(d time.Time) *TradeBuilder {
	b.trade.Date = d
	return b
}

// WithStrike sets the short strike.
func (b *TradeBuilder) WithStrike(strike float64) *TradeBuilder {
	b.trade.Strike = strike
	return b
}

// WithLongStrike sets the long strike of a spread.
func (b *TradeBuilder) WithLongStrike(strike float64) *TradeBuilder {
	b.trade.LongStrike = &strike
	return b
}

// WithCredit sets the per-contract credit collected.
func (b *TradeBuilder) WithCredit(credit float64) *TradeBuilder {
	b.trade.CreditCollected = credit
	return b
}

// WithQty sets the contract count.
func (b *TradeBuilder) WithQty(qty int) *TradeBuilder {
	b.trade.Qty = qty
	return b
}

// WithExpiration sets the expiration date.
func (b *TradeBuilder) WithExpiration(d time.Time) *TradeBuilder {
	b.trade.Expiration = d
	return b
}

// WithResult sets the outcome.
func (b *TradeBuilder) WithResult(r model.Result) *TradeBuilder {
	b.trade.Result = r
	return b
}

// WithAssignedPrice sets the share cost basis from assignment.
func (b *TradeBuilder) WithAssignedPrice(price float64) *TradeBuilder {
	b.trade.AssignedPrice = &price
	return b
}

// WithSharesOwned sets the share count held.
func (b *TradeBuilder) WithSharesOwned(shares int) *TradeBuilder {
	b.trade.SharesOwned = &shares
	return b
}

// WithPL sets the realized profit/loss.
func (b *TradeBuilder) WithPL(pl float64) *TradeBuilder {
	b.trade.PL = pl
	return b
}

// WithNotes sets the notes field.
func (b *TradeBuilder) WithNotes(notes string) *TradeBuilder {
	b.trade.Notes = notes
	return b
}

// Build appends the trade to the journal and returns it with its row number.
func (b *TradeBuilder) Build(t *testing.T, repo *repository.TradeRepository) model.TradeRecord {
	t.Helper()

	ctx := context.Background()
	if err := repo.AppendTrade(ctx, b.trade); err != nil {
		t.Fatalf("Failed to create test trade: %v", err)
	}

	created, err := repo.GetTrade(ctx, b.trade.ID)
	if err != nil {
		t.Fatalf("Failed to read back test trade: %v", err)
	}
	return created
}
