package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ordonezjosue/wheeltracker/internal/model"
	"github.com/ordonezjosue/wheeltracker/internal/repository"
	"golang.org/x/sync/errgroup"
)

// priceLookupConcurrency bounds the fan-out of price fetches per request.
const priceLookupConcurrency = 4

// JournalService handles the journal's bookkeeping operations: listing and
// creating entries, deleting rows, summary metrics and CSV export.
type JournalService struct {
	tradeRepo *repository.TradeRepository
	prices    *PriceCache
	now       func() time.Time
}

// NewJournalService creates a new JournalService with the provided dependencies.
func NewJournalService(tradeRepo *repository.TradeRepository, prices *PriceCache) *JournalService {
	return &JournalService{
		tradeRepo: tradeRepo,
		prices:    prices,
		now:       time.Now,
	}
}

// NewEntry carries the user-entered fields for a new journal entry: a wheel
// Sell Put or a credit-spread opening.
type NewEntry struct {
	Strategy   model.Strategy
	Ticker     string
	Date       time.Time
	Strike     float64
	LongStrike *float64
	Delta      *float64
	DTE        *int
	Credit     float64
	Qty        int
	Expiration time.Time
	Notes      string
}

// ListTrades returns all journal rows, with the advisory current price
// filled in for open positions. Price lookups fan out concurrently and
// degrade to an absent price on failure; they never block the listing.
func (s *JournalService) ListTrades(ctx context.Context) ([]model.TradeRecord, error) {
	trades, err := s.tradeRepo.ListTrades(ctx)
	if err != nil {
		return nil, err
	}

	tickers := map[string]bool{}
	for _, t := range trades {
		if t.Result == model.ResultOpen && t.Ticker != "" {
			tickers[t.Ticker] = true
		}
	}

	priceFor := s.fetchPrices(ctx, tickers)
	for i := range trades {
		if trades[i].Result != model.ResultOpen {
			continue
		}
		if p, ok := priceFor[trades[i].Ticker]; ok && p != nil {
			trades[i].CurrentPrice = p
		}
	}

	return trades, nil
}

// fetchPrices resolves current prices for a set of tickers concurrently.
// Failed lookups map to nil.
func (s *JournalService) fetchPrices(ctx context.Context, tickers map[string]bool) map[string]*float64 {
	if s.prices == nil || len(tickers) == 0 {
		return nil
	}

	ordered := make([]string, 0, len(tickers))
	for t := range tickers {
		ordered = append(ordered, t)
	}
	sort.Strings(ordered)

	var mu sync.Mutex
	priceFor := make(map[string]*float64, len(ordered))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(priceLookupConcurrency)
	for _, ticker := range ordered {
		ticker := ticker
		g.Go(func() error {
			p := s.prices.GetCurrentPrice(gctx, ticker)
			mu.Lock()
			priceFor[ticker] = p
			mu.Unlock()
			return nil
		})
	}
	// Goroutines never return errors; prices degrade to nil instead.
	_ = g.Wait()

	return priceFor
}

// GetTrade returns a single journal row by ID.
func (s *JournalService) GetTrade(ctx context.Context, id string) (model.TradeRecord, error) {
	return s.tradeRepo.GetTrade(ctx, id)
}

// CreateEntry appends a new opening row to the journal. Wheel entries start
// as Sell Put steps; spread entries as Sell PCS / Sell CCS with the width
// derived from the two strikes.
func (s *JournalService) CreateEntry(ctx context.Context, e NewEntry) (model.TradeRecord, error) {
	process := model.ProcessSellPut
	switch e.Strategy {
	case model.StrategyPutCreditSpread:
		process = model.ProcessSellPCS
	case model.StrategyCallCreditSpread:
		process = model.ProcessSellCCS
	}

	date := e.Date
	if date.IsZero() {
		date = s.now()
	}

	trade := model.TradeRecord{
		ID:              uuid.New().String(),
		Strategy:        e.Strategy,
		Process:         process,
		Ticker:          e.Ticker,
		Date:            date,
		Strike:          e.Strike,
		LongStrike:      e.LongStrike,
		Width:           model.SpreadWidth(e.Strike, e.LongStrike),
		Delta:           e.Delta,
		DTE:             e.DTE,
		CreditCollected: e.Credit,
		Qty:             e.Qty,
		Expiration:      e.Expiration,
		Result:          model.ResultOpen,
		Notes:           e.Notes,
	}

	if err := s.tradeRepo.AppendTrade(ctx, trade); err != nil {
		return model.TradeRecord{}, err
	}
	return trade, nil
}

// DeleteTrade removes the row with the given ID from the journal. This is
// the only way a row leaves the store.
func (s *JournalService) DeleteTrade(ctx context.Context, id string) error {
	trade, err := s.tradeRepo.GetTrade(ctx, id)
	if err != nil {
		return err
	}
	return s.tradeRepo.DeleteTrade(ctx, trade.RowNumber)
}

// Summary computes the dashboard metrics over the whole journal.
func (s *JournalService) Summary(ctx context.Context) (model.Summary, error) {
	trades, err := s.tradeRepo.ListTrades(ctx)
	if err != nil {
		return model.Summary{}, err
	}

	summary := model.Summary{TotalTrades: len(trades)}
	wins := 0
	for _, t := range trades {
		summary.TotalProfit += t.PL
		if t.Result == model.ResultOpen {
			summary.ActiveTrades++
		}
		if t.PL > 0 {
			wins++
		}
	}
	if len(trades) > 0 {
		summary.AvgPLPerTrade = model.RoundCents(summary.TotalProfit / float64(len(trades)))
		summary.WinRate = model.RoundCents(float64(wins) / float64(len(trades)) * 100)
	}
	summary.TotalProfit = model.RoundCents(summary.TotalProfit)

	return summary, nil
}

// ExportCSV writes the full journal as delimited text in the display column
// order.
func (s *JournalService) ExportCSV(ctx context.Context, w io.Writer) error {
	trades, err := s.tradeRepo.ListTrades(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(repository.Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, t := range trades {
		if err := cw.Write(repository.EncodeTrade(t)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", t.RowNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RefreshOpenPrices persists a fresh advisory price on every open row.
// Invoked on a schedule; lookups that fail leave the stored price untouched.
// Returns the number of rows updated.
func (s *JournalService) RefreshOpenPrices(ctx context.Context) (int, error) {
	trades, err := s.tradeRepo.ListTrades(ctx)
	if err != nil {
		return 0, err
	}

	tickers := map[string]bool{}
	for _, t := range trades {
		if t.Result == model.ResultOpen && t.Ticker != "" {
			tickers[t.Ticker] = true
		}
	}
	priceFor := s.fetchPrices(ctx, tickers)

	updated := 0
	for _, t := range trades {
		if t.Result != model.ResultOpen {
			continue
		}
		p, ok := priceFor[t.Ticker]
		if !ok || p == nil {
			continue
		}
		if err := s.tradeRepo.UpdateCurrentPrice(ctx, t.RowNumber, *p); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}
