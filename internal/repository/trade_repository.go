package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ordonezjosue/wheeltracker/internal/apperrors"
	"github.com/ordonezjosue/wheeltracker/internal/model"
	"github.com/ordonezjosue/wheeltracker/internal/rowstore"
)

// Sheet column names in display order. This is the single source of truth
// for the journal schema; the encode/decode pair below is the only place
// where typed records meet the string-typed row store.
const (
	ColID           = "ID"
	ColSourceRowID  = "Source Row ID"
	ColStrategy     = "Strategy"
	ColProcess      = "Process"
	ColTicker       = "Ticker"
	ColDate         = "Date"
	ColStrike       = "Strike"
	ColLongStrike   = "Long Strike"
	ColWidth        = "Width"
	ColDelta        = "Delta"
	ColDTE          = "DTE"
	ColCredit       = "Credit Collected"
	ColQty          = "Qty"
	ColExpiration   = "Expiration"
	ColResult       = "Result"
	ColCurrentPrice = "Current Price at time"
	ColAssigned     = "Assigned Price"
	ColPL           = "P/L"
	ColSharesOwned  = "Shares Owned"
	ColNotes        = "Notes"
)

// Columns returns the journal header in display order.
func Columns() []string {
	return []string{
		ColID, ColSourceRowID, ColStrategy, ColProcess, ColTicker, ColDate,
		ColStrike, ColLongStrike, ColWidth, ColDelta, ColDTE, ColCredit,
		ColQty, ColExpiration, ColResult, ColCurrentPrice, ColAssigned,
		ColPL, ColSharesOwned, ColNotes,
	}
}

// columnNumber returns the 1-based position of a column in the header.
func columnNumber(name string) int {
	for i, col := range Columns() {
		if col == name {
			return i + 1
		}
	}
	return 0
}

// TradeRepository provides typed access to the journal's row store.
type TradeRepository struct {
	store rowstore.Store
}

// NewTradeRepository creates a new TradeRepository over the given row store.
func NewTradeRepository(store rowstore.Store) *TradeRepository {
	return &TradeRepository{store: store}
}

// ListTrades returns every journal row as a typed record, in row order.
// Columns missing from the stored sheet decode as their zero values, so all
// expected fields are present before any computation proceeds.
func (r *TradeRepository) ListTrades(ctx context.Context) ([]model.TradeRecord, error) {
	records, err := r.store.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	trades := make([]model.TradeRecord, 0, len(records))
	for _, rec := range records {
		trades = append(trades, decodeTrade(rec))
	}
	return trades, nil
}

// GetTrade returns the record with the given ID.
func (r *TradeRepository) GetTrade(ctx context.Context, id string) (model.TradeRecord, error) {
	trades, err := r.ListTrades(ctx)
	if err != nil {
		return model.TradeRecord{}, err
	}
	for _, t := range trades {
		if t.ID == id {
			return t, nil
		}
	}
	return model.TradeRecord{}, apperrors.ErrTradeNotFound
}

// AppendTrade encodes the record and appends it to the store.
func (r *TradeRepository) AppendTrade(ctx context.Context, t model.TradeRecord) error {
	if err := r.store.Append(ctx, EncodeTrade(t)); err != nil {
		return fmt.Errorf("failed to append trade: %w", err)
	}
	return nil
}

// DeleteTrade removes the row at the given row number from the store.
func (r *TradeRepository) DeleteTrade(ctx context.Context, rowNumber int) error {
	if err := r.store.DeleteRow(ctx, rowNumber); err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	return nil
}

// LifecycleUpdate carries the four fields a later step may mutate in place
// on an existing row. Nil pointers leave the cell untouched.
type LifecycleUpdate struct {
	Result        *model.Result
	AssignedPrice *float64
	SharesOwned   *int
	PL            *float64
}

// UpdateLifecycle mutates the mutable fields of the row at rowNumber.
// Everything else on the row stays as appended.
func (r *TradeRepository) UpdateLifecycle(ctx context.Context, rowNumber int, upd LifecycleUpdate) error {
	type cell struct {
		col   string
		value string
	}
	var cells []cell

	if upd.Result != nil {
		cells = append(cells, cell{ColResult, string(*upd.Result)})
	}
	if upd.AssignedPrice != nil {
		cells = append(cells, cell{ColAssigned, formatFloat(*upd.AssignedPrice)})
	}
	if upd.SharesOwned != nil {
		cells = append(cells, cell{ColSharesOwned, strconv.Itoa(*upd.SharesOwned)})
	}
	if upd.PL != nil {
		cells = append(cells, cell{ColPL, formatFloat(model.RoundCents(*upd.PL))})
	}

	for _, c := range cells {
		if err := r.store.UpdateCell(ctx, rowNumber, columnNumber(c.col), c.value); err != nil {
			return fmt.Errorf("failed to update %s on row %d: %w", c.col, rowNumber, err)
		}
	}
	return nil
}

// UpdateCurrentPrice overwrites the advisory price cell on the given row.
func (r *TradeRepository) UpdateCurrentPrice(ctx context.Context, rowNumber int, price float64) error {
	err := r.store.UpdateCell(ctx, rowNumber, columnNumber(ColCurrentPrice), formatFloat(price))
	if err != nil {
		return fmt.Errorf("failed to update price on row %d: %w", rowNumber, err)
	}
	return nil
}

// Transact runs fn against a repository whose writes are applied atomically.
// Lifecycle steps that mutate one row and append a derived row use this so a
// partial failure never leaves one half committed. Falls back to direct
// execution when the underlying store cannot batch.
func (r *TradeRepository) Transact(ctx context.Context, fn func(*TradeRepository) error) error {
	batcher, ok := r.store.(rowstore.Batcher)
	if !ok {
		return fn(r)
	}
	return batcher.Batch(ctx, func(s rowstore.Store) error {
		return fn(NewTradeRepository(s))
	})
}

// EncodeTrade serializes a record into sheet cells in Columns() order.
func EncodeTrade(t model.TradeRecord) []string {
	return []string{
		t.ID,
		t.SourceRowID,
		string(t.Strategy),
		string(t.Process),
		t.Ticker,
		formatDate(t.Date),
		formatFloat(t.Strike),
		formatOptFloat(t.LongStrike),
		formatOptFloat(t.Width),
		formatOptFloat(t.Delta),
		formatOptInt(t.DTE),
		formatFloat(t.CreditCollected),
		strconv.Itoa(t.Qty),
		formatDate(t.Expiration),
		string(t.Result),
		formatOptFloat(t.CurrentPrice),
		formatOptFloat(t.AssignedPrice),
		formatFloat(model.RoundCents(t.PL)),
		formatOptInt(t.SharesOwned),
		t.Notes,
	}
}

// decodeTrade parses a string row into a typed record. Parsing is lenient:
// unparseable numbers coerce to zero and unparseable dates to the zero time,
// matching how the dashboard treated dirty sheet data.
func decodeTrade(rec rowstore.Record) model.TradeRecord {
	f := rec.Fields
	return model.TradeRecord{
		ID:              f[ColID],
		SourceRowID:     f[ColSourceRowID],
		Strategy:        model.Strategy(f[ColStrategy]),
		Process:         model.Process(f[ColProcess]),
		Ticker:          strings.ToUpper(strings.TrimSpace(f[ColTicker])),
		Date:            parseDate(f[ColDate]),
		Strike:          parseFloat(f[ColStrike]),
		LongStrike:      parseOptFloat(f[ColLongStrike]),
		Width:           parseOptFloat(f[ColWidth]),
		Delta:           parseOptFloat(f[ColDelta]),
		DTE:             parseOptInt(f[ColDTE]),
		CreditCollected: parseFloat(f[ColCredit]),
		Qty:             parseInt(f[ColQty]),
		Expiration:      parseDate(f[ColExpiration]),
		Result:          model.Result(f[ColResult]),
		CurrentPrice:    parseOptFloat(f[ColCurrentPrice]),
		AssignedPrice:   parseOptFloat(f[ColAssigned]),
		PL:              parseFloat(f[ColPL]),
		SharesOwned:     parseOptInt(f[ColSharesOwned]),
		Notes:           f[ColNotes],
		RowNumber:       rec.RowNumber,
	}
}

func formatDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatOptInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return d
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseOptFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return v
}

func parseOptInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
