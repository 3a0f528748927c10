package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ordonezjosue/wheeltracker/internal/apperrors"
	"github.com/ordonezjosue/wheeltracker/internal/model"
	"github.com/ordonezjosue/wheeltracker/internal/repository"
)

// legPattern extracts option legs from a free-text broker description:
// signed quantity, expiration month token, an optional DTE/Exp marker,
// strike, option type and order action.
var legPattern = regexp.MustCompile(`(?i)([+-]?\d+)\s+(\w+)\s+(\d+d|Exp)?\s*(\d+(?:\.\d+)?)\s+(Put|Call)\s+(STC|BTC|STO|BTO)`)

// pricePattern pulls the first signed or unsigned decimal out of a price
// field that may carry currency symbols or trailing text.
var pricePattern = regexp.MustCompile(`[-+]?\d*\.\d+|\d+`)

// Required columns per import profile. An upload matching neither shape is
// rejected as a whole.
var (
	descriptionColumns = []string{"Symbol", "Description", "Price"}
	structuredColumns  = []string{"Underlying Symbol", "Action", "Quantity", "Price", "Strike Price", "Expiration Date", "Type"}
)

// ImportService reconciles broker transaction exports into journal rows:
// it parses each transaction into option legs, pairs opening legs with
// their closing legs by structural key, and appends the resulting completed
// or still-open spread records to the journal.
type ImportService struct {
	tradeRepo *repository.TradeRepository
	now       func() time.Time
}

// NewImportService creates a new ImportService with the provided repository dependency.
func NewImportService(tradeRepo *repository.TradeRepository) *ImportService {
	return &ImportService{
		tradeRepo: tradeRepo,
		now:       time.Now,
	}
}

// Import reads a delimited broker export, detects which profile it matches,
// reconciles its legs and appends the emitted records to the journal in one
// atomic batch. Per-row parse problems are reported as warnings and skipped;
// only an unrecognized header shape fails the import as a whole.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (model.ImportReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rawHeader, err := reader.Read()
	if err != nil {
		return model.ImportReport{}, fmt.Errorf("failed to read header: %w", err)
	}
	header := make([]string, len(rawHeader))
	for i, col := range rawHeader {
		header[i] = strings.TrimSpace(col)
	}

	profile, err := detectProfile(header)
	if err != nil {
		return model.ImportReport{}, err
	}

	rows, err := readRows(reader, header)
	if err != nil {
		return model.ImportReport{}, err
	}

	var legs []model.SpreadLeg
	var warnings []string
	switch profile {
	case model.ProfileDescription:
		legs, warnings = s.parseDescriptionRows(rows)
	case model.ProfileStructured:
		legs, warnings = s.parseStructuredRows(rows)
	}

	report := s.matchAndAppend(ctx, profile, legs, warnings)
	return report, nil
}

// detectProfile checks which profile's required columns are all present.
// The description shape is checked first, matching the order the original
// exports appeared in.
func detectProfile(header []string) (model.ImportProfile, error) {
	has := make(map[string]bool, len(header))
	for _, col := range header {
		has[col] = true
	}
	hasAll := func(cols []string) bool {
		for _, c := range cols {
			if !has[c] {
				return false
			}
		}
		return true
	}

	if hasAll(descriptionColumns) {
		return model.ProfileDescription, nil
	}
	if hasAll(structuredColumns) {
		return model.ProfileStructured, nil
	}
	return "", fmt.Errorf("%w: columns found: %s", apperrors.ErrInvalidCSVHeaders, strings.Join(header, ", "))
}

// readRows drains the CSV into header-keyed maps.
func readRows(reader *csv.Reader, header []string) ([]map[string]string, error) {
	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseDescriptionRows extracts legs from the Symbol/Description/Price/Time
// shape. Multi-underlying combo descriptions (containing "/") are excluded
// entirely before parsing. A row yielding no price or no legs is skipped
// with a warning; a leg whose expiration token cannot be normalized is
// skipped alone.
func (s *ImportService) parseDescriptionRows(rows []map[string]string) ([]model.SpreadLeg, []string) {
	var legs []model.SpreadLeg
	var warnings []string

	for _, row := range rows {
		symbol := strings.ToUpper(row["Symbol"])
		description := row["Description"]
		if strings.Contains(description, "/") {
			continue
		}

		price, ok := extractPrice(row["Price"])
		if !ok {
			warnings = append(warnings, fmt.Sprintf("failed to parse price %q for %s", row["Price"], symbol))
			continue
		}

		timestamp := s.parseTimestamp(row["Time"])

		matches := legPattern.FindAllStringSubmatch(description, -1)
		if len(matches) == 0 {
			warnings = append(warnings, fmt.Sprintf("no option legs found in description %q", description))
			continue
		}

		for _, m := range matches {
			qty, _ := strconv.Atoi(m[1])
			strike, _ := strconv.ParseFloat(m[4], 64)
			optType := model.OptionType(capitalize(m[5]))
			action := model.LegAction(strings.ToUpper(m[6]))

			expiration, err := s.parseMonthToken(m[2])
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("failed to parse expiration token %q for %s", m[2], symbol))
				continue
			}

			legs = append(legs, model.SpreadLeg{
				Symbol:     symbol,
				Expiration: expiration,
				Strike:     strike,
				OptionType: optType,
				Action:     action,
				Quantity:   qty,
				Price:      price,
				Timestamp:  timestamp,
			})
		}
	}

	return legs, warnings
}

// parseStructuredRows extracts legs from the explicit-column shape. Only
// SELL_TO_OPEN opens and BUY_TO_CLOSE closes under this profile; other
// actions were never handled by the source exports and are skipped with a
// warning rather than guessed at.
func (s *ImportService) parseStructuredRows(rows []map[string]string) ([]model.SpreadLeg, []string) {
	var legs []model.SpreadLeg
	var warnings []string

	for _, row := range rows {
		symbol := strings.ToUpper(row["Underlying Symbol"])

		var action model.LegAction
		switch strings.ToUpper(row["Action"]) {
		case "SELL_TO_OPEN":
			action = model.SellToOpen
		case "BUY_TO_CLOSE":
			action = model.BuyToClose
		default:
			warnings = append(warnings, fmt.Sprintf("unhandled action %q for %s", row["Action"], symbol))
			continue
		}

		price, ok := extractPrice(row["Price"])
		if !ok {
			warnings = append(warnings, fmt.Sprintf("failed to parse price %q for %s", row["Price"], symbol))
			continue
		}

		qty, err := parseQuantity(row["Quantity"])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to parse quantity %q for %s", row["Quantity"], symbol))
			continue
		}

		strike, err := strconv.ParseFloat(row["Strike Price"], 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to parse strike %q for %s", row["Strike Price"], symbol))
			continue
		}

		expiration, err := parseFlexibleDate(row["Expiration Date"])
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to parse expiration %q for %s", row["Expiration Date"], symbol))
			continue
		}

		optType := model.OptionType(capitalize(row["Type"]))
		if optType != model.OptionPut && optType != model.OptionCall {
			warnings = append(warnings, fmt.Sprintf("unknown option type %q for %s", row["Type"], symbol))
			continue
		}

		legs = append(legs, model.SpreadLeg{
			Symbol:     symbol,
			Expiration: expiration,
			Strike:     strike,
			OptionType: optType,
			Action:     action,
			Quantity:   qty,
			Price:      price,
			Timestamp:  s.parseTimestamp(row["Date"]),
		})
	}

	return legs, warnings
}

// openEntry is a pending opening leg awaiting its close.
type openEntry struct {
	leg    model.SpreadLeg
	qty    int
	credit float64
}

// matchAndAppend runs the pairing algorithm and appends the emitted records
// in one atomic batch. Every leg contributes to at most one emitted record:
// opens are held (last writer wins per key), closes pop their open, and
// whatever remains open at end-of-file is emitted as an open position.
func (s *ImportService) matchAndAppend(ctx context.Context, profile model.ImportProfile, legs []model.SpreadLeg, warnings []string) model.ImportReport {
	openLegs := make(map[model.LegKey]openEntry)
	var openOrder []model.LegKey // preserves insertion order for deterministic emission

	var emitted []model.TradeRecord

	for _, leg := range legs {
		key := leg.Key()
		switch {
		case leg.Action.Opens():
			if _, exists := openLegs[key]; !exists {
				openOrder = append(openOrder, key)
			}
			openLegs[key] = openEntry{
				leg:    leg,
				qty:    abs(leg.Quantity),
				credit: leg.Price * float64(abs(leg.Quantity)),
			}
		case leg.Action.Closes():
			entry, ok := openLegs[key]
			if !ok {
				warnings = append(warnings, fmt.Sprintf("close with no matching open: %s %s %.2f %s",
					leg.Symbol, key.Expiration, leg.Strike, leg.OptionType))
				continue
			}
			delete(openLegs, key)

			pl := (entry.credit - leg.Price*float64(entry.qty)) * 100
			emitted = append(emitted, s.spreadRecord(profile, entry, model.ResultClosed, pl))
		}
	}

	for _, key := range openOrder {
		entry, ok := openLegs[key]
		if !ok {
			continue // closed above
		}
		// A key reopened after a close appears in openOrder twice; removing
		// the entry here keeps the surviving open to a single record.
		delete(openLegs, key)
		emitted = append(emitted, s.spreadRecord(profile, entry, model.ResultOpen, 0))
	}

	report := model.ImportReport{Profile: profile, Warnings: warnings}
	for _, t := range emitted {
		if t.Result == model.ResultClosed {
			report.Closed++
		} else {
			report.Open++
		}
	}

	err := s.tradeRepo.Transact(ctx, func(r *repository.TradeRepository) error {
		for _, t := range emitted {
			if err := r.AppendTrade(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("append failed, no rows written: %v", err))
		report.Closed, report.Open = 0, 0
		return report
	}

	report.Imported = len(emitted)
	return report
}

// spreadRecord builds the journal row for a matched pair or leftover open.
// The short/long strike split follows the opening action: a sold open is the
// short leg, a bought open the long leg.
func (s *ImportService) spreadRecord(profile model.ImportProfile, entry openEntry, result model.Result, pl float64) model.TradeRecord {
	leg := entry.leg

	strategy := model.StrategyPutCreditSpread
	process := model.ProcessSellPCS
	if leg.OptionType == model.OptionCall {
		strategy = model.StrategyCallCreditSpread
		process = model.ProcessSellCCS
	}

	var strike float64
	var longStrike *float64
	if leg.Action == model.BuyToOpen {
		v := leg.Strike
		longStrike = &v
	} else {
		strike = leg.Strike
	}

	notes := "Imported from Tastytrade"
	if profile == model.ProfileStructured {
		notes = "Imported from broker CSV"
	}
	if result == model.ResultOpen {
		notes += " (Open)"
	}

	return model.TradeRecord{
		ID:              uuid.New().String(),
		Strategy:        strategy,
		Process:         process,
		Ticker:          leg.Symbol,
		Date:            leg.Timestamp,
		Strike:          strike,
		LongStrike:      longStrike,
		Width:           model.SpreadWidth(strike, longStrike),
		CreditCollected: entry.credit,
		Qty:             entry.qty,
		Expiration:      leg.Expiration,
		Result:          result,
		PL:              model.RoundCents(pl),
		Notes:           notes,
	}
}

// parseTimestamp reads the date part of a broker timestamp, falling back to
// today when the field is empty or malformed.
func (s *ImportService) parseTimestamp(v string) time.Time {
	if len(v) >= 10 {
		if d, err := time.Parse("2006-01-02", v[:10]); err == nil {
			return d
		}
	}
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// parseMonthToken normalizes a bare month token ("Mar") into the first of
// that month in the current year, the convention the description exports
// used for near-dated expirations.
func (s *ImportService) parseMonthToken(token string) (time.Time, error) {
	return time.Parse("Jan 2006", fmt.Sprintf("%s %d", token, s.now().Year()))
}

// parseFlexibleDate accepts the date shapes broker exports have used for
// expiration columns.
func parseFlexibleDate(v string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "1/2/06", "1/2/2006"} {
		if d, err := time.Parse(layout, v); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", v)
}

// extractPrice takes the first decimal number found in a price field.
func extractPrice(v string) (float64, bool) {
	match := pricePattern.FindString(v)
	if match == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// parseQuantity accepts both integer and float-formatted contract counts.
func parseQuantity(v string) (int, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return int(math.Abs(f)), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
