package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ordonezjosue/wheeltracker/internal/apperrors"
	"github.com/ordonezjosue/wheeltracker/internal/model"
	"github.com/ordonezjosue/wheeltracker/internal/repository"
)

// WheelService advances wheel cycles through their lifecycle:
// Sell Put -> Assignment -> Covered Call -> Called Away, with early exits
// (expired worthless, bought back) at the put and call steps.
//
// Derived rows reference their source row by ID. Rows imported from legacy
// data carry no source ID, so lookups fall back to the historical heuristic:
// the most recent row for the same ticker and process before the given date.
type WheelService struct {
	tradeRepo *repository.TradeRepository
	now       func() time.Time
}

// NewWheelService creates a new WheelService with the provided repository dependency.
func NewWheelService(tradeRepo *repository.TradeRepository) *WheelService {
	return &WheelService{
		tradeRepo: tradeRepo,
		now:       time.Now,
	}
}

// CoveredCallParams carries the user-entered fields for a new covered call.
type CoveredCallParams struct {
	Strike     float64
	Credit     float64
	Expiration time.Time
	Delta      *float64
	DTE        *int
}

// Assign converts an open Sell Put into shares. It mutates the put row
// (result, assigned price, shares owned) and appends a derived Assignment
// row in a single atomic batch, so a failure never leaves one half written.
func (s *WheelService) Assign(ctx context.Context, tradeID string, assignedPrice float64) (model.TradeRecord, error) {
	put, err := s.tradeRepo.GetTrade(ctx, tradeID)
	if err != nil {
		return model.TradeRecord{}, err
	}
	if put.Process != model.ProcessSellPut || put.Result != model.ResultOpen {
		return model.TradeRecord{}, fmt.Errorf("%w: expected an open Sell Put, got %s/%s",
			apperrors.ErrInvalidTransition, put.Process, put.Result)
	}

	shares := put.Qty * 100
	assigned := model.ResultAssigned

	assignment := model.TradeRecord{
		ID:              uuid.New().String(),
		SourceRowID:     put.ID,
		Strategy:        model.StrategyWheel,
		Process:         model.ProcessAssignment,
		Ticker:          put.Ticker,
		Date:            s.now(),
		Strike:          put.Strike,
		Delta:           put.Delta,
		DTE:             put.DTE,
		CreditCollected: put.CreditCollected,
		Qty:             put.Qty,
		Expiration:      put.Expiration,
		Result:          model.ResultShares,
		AssignedPrice:   &assignedPrice,
		SharesOwned:     &shares,
	}

	err = s.tradeRepo.Transact(ctx, func(r *repository.TradeRepository) error {
		upd := repository.LifecycleUpdate{
			Result:        &assigned,
			AssignedPrice: &assignedPrice,
			SharesOwned:   &shares,
		}
		if err := r.UpdateLifecycle(ctx, put.RowNumber, upd); err != nil {
			return err
		}
		return r.AppendTrade(ctx, assignment)
	})
	if err != nil {
		return model.TradeRecord{}, err
	}

	return assignment, nil
}

// SellCoveredCall opens a covered call against an assignment's shares. The
// new row carries the assignment's quantity and assigned price forward.
func (s *WheelService) SellCoveredCall(ctx context.Context, assignmentID string, p CoveredCallParams) (model.TradeRecord, error) {
	assignment, err := s.tradeRepo.GetTrade(ctx, assignmentID)
	if err != nil {
		return model.TradeRecord{}, err
	}
	eligible := assignment.Process == model.ProcessAssignment &&
		(assignment.Result == model.ResultAssigned || assignment.Result == model.ResultShares)
	if !eligible {
		return model.TradeRecord{}, fmt.Errorf("%w: expected an assignment holding shares, got %s/%s",
			apperrors.ErrInvalidTransition, assignment.Process, assignment.Result)
	}

	call := model.TradeRecord{
		ID:              uuid.New().String(),
		SourceRowID:     assignment.ID,
		Strategy:        model.StrategyWheel,
		Process:         model.ProcessCoveredCall,
		Ticker:          assignment.Ticker,
		Date:            s.now(),
		Strike:          p.Strike,
		Delta:           p.Delta,
		DTE:             p.DTE,
		CreditCollected: p.Credit,
		Qty:             assignment.Qty,
		Expiration:      p.Expiration,
		Result:          model.ResultOpen,
		AssignedPrice:   assignment.AssignedPrice,
		SharesOwned:     assignment.SharesOwned,
	}

	if err := s.tradeRepo.AppendTrade(ctx, call); err != nil {
		return model.TradeRecord{}, err
	}
	return call, nil
}

// CloseCoveredCall finalizes an open covered call.
//
// Called Away closes the whole cycle: the final profit/loss combines the
// originating put's credit, the call's credit, and the capital gain between
// assigned price and call strike. A missing put leg contributes zero credit
// rather than failing the close.
//
// Expired Worthless keeps the shares: profit/loss reflects only the call's
// collected premium and a new covered call may be sold afterwards.
func (s *WheelService) CloseCoveredCall(ctx context.Context, callID string, outcome model.Result) (model.TradeRecord, error) {
	if outcome != model.ResultCalledAway && outcome != model.ResultExpiredWorthless {
		return model.TradeRecord{}, fmt.Errorf("%w: covered call outcome must be Called Away or Expired Worthless",
			apperrors.ErrInvalidTransition)
	}

	call, err := s.tradeRepo.GetTrade(ctx, callID)
	if err != nil {
		return model.TradeRecord{}, err
	}
	if call.Process != model.ProcessCoveredCall || call.Result != model.ResultOpen {
		return model.TradeRecord{}, fmt.Errorf("%w: expected an open Covered Call, got %s/%s",
			apperrors.ErrInvalidTransition, call.Process, call.Result)
	}

	qty := float64(call.Qty)
	var pl float64
	if outcome == model.ResultCalledAway {
		trades, err := s.tradeRepo.ListTrades(ctx)
		if err != nil {
			return model.TradeRecord{}, err
		}

		putCredit := s.originatingPutCredit(trades, call)
		var assignedPrice float64
		if call.AssignedPrice != nil {
			assignedPrice = *call.AssignedPrice
		}
		pl = (putCredit+call.CreditCollected)*qty*100 + (call.Strike-assignedPrice)*qty*100
	} else {
		pl = call.CreditCollected * qty * 100
	}

	upd := repository.LifecycleUpdate{Result: &outcome, PL: &pl}
	err = s.tradeRepo.Transact(ctx, func(r *repository.TradeRepository) error {
		return r.UpdateLifecycle(ctx, call.RowNumber, upd)
	})
	if err != nil {
		return model.TradeRecord{}, err
	}

	call.Result = outcome
	call.PL = model.RoundCents(pl)
	return call, nil
}

// ClosePut finalizes an open Sell Put without assignment. Expired Worthless
// keeps the full credit; Bought Back nets the buyback debit against it.
func (s *WheelService) ClosePut(ctx context.Context, putID string, outcome model.Result, buybackPrice float64) (model.TradeRecord, error) {
	if outcome != model.ResultExpiredWorthless && outcome != model.ResultBoughtBack {
		return model.TradeRecord{}, fmt.Errorf("%w: put outcome must be Expired Worthless or Bought Back",
			apperrors.ErrInvalidTransition)
	}

	put, err := s.tradeRepo.GetTrade(ctx, putID)
	if err != nil {
		return model.TradeRecord{}, err
	}
	if put.Process != model.ProcessSellPut || put.Result != model.ResultOpen {
		return model.TradeRecord{}, fmt.Errorf("%w: expected an open Sell Put, got %s/%s",
			apperrors.ErrInvalidTransition, put.Process, put.Result)
	}

	qty := float64(put.Qty)
	pl := put.CreditCollected * qty * 100
	if outcome == model.ResultBoughtBack {
		pl = (put.CreditCollected - buybackPrice) * qty * 100
	}

	upd := repository.LifecycleUpdate{Result: &outcome, PL: &pl}
	err = s.tradeRepo.Transact(ctx, func(r *repository.TradeRepository) error {
		return r.UpdateLifecycle(ctx, put.RowNumber, upd)
	})
	if err != nil {
		return model.TradeRecord{}, err
	}

	put.Result = outcome
	put.PL = model.RoundCents(pl)
	return put, nil
}

// originatingPutCredit resolves the credit collected on the put that started
// the cycle a covered call belongs to. The explicit source chain
// (call -> assignment -> put) wins; legacy rows without source IDs fall back
// to the most recent Sell Put for the ticker dated before the call. Either
// lookup may legitimately come up empty (e.g. data imported without the
// originating put), in which case the credit contributes zero.
func (s *WheelService) originatingPutCredit(trades []model.TradeRecord, call model.TradeRecord) float64 {
	byID := make(map[string]model.TradeRecord, len(trades))
	for _, t := range trades {
		if t.ID != "" {
			byID[t.ID] = t
		}
	}

	if assignment, ok := byID[call.SourceRowID]; ok {
		if put, ok := byID[assignment.SourceRowID]; ok && put.Process == model.ProcessSellPut {
			return put.CreditCollected
		}
	}

	if put, ok := latestMatch(trades, call.Ticker, model.ProcessSellPut, call.Date); ok {
		return put.CreditCollected
	}
	return 0
}

// latestMatch finds the most recent row for a ticker and process dated
// strictly before the given date. Returns false when no row matches.
func latestMatch(trades []model.TradeRecord, ticker string, process model.Process, before time.Time) (model.TradeRecord, bool) {
	var best model.TradeRecord
	var found bool
	for _, t := range trades {
		if t.Ticker != ticker || t.Process != process {
			continue
		}
		if !before.IsZero() && !t.Date.Before(before) {
			continue
		}
		if !found || t.Date.After(best.Date) {
			best = t
			found = true
		}
	}
	return best, found
}
