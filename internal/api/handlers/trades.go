package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ordonezjosue/wheeltracker/internal/api/request"
	"github.com/ordonezjosue/wheeltracker/internal/api/response"
	"github.com/ordonezjosue/wheeltracker/internal/apperrors"
	"github.com/ordonezjosue/wheeltracker/internal/model"
	"github.com/ordonezjosue/wheeltracker/internal/service"
	"github.com/ordonezjosue/wheeltracker/internal/validation"
)

// TradeHandler handles HTTP requests for journal endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the journalService.
type TradeHandler struct {
	journalService *service.JournalService
}

// NewTradeHandler creates a new TradeHandler with the provided service dependency.
func NewTradeHandler(journalService *service.JournalService) *TradeHandler {
	return &TradeHandler{
		journalService: journalService,
	}
}

// AllTrades handles GET requests to retrieve the full journal.
// Open positions carry the advisory current price when a lookup succeeds.
//
// Endpoint: GET /api/trade
// Response: 200 OK with array of TradeRecord
// Error: 500 Internal Server Error if retrieval fails
func (h *TradeHandler) AllTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.journalService.ListTrades(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTrades.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, trades)
}

// GetTrade handles GET requests to retrieve a single journal row by ID.
//
// Endpoint: GET /api/trade/{uuid}
// Response: 200 OK with TradeRecord
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the trade is not found
// Error: 500 Internal Server Error if retrieval fails
func (h *TradeHandler) GetTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	trade, err := h.journalService.GetTrade(r.Context(), tradeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTradeNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTradeNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTrade.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, trade)
}

// CreateTrade handles POST requests to open a new journal entry.
// Validates the request body and appends a Sell Put or credit-spread row.
//
// Endpoint: POST /api/trade
// Request Body: CreateTradeRequest
// Response: 201 Created with TradeRecord
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *TradeHandler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTradeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTrade(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	entry := service.NewEntry{
		Strategy:   model.Strategy(req.Strategy),
		Ticker:     req.Ticker,
		Strike:     req.Strike,
		LongStrike: req.LongStrike,
		Delta:      req.Delta,
		DTE:        req.DTE,
		Credit:     req.Credit,
		Qty:        req.Qty,
		Notes:      req.Notes,
	}
	// Dates are pre-validated; parse failures leave the zero value.
	entry.Expiration, _ = time.Parse("2006-01-02", req.Expiration)
	if req.Date != "" {
		entry.Date, _ = time.Parse("2006-01-02", req.Date)
	}

	trade, err := h.journalService.CreateEntry(r.Context(), entry)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCreateTrade.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, trade)
}

// DeleteTrade handles DELETE requests to remove a journal row.
//
// Endpoint: DELETE /api/trade/{uuid}
// Response: 204 No Content on successful deletion
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the trade is not found
// Error: 500 Internal Server Error if deletion fails
func (h *TradeHandler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	err := h.journalService.DeleteTrade(r.Context(), tradeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTradeNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTradeNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToDeleteTrade.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Summary handles GET requests for the dashboard performance metrics.
//
// Endpoint: GET /api/summary
// Response: 200 OK with Summary
// Error: 500 Internal Server Error if computation fails
func (h *TradeHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.journalService.Summary(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetSummary.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Export handles GET requests to download the journal as CSV, in the same
// column order as the display schema.
//
// Endpoint: GET /api/export
// Response: 200 OK with text/csv attachment
// Error: 500 Internal Server Error if export fails
func (h *TradeHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="all_trades.csv"`)

	if err := h.journalService.ExportCSV(r.Context(), w); err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToExportTrades.Error(), err.Error())
		return
	}
}
