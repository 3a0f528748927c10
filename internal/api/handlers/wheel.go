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

// WheelHandler handles HTTP requests for wheel lifecycle transitions.
type WheelHandler struct {
	wheelService *service.WheelService
}

// NewWheelHandler creates a new WheelHandler with the provided service dependency.
func NewWheelHandler(wheelService *service.WheelService) *WheelHandler {
	return &WheelHandler{
		wheelService: wheelService,
	}
}

// Assign handles POST requests confirming assignment of an open Sell Put.
// Mutates the put row and appends the derived Assignment row atomically.
//
// Endpoint: POST /api/wheel/{uuid}/assign
// Request Body: AssignRequest
// Response: 200 OK with the appended Assignment TradeRecord
// Error: 400 Bad Request if validation fails or the row is not an open Sell Put
// Error: 404 Not Found if the trade is not found
// Error: 500 Internal Server Error if the transition fails
func (h *WheelHandler) Assign(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.AssignRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateAssign(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	assignment, err := h.wheelService.Assign(r.Context(), tradeID, req.AssignedPrice)
	if err != nil {
		h.respondWheelError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, assignment)
}

// CoveredCall handles POST requests opening a covered call against an
// assignment's shares.
//
// Endpoint: POST /api/wheel/{uuid}/covered-call
// Request Body: CoveredCallRequest
// Response: 201 Created with the appended Covered Call TradeRecord
// Error: 400 Bad Request if validation fails or the row holds no shares
// Error: 404 Not Found if the trade is not found
// Error: 500 Internal Server Error if the transition fails
func (h *WheelHandler) CoveredCall(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.CoveredCallRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCoveredCall(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	params := service.CoveredCallParams{
		Strike: req.Strike,
		Credit: req.Credit,
		Delta:  req.Delta,
		DTE:    req.DTE,
	}
	// Pre-validated above.
	params.Expiration, _ = time.Parse("2006-01-02", req.Expiration)

	call, err := h.wheelService.SellCoveredCall(r.Context(), tradeID, params)
	if err != nil {
		h.respondWheelError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, call)
}

// CloseCall handles POST requests finalizing an open covered call as
// Called Away or Expired Worthless.
//
// Endpoint: POST /api/wheel/{uuid}/close-call
// Request Body: CloseCallRequest
// Response: 200 OK with the updated TradeRecord
// Error: 400 Bad Request if validation fails or the row is not an open call
// Error: 404 Not Found if the trade is not found
// Error: 500 Internal Server Error if the transition fails
func (h *WheelHandler) CloseCall(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.CloseCallRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCloseCall(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	trade, err := h.wheelService.CloseCoveredCall(r.Context(), tradeID, model.Result(req.Result))
	if err != nil {
		h.respondWheelError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, trade)
}

// ClosePut handles POST requests finalizing an open Sell Put without
// assignment, as Expired Worthless or Bought Back.
//
// Endpoint: POST /api/wheel/{uuid}/close-put
// Request Body: ClosePutRequest
// Response: 200 OK with the updated TradeRecord
// Error: 400 Bad Request if validation fails or the row is not an open put
// Error: 404 Not Found if the trade is not found
// Error: 500 Internal Server Error if the transition fails
func (h *WheelHandler) ClosePut(w http.ResponseWriter, r *http.Request) {
	tradeID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.ClosePutRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateClosePut(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	trade, err := h.wheelService.ClosePut(r.Context(), tradeID, model.Result(req.Result), req.BuybackPrice)
	if err != nil {
		h.respondWheelError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, trade)
}

// respondWheelError maps service errors from lifecycle transitions onto
// HTTP statuses.
func (h *WheelHandler) respondWheelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrTradeNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrTradeNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrInvalidTransition):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidTransition.Error(), err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToAdvanceWheel.Error(), err.Error())
	}
}
