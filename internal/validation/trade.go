package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/ordonezjosue/wheeltracker/internal/api/request"
	"github.com/ordonezjosue/wheeltracker/internal/model"
)

// ValidStrategy contains the allowed strategy values.
var ValidStrategy = map[string]bool{
	string(model.StrategyWheel):            true,
	string(model.StrategyPutCreditSpread):  true,
	string(model.StrategyCallCreditSpread): true,
}

// ValidateCreateTrade validates a journal entry creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - strategy: Must be one of: Wheel Strategy, Put Credit Spread, Call Credit Spread
//   - ticker: Must be non-empty
//   - strike: Must be positive
//   - qty: Must be >= 1
//   - creditCollected: Must not be negative
//   - expiration: Must be in YYYY-MM-DD format
//   - date: Must be in YYYY-MM-DD format if provided
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTrade(req request.CreateTradeRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Strategy) == "" {
		errors["strategy"] = "strategy is required"
	} else if !ValidStrategy[req.Strategy] {
		errors["strategy"] = fmt.Sprintf("invalid strategy: %s", req.Strategy)
	}

	if strings.TrimSpace(req.Ticker) == "" {
		errors["ticker"] = "ticker is required"
	}

	if req.Strike <= 0 {
		errors["strike"] = "strike must be positive"
	}

	if req.LongStrike != nil && *req.LongStrike <= 0 {
		errors["longStrike"] = "longStrike must be positive"
	}

	if req.Qty < 1 {
		errors["qty"] = "qty must be at least 1"
	}

	if req.Credit < 0 {
		errors["creditCollected"] = "creditCollected cannot be negative"
	}

	if strings.TrimSpace(req.Expiration) == "" {
		errors["expiration"] = "expiration is required"
	} else if _, err := time.Parse("2006-01-02", req.Expiration); err != nil {
		errors["expiration"] = err.Error()
	}

	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			errors["date"] = err.Error()
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
