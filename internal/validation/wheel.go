package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/ordonezjosue/wheeltracker/internal/api/request"
	"github.com/ordonezjosue/wheeltracker/internal/model"
)

// ValidateAssign validates an assignment confirmation request.
func ValidateAssign(req request.AssignRequest) error {
	errors := make(map[string]string)

	if req.AssignedPrice <= 0 {
		errors["assignedPrice"] = "assignedPrice must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateCoveredCall validates a covered call opening request.
func ValidateCoveredCall(req request.CoveredCallRequest) error {
	errors := make(map[string]string)

	if req.Strike <= 0 {
		errors["strike"] = "strike must be positive"
	}

	if req.Credit < 0 {
		errors["creditCollected"] = "creditCollected cannot be negative"
	}

	if strings.TrimSpace(req.Expiration) == "" {
		errors["expiration"] = "expiration is required"
	} else if _, err := time.Parse("2006-01-02", req.Expiration); err != nil {
		errors["expiration"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateCloseCall validates a covered call close request.
func ValidateCloseCall(req request.CloseCallRequest) error {
	errors := make(map[string]string)

	switch model.Result(req.Result) {
	case model.ResultCalledAway, model.ResultExpiredWorthless:
	default:
		errors["result"] = fmt.Sprintf("result must be %q or %q", model.ResultCalledAway, model.ResultExpiredWorthless)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateClosePut validates a put close request.
func ValidateClosePut(req request.ClosePutRequest) error {
	errors := make(map[string]string)

	switch model.Result(req.Result) {
	case model.ResultExpiredWorthless:
	case model.ResultBoughtBack:
		if req.BuybackPrice < 0 {
			errors["buybackPrice"] = "buybackPrice cannot be negative"
		}
	default:
		errors["result"] = fmt.Sprintf("result must be %q or %q", model.ResultExpiredWorthless, model.ResultBoughtBack)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
