package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ordonezjosue/wheeltracker/internal/api/response"
	"github.com/ordonezjosue/wheeltracker/internal/validation"
)

// ValidateUUIDMiddleware validates that the uuid URL parameter is present and valid.
// Returns 400 Bad Request if the ID is missing or invalid.
// This middleware should be applied to routes that take a record ID in the URL path.
//
// Example usage in router:
//
//	r.Route("/{uuid}", func(r chi.Router) {
//	    r.Use(middleware.ValidateUUIDMiddleware)
//	    r.Get("/", handler.GetTrade)
//	    r.Delete("/", handler.DeleteTrade)
//	})
func ValidateUUIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		UUID := chi.URLParam(r, "uuid")

		if UUID == "" {
			response.RespondError(w, http.StatusBadRequest, "valid UUID is required", "")
			return
		}

		if err := validation.ValidateUUID(UUID); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid UUID format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
