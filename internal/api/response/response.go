// Package response writes the API's JSON envelopes: plain payloads on
// success, an error/details pair on failure.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the envelope for every non-2xx reply. Details is optional
// context, typically an underlying error string or per-field validation
// messages.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RespondJSON writes data as JSON with the given status. Nil data writes the
// status alone, which is how 204 No Content goes out. Encoding failures are
// logged; at that point the status line is already on the wire.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

// RespondError writes an ErrorResponse with the given status. The message is
// the user-facing description; details may be nil.
//
// Example:
//
//	response.RespondError(w, http.StatusNotFound, "trade not found", err.Error())
func RespondError(w http.ResponseWriter, status int, message string, details interface{}) {
	RespondJSON(w, status, ErrorResponse{Error: message, Details: details})
}
