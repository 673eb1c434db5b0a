// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aanand-mishra/student-registry/internal/validation"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a list, counts).
// Error responses always look like:
//
//	{ "status": "error", "error": "student with this id already exists" }
//
// Validation failures also list every broken rule:
//
//	{ "status": "error", "error": "validation failed: ...",
//	  "violations": [ { "field": "email", "message": "x is not a Valid Email Type" } ] }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status     string                 `json:"status"`
	Error      string                 `json:"error"`
	Violations []validation.Violation `json:"violations,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ValidationError reports every violation of a rejected student record.
func ValidationError(err *validation.Error) Response {
	return Response{
		Status:     StatusError,
		Error:      err.Error(),
		Violations: err.Violations,
	}
}
