// Package response holds JSON helpers for endpoints outside the
// session API, such as health checks and router fallbacks.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error payload for non-session endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes data as a JSON response. The payload is encoded before
// the status line is committed, so an encoding failure still surfaces
// as a clean 500 instead of a truncated 200 body.
func JSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error writes an error response with the given status
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// Success writes a 200 response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}
