package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "Internal Server Error"

// MessageResponse is the fixed body shape for errors and plain-message
// successes: {"success": ..., "message": ...}.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JSONError sends the standard error body. Every failure path in the API
// funnels through here (or the middleware equivalent), so nothing is
// silently swallowed.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(MessageResponse{
		Success: false,
		Message: message,
	})
}

// JSONMessage sends a success body with a plain message.
func JSONMessage(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(MessageResponse{
		Success: true,
		Message: message,
	})
}
