// Package response contains the JSON envelope shared by handlers and middleware.
package response

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the standard JSON body for API replies.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Writer is a utility for writing consistent API responses.
type Writer struct {
	w http.ResponseWriter
}

// NewWriter wraps w.
func NewWriter(w http.ResponseWriter) *Writer {
	return &Writer{w: w}
}

// SendJSON sends a JSON response with the given status code and data.
func (rw *Writer) SendJSON(statusCode int, data any) error {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)
	return json.NewEncoder(rw.w).Encode(data)
}

// SendSuccess sends a successful API response.
func (rw *Writer) SendSuccess(statusCode int, message string, data any) error {
	return rw.SendJSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SendError sends an error API response.
func (rw *Writer) SendError(statusCode int, message string) error {
	return rw.SendJSON(statusCode, APIResponse{
		Success: false,
		Error:   message,
	})
}

// Error is shorthand for NewWriter(w).SendError, for call sites with nothing useful to do
// with an encode failure.
func Error(w http.ResponseWriter, statusCode int, message string) {
	_ = NewWriter(w).SendError(statusCode, message)
}
