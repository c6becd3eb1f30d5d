package utils

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// errorResponse is the body of every failed control API request.
type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes data as the response body with the given status. If
// encoding fails nothing but a plain 500 is written.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(body)
}

// WriteError writes {"error": message} with the given status.
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	_, _ = WriteJSON(w, errorResponse{Error: message}, statusCode)
}
