// Package respond writes JSON responses and maps taxonomy errors to
// HTTP statuses.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"tangle-backend/apperrors"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err as {"error": message} with its taxonomy status.
// Wrapped causes are logged, never sent to the client.
func Error(w http.ResponseWriter, err error) {
	status := apperrors.StatusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	JSON(w, status, map[string]string{"error": apperrors.MessageOf(err)})
}
