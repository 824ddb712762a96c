// Package httpx holds the JSON response helpers and middleware shared by the
// API and gateway binaries.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

func WriteJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	WriteJSON(w, logger, status, map[string]string{"error": message})
}

func WriteMessage(w http.ResponseWriter, logger *slog.Logger, message string) {
	WriteJSON(w, logger, http.StatusOK, map[string]string{"message": message})
}

func DecodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// PathUUID parses the named path wildcard. A malformed id cannot match any
// row, so callers treat !ok as not found.
func PathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
