package validation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"log/slog"
)

// ParseExternalID validates and parses an external catalog id from a
// URL parameter. External ids are positive integers.
func ParseExternalID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid external id: %q", raw)
	}
	if id <= 0 {
		return 0, fmt.Errorf("external id must be positive, got %d", id)
	}
	return id, nil
}

// ValidateSearchTerm checks a catalog search term for a usable length.
func ValidateSearchTerm(term string) error {
	if len(term) < 2 {
		return fmt.Errorf("search term must be at least 2 characters")
	}
	if len(term) > 200 {
		return fmt.Errorf("search term must be at most 200 characters")
	}
	return nil
}

// ValidateLimit validates a result-set limit parameter.
func ValidateLimit(limit int) error {
	if limit < 1 || limit > 100 {
		return fmt.Errorf("limit must be between 1 and 100")
	}
	return nil
}

// WriteError writes a validation error response to the HTTP response writer.
// It takes a response writer, error message, and HTTP status code.
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
	}); err != nil {
		slog.Error("Failed to encode error response", slog.Any("error", err))
	}
}
