package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type apiError struct {
	Error string `json:"error"`
}

// writeJSON serializes v to the response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError sends a JSON error body
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

// scopeParams extracts the condominium and fiscal year from query
// parameters. The condominium is required; the year defaults to the
// current one.
func scopeParams(r *http.Request) (condominiumID string, year int, err error) {
	condominiumID = strings.TrimSpace(r.URL.Query().Get("condominium"))
	if condominiumID == "" {
		return "", 0, fmt.Errorf("condominium parameter is required")
	}

	year = time.Now().Year()
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, convErr := strconv.Atoi(v)
		if convErr != nil || y < 2000 || y > 2100 {
			return "", 0, fmt.Errorf("invalid year %q", v)
		}
		year = y
	}

	return condominiumID, year, nil
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}
