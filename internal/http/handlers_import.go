package http

import (
	"context"
	"net/http"
	"time"

	applog "cuotas/internal/log"
)

// handleSheetsImport pulls charge rows from the configured spreadsheet
// into the ledger. Returns 503 when no import source is configured.
func (s *Server) handleSheetsImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if s.importer == nil {
		writeError(w, http.StatusServiceUnavailable, "no import source configured")
		return
	}

	condominiumID, year, err := scopeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Imports read an external API, give them room to finish
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	count, err := s.importer.Import(ctx, condominiumID, year)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Sheets import error",
			"condominium_id", condominiumID, "year", year, "error", err)
		writeError(w, http.StatusBadGateway, "import failed")
		return
	}

	s.invalidateScope(condominiumID, year)

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Sheets import completed",
		"condominium_id", condominiumID, "year", year, "imported", count)
	writeJSON(w, http.StatusOK, map[string]any{"imported": count})
}
