package http

import (
	"net/http"

	"cuotas/internal/core"
	applog "cuotas/internal/log"
)

// handleMonthlyReport returns the month-by-month income table
func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	s.handleReport(w, r, "report-monthly", func(recs []core.PaymentRecord, year int) core.Table {
		return core.MonthlyTable(recs, core.AggregateOptions{Year: year})
	})
}

// handleMorosityReport returns the per-unit delinquency table
func (s *Server) handleMorosityReport(w http.ResponseWriter, r *http.Request) {
	s.handleReport(w, r, "report-morosity", func(recs []core.PaymentRecord, _ int) core.Table {
		return core.MorosityTable(recs)
	})
}

// handleConceptReport returns the income table grouped by concept
func (s *Server) handleConceptReport(w http.ResponseWriter, r *http.Request) {
	s.handleReport(w, r, "report-concepts", func(recs []core.PaymentRecord, _ int) core.Table {
		return core.ConceptTable(recs)
	})
}

// handleAccountReport returns the income table grouped by financial account
func (s *Server) handleAccountReport(w http.ResponseWriter, r *http.Request) {
	s.handleReport(w, r, "report-accounts", func(recs []core.PaymentRecord, _ int) core.Table {
		return core.AccountTable(recs)
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, view string, build func([]core.PaymentRecord, int) core.Table) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	condominiumID, year, err := scopeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := s.scopePrefix(condominiumID, year) + view
	if table, found := s.reportCache.Get(key); found {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Report cache hit",
			"condominium_id", condominiumID, "year", year, "view", view)
		writeJSON(w, http.StatusOK, tableJSON(table))
		return
	}

	recs, err := s.ledger.ListRecords(r.Context(), condominiumID, year)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Report error",
			"condominium_id", condominiumID, "year", year, "view", view, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	table := build(recs, year)
	s.reportCache.Set(key, table)
	writeJSON(w, http.StatusOK, tableJSON(table))
}

func tableJSON(t core.Table) map[string]any {
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return map[string]any{
		"title":   t.Title,
		"headers": t.Headers,
		"rows":    rows,
		"total":   t.Total,
	}
}
