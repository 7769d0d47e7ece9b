package http

import (
	"net/http"

	"cuotas/internal/core"
	applog "cuotas/internal/log"
)

// handleMonthlySummary returns the twelve monthly buckets for a
// condominium and fiscal year
func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
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

	stats, err := s.monthlyStats(r, condominiumID, year)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Monthly summary error",
			"condominium_id", condominiumID, "year", year, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build monthly summary")
		return
	}

	out := make([]map[string]any, 0, len(stats))
	for _, st := range stats {
		out = append(out, monthlyStatJSON(st))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleMonthExtremes returns the best and worst collection months of the
// elapsed part of the year
func (s *Server) handleMonthExtremes(w http.ResponseWriter, r *http.Request) {
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

	stats, err := s.monthlyStats(r, condominiumID, year)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Month extremes error",
			"condominium_id", condominiumID, "year", year, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute extremes")
		return
	}

	best, worst, ok := core.MonthExtremes(stats, core.AggregateOptions{Year: year})
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"available": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"available": true,
		"best":      monthlyStatJSON(best),
		"worst":     monthlyStatJSON(worst),
	})
}

// handleDimension builds a summary handler for one grouping key
func (s *Server) handleDimension(key core.KeyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		recs, err := s.ledger.ListRecords(r.Context(), condominiumID, year)
		if err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Dimension summary error",
				"condominium_id", condominiumID, "year", year, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to build summary")
			return
		}

		stats := core.SortedDimension(core.AggregateByDimension(recs, key))
		out := make([]map[string]any, 0, len(stats))
		for _, st := range stats {
			out = append(out, dimensionStatJSON(st))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// monthlyStats loads the cached monthly buckets for a scope, computing
// and caching them on a miss
func (s *Server) monthlyStats(r *http.Request, condominiumID string, year int) ([]core.MonthlyStat, error) {
	key := s.scopePrefix(condominiumID, year) + "monthly"
	if stats, found := s.summaryCache.Get(key); found {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Summary cache hit",
			"condominium_id", condominiumID, "year", year)
		return stats, nil
	}

	stats, err := s.ledger.MonthlySummary(r.Context(), condominiumID, year)
	if err != nil {
		return nil, err
	}

	s.summaryCache.Set(key, stats)
	return stats, nil
}

func monthlyStatJSON(st core.MonthlyStat) map[string]any {
	return map[string]any{
		"month":           st.Month,
		"monthName":       core.MonthName(st.Month),
		"paid":            st.Paid.Units(),
		"pending":         st.Pending.Units(),
		"saldo":           st.Saldo.Units(),
		"paidWithCredit":  st.PaidWithCredit.Units(),
		"outstanding":     st.Outstanding.Units(),
		"charged":         st.Charged.Units(),
		"chargeCount":     st.ChargeCount,
		"paidCount":       st.PaidCount,
		"complianceRate":  st.ComplianceRate,
		"delinquencyRate": st.DelinquencyRate,
	}
}

func dimensionStatJSON(st core.DimensionStat) map[string]any {
	return map[string]any{
		"key":             st.Key,
		"paid":            st.Paid.Units(),
		"pending":         st.Pending.Units(),
		"saldo":           st.Saldo.Units(),
		"paidWithCredit":  st.PaidWithCredit.Units(),
		"outstanding":     st.Outstanding.Units(),
		"charged":         st.Charged.Units(),
		"chargeCount":     st.ChargeCount,
		"paidCount":       st.PaidCount,
		"complianceRate":  st.ComplianceRate,
		"delinquencyRate": st.DelinquencyRate,
	}
}
