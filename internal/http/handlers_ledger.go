package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cuotas/internal/core"
	applog "cuotas/internal/log"
	"cuotas/internal/records"
)

type chargeRequest struct {
	UnitNumber string `json:"unitNumber"`
	Concept    string `json:"concept"`
	Amount     string `json:"amount"`
	StartDate  string `json:"startDate"`
	AccountID  string `json:"accountId"`
}

type chargeResponse struct {
	ID string `json:"id"`
}

// handleCharges serves GET (list ledger) and POST (create charge)
func (s *Server) handleCharges(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListCharges(w, r)
	case http.MethodPost:
		s.handleCreateCharge(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleListCharges(w http.ResponseWriter, r *http.Request) {
	condominiumID, year, err := scopeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := s.ledger.ListRecords(r.Context(), condominiumID, year)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "List charges error",
			"condominium_id", condominiumID, "year", year, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list charges")
		return
	}

	out := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		out = append(out, chargeJSON(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCharge(w http.ResponseWriter, r *http.Request) {
	condominiumID, _, err := scopeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req chargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	startDate := strings.TrimSpace(req.StartDate)
	if len(startDate) < 10 {
		writeError(w, http.StatusUnprocessableEntity, "startDate must be an ISO date")
		return
	}
	month := startDate[5:7]
	if !core.ValidMonth(month) {
		writeError(w, http.StatusUnprocessableEntity, "startDate has no valid month")
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	rec := core.PaymentRecord{
		UnitNumber:      sanitizeInput(req.UnitNumber),
		Month:           month,
		Concept:         sanitizeInput(req.Concept),
		ReferenceAmount: core.Money{Cents: cents},
		AmountPending:   core.Money{Cents: cents},
		AccountID:       sanitizeInput(req.AccountID),
	}

	id, err := s.ledger.CreateCharge(r.Context(), condominiumID, rec, startDate)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Create charge error",
			"condominium_id", condominiumID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create charge")
		return
	}

	s.invalidateScope(condominiumID, yearOf(startDate))
	writeJSON(w, http.StatusCreated, chargeResponse{ID: id})
}

type paymentRequest struct {
	ChargeID    string `json:"chargeId"`
	Amount      string `json:"amount"`
	CreditUsed  string `json:"creditUsed"`
	PaymentDate string `json:"paymentDate"`
	PaymentType string `json:"paymentType"`
}

func (s *Server) handleApplyPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	condominiumID, year, err := scopeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ChargeID) == "" {
		writeError(w, http.StatusUnprocessableEntity, "chargeId is required")
		return
	}

	cents, err := core.ParseDecimalToCents(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	var creditUsed int64
	if v := strings.TrimSpace(req.CreditUsed); v != "" {
		creditUsed, err = core.ParseDecimalToCents(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid creditUsed")
			return
		}
	}

	payment := records.Payment{
		ChargeID:    strings.TrimSpace(req.ChargeID),
		Amount:      core.Money{Cents: cents},
		CreditUsed:  core.Money{Cents: creditUsed},
		PaymentDate: sanitizeInput(req.PaymentDate),
		PaymentType: sanitizeInput(req.PaymentType),
	}

	chargeYear, err := s.ledger.ApplyPayment(r.Context(), condominiumID, payment)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Apply payment error",
			"condominium_id", condominiumID, "charge_id", payment.ChargeID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to apply payment")
		return
	}

	// Cached summaries belong to the charge's fiscal year, which can
	// differ from the payment date's calendar year.
	if chargeYear != 0 {
		year = chargeYear
	}
	s.invalidateScope(condominiumID, year)
	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

type accountRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	InitialBalance string `json:"initialBalance"`
	CreationMonth  string `json:"creationMonth"`
}

// handleAccounts serves GET (list) and POST (register or update)
func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	condominiumID, year, err := scopeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		accounts, err := s.ledger.ListAccounts(r.Context(), condominiumID)
		if err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "List accounts error",
				"condominium_id", condominiumID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list accounts")
			return
		}
		out := make([]map[string]any, 0, len(accounts))
		for _, a := range accounts {
			out = append(out, map[string]any{
				"id":                  a.ID,
				"name":                a.Name,
				"initialBalanceCents": a.InitialBalance.Cents,
				"initialBalance":      core.FormatAmount(a.InitialBalance),
				"creationMonth":       a.CreationMonth,
			})
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req accountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var initial int64
		if v := strings.TrimSpace(req.InitialBalance); v != "" {
			initial, err = core.ParseDecimalToCents(v)
			if err != nil {
				writeError(w, http.StatusUnprocessableEntity, "invalid initialBalance")
				return
			}
		}

		account := core.Account{
			ID:             sanitizeInput(req.ID),
			Name:           sanitizeInput(req.Name),
			InitialBalance: core.Money{Cents: initial},
			CreationMonth:  strings.TrimSpace(req.CreationMonth),
		}
		if account.ID == "" {
			writeError(w, http.StatusUnprocessableEntity, "id is required")
			return
		}

		if err := s.ledger.RegisterAccount(r.Context(), condominiumID, account); err != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Register account error",
				"condominium_id", condominiumID, "account_id", account.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to register account")
			return
		}

		s.invalidateScope(condominiumID, year)
		writeJSON(w, http.StatusOK, map[string]string{"status": "registered"})

	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func chargeJSON(rec core.PaymentRecord) map[string]any {
	rc := core.Reconcile(rec)
	return map[string]any{
		"id":              rec.ID,
		"unitNumber":      rec.UnitNumber,
		"month":           rec.Month,
		"concept":         rec.Concept,
		"referenceAmount": rec.ReferenceAmount.Units(),
		"amountPaid":      rec.AmountPaid.Units(),
		"amountPending":   rec.AmountPending.Units(),
		"creditBalance":   rec.CreditBalance.Units(),
		"creditUsed":      rec.CreditUsed.Units(),
		"reconciledPaid":  rc.ReconciledPaid.Units(),
		"outstanding":     rc.OutstandingBalance.Units(),
		"paid":            rec.Paid,
		"accountId":       rec.AccountID,
		"paymentDate":     rec.PaymentDate,
		"paymentType":     rec.PaymentType,
	}
}

func yearOf(isoDate string) int {
	if len(isoDate) >= 4 {
		if y := parseIntOr(isoDate[:4], 0); y >= 2000 && y <= 2100 {
			return y
		}
	}
	return 0
}

func parseIntOr(s string, fallback int) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidAmount, core.ErrInvalidMonth, core.ErrEmptyUnit, core.ErrEmptyConcept,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
