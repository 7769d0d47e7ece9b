package core

// Table is the row/column shape consumed by tabular display and export.
// Cells are pre-formatted strings; the Total row is recomputed from the
// underlying cents, never summed from the rounded cell strings, so
// repeated rounding cannot drift.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Total   []string
}

// MonthlyTable renders the month-by-month income summary.
func MonthlyTable(records []PaymentRecord, opts AggregateOptions) Table {
	stats := AggregateByMonth(records, opts)

	t := Table{
		Title:   "Resumen mensual",
		Headers: []string{"Mes", "Pagado", "Pendiente", "Saldo a favor", "Ingreso conciliado", "Cumplimiento", "Morosidad"},
	}

	var paid, pending, saldo, reconciled Money
	var charges, settled int
	for _, s := range stats {
		t.Rows = append(t.Rows, []string{
			MonthName(s.Month),
			FormatAmount(s.Paid),
			FormatAmount(s.Pending),
			FormatAmount(s.Saldo),
			FormatAmount(s.PaidWithCredit),
			FormatPercent(s.ComplianceRate),
			FormatPercent(s.DelinquencyRate),
		})
		paid = paid.Add(s.Paid)
		pending = pending.Add(s.Pending)
		saldo = saldo.Add(s.Saldo)
		reconciled = reconciled.Add(s.PaidWithCredit)
		charges += s.ChargeCount
		settled += s.PaidCount
	}

	compliance := 0.0
	if charges > 0 {
		compliance = float64(settled) / float64(charges) * 100
	}
	t.Total = []string{
		"Total",
		FormatAmount(paid),
		FormatAmount(pending),
		FormatAmount(saldo),
		FormatAmount(reconciled),
		FormatPercent(compliance),
		FormatPercent(100 - compliance),
	}
	return t
}

// DimensionTable renders a grouped income summary for one dimension.
// Empty keys are labeled with the provided placeholder (accounts can be
// unassigned, concepts can arrive blank from the store).
func DimensionTable(title, keyHeader, emptyLabel string, records []PaymentRecord, key KeyFunc) Table {
	stats := SortedDimension(AggregateByDimension(records, key))

	t := Table{
		Title:   title,
		Headers: []string{keyHeader, "Cargos", "Pagado", "Ingreso conciliado", "Por cobrar", "Cumplimiento"},
	}

	var charged, paid, reconciled, outstanding Money
	var charges, settled int
	for _, s := range stats {
		label := s.Key
		if label == "" {
			label = emptyLabel
		}
		t.Rows = append(t.Rows, []string{
			label,
			FormatAmount(s.Charged),
			FormatAmount(s.Paid),
			FormatAmount(s.PaidWithCredit),
			FormatAmount(s.Outstanding),
			FormatPercent(s.ComplianceRate),
		})
		charged = charged.Add(s.Charged)
		paid = paid.Add(s.Paid)
		reconciled = reconciled.Add(s.PaidWithCredit)
		outstanding = outstanding.Add(s.Outstanding)
		charges += s.ChargeCount
		settled += s.PaidCount
	}

	compliance := 0.0
	if charges > 0 {
		compliance = float64(settled) / float64(charges) * 100
	}
	t.Total = []string{
		"Total",
		FormatAmount(charged),
		FormatAmount(paid),
		FormatAmount(reconciled),
		FormatAmount(outstanding),
		FormatPercent(compliance),
	}
	return t
}

// MorosityTable renders the per-unit delinquency report, worst payers
// included: units with outstanding balance and their delinquency rate.
func MorosityTable(records []PaymentRecord) Table {
	return DimensionTable("Morosidad por unidad", "Unidad", "(sin unidad)", records, ByUnit)
}

// ConceptTable renders the income summary grouped by charge concept.
func ConceptTable(records []PaymentRecord) Table {
	return DimensionTable("Ingresos por concepto", "Concepto", "(sin concepto)", records, ByConcept)
}

// AccountTable renders the income summary grouped by receiving account.
func AccountTable(records []PaymentRecord) Table {
	return DimensionTable("Ingresos por cuenta", "Cuenta", "(sin cuenta)", records, ByAccount)
}
