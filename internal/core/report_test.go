package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyTableShape(t *testing.T) {
	table := MonthlyTable(sampleRecords(), AggregateOptions{Year: 2025})
	require.Len(t, table.Rows, 12)
	require.Len(t, table.Total, len(table.Headers))
	assert.Equal(t, "Enero", table.Rows[0][0])
	assert.Equal(t, "Total", table.Total[0])
}

func TestMonthlyTableTotalRecomputedFromCents(t *testing.T) {
	// totals come from exact cents, not from summing rounded cells
	records := sampleRecords()
	table := MonthlyTable(records, AggregateOptions{Year: 2025})

	var reconciled Money
	for _, r := range records {
		reconciled = reconciled.Add(Reconcile(r).ReconciledPaid)
	}
	assert.Equal(t, FormatAmount(reconciled), table.Total[4])
}

func TestDimensionTableLabelsEmptyKey(t *testing.T) {
	table := AccountTable(sampleRecords())
	var found bool
	for _, row := range table.Rows {
		if row[0] == "(sin cuenta)" {
			found = true
		}
	}
	assert.True(t, found, "empty account key not labeled")
}

func TestMorosityTableTotalsMatchUnits(t *testing.T) {
	records := sampleRecords()
	table := MorosityTable(records)
	require.Len(t, table.Rows, 3)

	var outstanding Money
	for _, r := range records {
		outstanding = outstanding.Add(Reconcile(r).OutstandingBalance)
	}
	assert.Equal(t, FormatAmount(outstanding), table.Total[4])
}

func TestConceptTableEmptyInput(t *testing.T) {
	table := ConceptTable(nil)
	assert.Empty(t, table.Rows)
	require.NotEmpty(t, table.Total)
	assert.Equal(t, "$0.00", table.Total[1])
	assert.Equal(t, "0.00%", table.Total[5])
}
