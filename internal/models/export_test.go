package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToExportRow(t *testing.T) {
	bank := "ICICI"
	p := PersistedTransaction{
		Date:        time.Date(2024, 2, 29, 18, 0, 0, 0, time.UTC),
		Description: `Dinner "Taj"`,
		Amount:      MustAmount("2499.5"),
		Type:        TypeExpense,
		Category:    "Outside Food",
		AccountType: AccountTypeCreditCard,
		Bank:        &bank,
	}

	row := p.ToExportRow()
	assert.Equal(t, "2024-02-29", row.Date)
	assert.Equal(t, "", row.Time)
	assert.Equal(t, "ICICI", row.Bank)
	assert.Equal(t, "credit_card", row.AccountType)

	cells := row.Cells()
	assert.Len(t, cells, len(ExportHeaders))
	assert.Equal(t, 2499.5, cells[3])
}
