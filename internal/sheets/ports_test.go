package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"wellness/internal/core"
)

func TestTabName(t *testing.T) {
	assert.Equal(t, "Expenses", TabName("", core.KindExpense))
	assert.Equal(t, "Wellness Mental Wellness", TabName(" Wellness ", core.KindMental))
	assert.Equal(t, "2024 Budgets", TabName("2024", core.KindBudget))
}

func TestRowsMatchHeaders(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	mood := int64(4)
	book := "Dune"

	rows := map[core.RecordKind]Row{
		core.KindExpense:      ExpenseRow(core.Expense{ID: 1, Title: "Tea", Amount: 2, Category: "Food", CreatedAt: at}),
		core.KindBudget:       BudgetRow(core.Budget{ID: 2, MonthlyBudget: 900, CreatedAt: at}),
		core.KindMental:       MentalRow(core.MentalEntry{ID: 3, MoodRating: &mood, EntryDate: at}),
		core.KindIntellectual: IntellectualRow(core.IntellectualEntry{ID: 4, CurrentBook: &book, ProgressPercentage: 30, EntryDate: at}),
	}
	for kind, row := range rows {
		assert.Len(t, row.Values, len(Header(kind)), kind)
		assert.Equal(t, "2024-05-01 10:30:00", row.Values[1], kind)
	}

	m := rows[core.KindMental]
	assert.Equal(t, int64(4), m.Values[2])
	assert.Equal(t, "", m.Values[3], "null renders as empty cell")
	assert.Equal(t, "Dune", rows[core.KindIntellectual].Values[4])
	assert.Nil(t, Header(core.RecordKind("other")))
}
