package sheets

import (
	"context"
	"strings"
	"time"

	"wellness/internal/core"
)

// Row is one record flattened for a spreadsheet tab.
type Row struct {
	ID     int64
	Values []any
}

// Ports for outbound adapters.
type (
	// RowAppender writes rows to the tab that holds records of kind.
	RowAppender interface {
		AppendRows(ctx context.Context, kind core.RecordKind, rows []Row) error
	}

	// RecordSource reads records in id order for export and tracks
	// how far the export has progressed.
	RecordSource interface {
		RowsAfter(ctx context.Context, kind core.RecordKind, afterID int64, limit int) ([]Row, error)
		ExportCursor(ctx context.Context, kind core.RecordKind) (int64, error)
		SetExportCursor(ctx context.Context, kind core.RecordKind, lastID int64) error
	}
)

// TabName returns "<prefix> <Title>" for a kind, or just the title when
// prefix is blank.
func TabName(prefix string, kind core.RecordKind) string {
	var title string
	switch kind {
	case core.KindExpense:
		title = "Expenses"
	case core.KindBudget:
		title = "Budgets"
	case core.KindMental:
		title = "Mental Wellness"
	case core.KindIntellectual:
		title = "Intellectual Wellness"
	default:
		title = string(kind)
	}
	if prefix = strings.TrimSpace(prefix); prefix == "" {
		return title
	}
	return prefix + " " + title
}

// Header returns the column titles for a kind's tab.
func Header(kind core.RecordKind) []any {
	switch kind {
	case core.KindExpense:
		return []any{"ID", "Created", "Title", "Amount", "Category"}
	case core.KindBudget:
		return []any{"ID", "Created", "Monthly budget"}
	case core.KindMental:
		return []any{"ID", "Date", "Mood", "Meditation (min)", "Sleep (h)", "Notes"}
	case core.KindIntellectual:
		return []any{"ID", "Date", "Learning goal", "Reading (min)", "Book", "Progress %"}
	default:
		return nil
	}
}

func ExpenseRow(e core.Expense) Row {
	return Row{ID: e.ID, Values: []any{e.ID, stamp(e.CreatedAt), e.Title, e.Amount, e.Category}}
}

func BudgetRow(b core.Budget) Row {
	return Row{ID: b.ID, Values: []any{b.ID, stamp(b.CreatedAt), b.MonthlyBudget}}
}

func MentalRow(e core.MentalEntry) Row {
	return Row{ID: e.ID, Values: []any{e.ID, stamp(e.EntryDate), cell(e.MoodRating), cell(e.MeditationMinutes), cell(e.SleepHours), cell(e.Notes)}}
}

func IntellectualRow(e core.IntellectualEntry) Row {
	return Row{ID: e.ID, Values: []any{e.ID, stamp(e.EntryDate), cell(e.LearningGoal), cell(e.ReadingTime), cell(e.CurrentBook), e.ProgressPercentage}}
}

func stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// cell renders a nullable value; null becomes an empty cell.
func cell[T any](v *T) any {
	if v == nil {
		return ""
	}
	return *v
}
