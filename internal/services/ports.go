package services

import (
	"context"

	"wellness/internal/core"
)

// Repository ports, one per table. Implementations live in
// internal/storage (SQLite) and internal/storage/memory.
type (
	ExpenseRepository interface {
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		// ListExpenses returns all rows, newest first.
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		// SumExpensesOn sums amounts created on the given UTC day (core.DayLayout).
		SumExpensesOn(ctx context.Context, day string) (float64, error)
	}

	BudgetRepository interface {
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		// LatestBudget returns the zero Budget when the table is empty.
		LatestBudget(ctx context.Context) (core.Budget, error)
		ListBudgets(ctx context.Context) ([]core.Budget, error)
	}

	MentalRepository interface {
		CreateMentalEntry(ctx context.Context, e core.MentalEntry) (core.MentalEntry, error)
		ListMentalEntries(ctx context.Context) ([]core.MentalEntry, error)
		// AverageMoodSince returns nil when no entry since day has a mood.
		AverageMoodSince(ctx context.Context, day string) (*float64, error)
	}

	IntellectualRepository interface {
		CreateIntellectualEntry(ctx context.Context, e core.IntellectualEntry) (core.IntellectualEntry, error)
		ListIntellectualEntries(ctx context.Context) ([]core.IntellectualEntry, error)
		AverageProgressSince(ctx context.Context, day string) (*float64, error)
	}

	// Publisher announces newly created records to downstream consumers.
	Publisher interface {
		PublishRecordCreated(ctx context.Context, kind core.RecordKind, id int64) error
	}
)
