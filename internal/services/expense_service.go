package services

import (
	"context"
	"log/slog"

	"wellness/internal/core"
)

// ExpenseService records expenses and notifies the export pipeline.
type ExpenseService struct {
	repo      ExpenseRepository
	publisher Publisher
}

func NewExpenseService(repo ExpenseRepository, publisher Publisher) *ExpenseService {
	return &ExpenseService{
		repo:      repo,
		publisher: publisher,
	}
}

// RecordExpense validates and stores a new expense.
func (s *ExpenseService) RecordExpense(ctx context.Context, title string, amount *float64, category string) (core.Expense, error) {
	e, err := core.NewExpense(title, amount, category)
	if err != nil {
		return core.Expense{}, err
	}

	created, err := s.repo.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, core.WrapStore("create expense", err)
	}

	slog.InfoContext(ctx, "Expense recorded",
		"id", created.ID,
		"amount", created.Amount,
		"category", created.Category)

	publishCreated(ctx, s.publisher, core.KindExpense, created.ID)
	return created, nil
}

// ListExpenses returns every expense, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	items, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return nil, core.WrapStore("list expenses", err)
	}
	if items == nil {
		items = []core.Expense{}
	}
	return items, nil
}

// publishCreated sends a best-effort notification. The record is already
// stored, so a failed publish is logged and never surfaced to the caller.
func publishCreated(ctx context.Context, p Publisher, kind core.RecordKind, id int64) {
	if p == nil {
		slog.DebugContext(ctx, "Publisher not configured, skipping notification", "kind", kind, "id", id)
		return
	}
	if err := p.PublishRecordCreated(ctx, kind, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record notification",
			"kind", kind, "id", id, "error", err)
	}
}
