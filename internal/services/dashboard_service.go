package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"wellness/internal/core"
)

// LatestBudgetReader is satisfied by *BudgetService so the dashboard reads
// through the budget projection.
type LatestBudgetReader interface {
	LatestBudget(ctx context.Context) (core.Budget, error)
}

// DashboardService combines recent records into wellness scores.
type DashboardService struct {
	budgets      LatestBudgetReader
	expenses     ExpenseRepository
	mental       MentalRepository
	intellectual IntellectualRepository
	now          func() time.Time
}

func NewDashboardService(budgets LatestBudgetReader, expenses ExpenseRepository, mental MentalRepository, intellectual IntellectualRepository) *DashboardService {
	return &DashboardService{
		budgets:      budgets,
		expenses:     expenses,
		mental:       mental,
		intellectual: intellectual,
		now:          time.Now,
	}
}

// WithClock overrides the time source; used by tests.
func (s *DashboardService) WithClock(now func() time.Time) *DashboardService {
	s.now = now
	return s
}

// Stats issues the four reads concurrently. The first failure cancels
// the remaining reads and fails the whole request.
func (s *DashboardService) Stats(ctx context.Context) (core.DashboardStats, error) {
	now := s.now()
	today := core.DayKey(now)
	since := core.RecentSince(now)

	var in core.DashboardInputs
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b, err := s.budgets.LatestBudget(gctx)
		if err != nil {
			return fmt.Errorf("read latest budget: %w", err)
		}
		in.Budget = b
		return nil
	})
	g.Go(func() error {
		total, err := s.expenses.SumExpensesOn(gctx, today)
		if err != nil {
			return fmt.Errorf("sum today's expenses: %w", core.WrapStore("sum expenses", err))
		}
		in.TodayExpenses = total
		return nil
	})
	g.Go(func() error {
		avg, err := s.mental.AverageMoodSince(gctx, since)
		if err != nil {
			return fmt.Errorf("average mood: %w", core.WrapStore("average mood", err))
		}
		in.AvgMood = avg
		return nil
	})
	g.Go(func() error {
		avg, err := s.intellectual.AverageProgressSince(gctx, since)
		if err != nil {
			return fmt.Errorf("average progress: %w", core.WrapStore("average progress", err))
		}
		in.AvgProgress = avg
		return nil
	})

	if err := g.Wait(); err != nil {
		return core.DashboardStats{}, err
	}

	stats := core.ComputeDashboard(in)
	slog.DebugContext(ctx, "Dashboard computed",
		"today", today,
		"since", since,
		"budget_configured", in.Budget.Configured(),
		"today_expenses", in.TodayExpenses,
		"overall", stats.Overall)
	return stats, nil
}
