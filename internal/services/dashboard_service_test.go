package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/cache"
	"wellness/internal/core"
	"wellness/internal/storage/memory"
)

type dashboardFixture struct {
	store        *memory.Store
	budgets      *BudgetService
	expenses     *ExpenseService
	mental       *MentalWellnessService
	intellectual *IntellectualWellnessService
	dashboard    *DashboardService
	clock        *time.Time
}

func newDashboardFixture(now time.Time) *dashboardFixture {
	clock := now
	store := memory.NewWithClock(func() time.Time { return clock })
	budgets := NewBudgetService(store, cache.NewLRUCache[core.Budget](1, time.Minute), nil)
	f := &dashboardFixture{
		store:        store,
		budgets:      budgets,
		expenses:     NewExpenseService(store, nil),
		mental:       NewMentalWellnessService(store, nil),
		intellectual: NewIntellectualWellnessService(store, nil),
		clock:        &clock,
	}
	f.dashboard = NewDashboardService(budgets, store, store, store).WithClock(func() time.Time { return now })
	return f
}

func (f *dashboardFixture) at(t time.Time) { *f.clock = t }

func TestDashboardService_NoData(t *testing.T) {
	f := newDashboardFixture(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	stats, err := f.dashboard.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.DashboardStats{Financial: 100, Mental: 75, Intellectual: 70, Overall: 82}, stats)
}

func TestDashboardService_HalfDailyBudgetSpent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := newDashboardFixture(now)

	_, err := f.budgets.SetMonthlyBudget(ctx, ptr(3000.0))
	require.NoError(t, err)
	_, err = f.expenses.RecordExpense(ctx, "Dinner", ptr(50.0), "Food")
	require.NoError(t, err)

	f.at(now.AddDate(0, 0, -1))
	_, err = f.expenses.RecordExpense(ctx, "Yesterday", ptr(500.0), "Food")
	require.NoError(t, err)

	stats, err := f.dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DashboardStats{Financial: 50, Mental: 75, Intellectual: 70, Overall: 65}, stats)
}

func TestDashboardService_RecentWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)
	f := newDashboardFixture(now)

	f.at(now.AddDate(0, 0, -7))
	_, err := f.mental.RecordEntry(ctx, ptr(int64(3)), nil, nil, nil)
	require.NoError(t, err)
	_, err = f.intellectual.RecordEntry(ctx, nil, nil, nil, ptr(int64(40)))
	require.NoError(t, err)

	// Outside the window.
	f.at(now.AddDate(0, 0, -9))
	_, err = f.mental.RecordEntry(ctx, ptr(int64(5)), nil, nil, nil)
	require.NoError(t, err)
	_, err = f.intellectual.RecordEntry(ctx, nil, nil, nil, ptr(int64(100)))
	require.NoError(t, err)

	stats, err := f.dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, stats.Mental)
	assert.Equal(t, 40, stats.Intellectual)
	assert.Equal(t, 100, stats.Financial)
	assert.Equal(t, 67, stats.Overall)
}

func TestDashboardService_Overspent(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	_, err := f.budgets.SetMonthlyBudget(ctx, ptr(300.0))
	require.NoError(t, err)
	_, err = f.expenses.RecordExpense(ctx, "Laptop", ptr(1000.0), "Tech")
	require.NoError(t, err)
	_, err = f.intellectual.RecordEntry(ctx, nil, nil, nil, ptr(int64(40)))
	require.NoError(t, err)

	stats, err := f.dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.DashboardStats{Financial: 0, Mental: 75, Intellectual: 40, Overall: 38}, stats)
}

func TestDashboardService_FailsFastOnStoreError(t *testing.T) {
	f := newDashboardFixture(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	f.store.Err = errors.New("no such table: expenses")

	_, err := f.dashboard.Stats(context.Background())
	require.Error(t, err)

	var storeErr *core.StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.Contains(t, err.Error(), "no such table: expenses")
}
