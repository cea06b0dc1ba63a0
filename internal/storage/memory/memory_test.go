package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/core"
)

type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func TestStore_ListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	s := NewWithClock((&stepClock{t: base, step: time.Minute}).Now)

	for _, title := range []string{"a", "b", "c"} {
		_, err := s.CreateExpense(ctx, core.Expense{Title: title, Amount: 1, Category: "x"})
		require.NoError(t, err)
	}

	items, err := s.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{items[0].Title, items[1].Title, items[2].Title})
}

func TestStore_SameTimestampFallsBackToID(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	s := NewWithClock(func() time.Time { return fixed })

	_, err := s.CreateBudget(ctx, core.Budget{MonthlyBudget: 100})
	require.NoError(t, err)
	_, err = s.CreateBudget(ctx, core.Budget{MonthlyBudget: 200})
	require.NoError(t, err)

	latest, err := s.LatestBudget(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), latest.ID)
	assert.Equal(t, 200.0, latest.MonthlyBudget)
}

func TestStore_SumAndAverages(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 23, 0, 0, 0, time.UTC)
	clock := now
	s := NewWithClock(func() time.Time { return clock })

	clock = now.AddDate(0, 0, -1)
	_, _ = s.CreateExpense(ctx, core.Expense{Title: "yesterday", Amount: 40, Category: "x"})
	_, _ = s.CreateMentalEntry(ctx, core.MentalEntry{MoodRating: ptr(int64(1))})

	clock = now.AddDate(0, 0, -8)
	_, _ = s.CreateMentalEntry(ctx, core.MentalEntry{MoodRating: ptr(int64(5))})

	clock = now
	_, _ = s.CreateExpense(ctx, core.Expense{Title: "today", Amount: 25, Category: "x"})
	_, _ = s.CreateMentalEntry(ctx, core.MentalEntry{MoodRating: ptr(int64(3))})
	_, _ = s.CreateMentalEntry(ctx, core.MentalEntry{})

	total, err := s.SumExpensesOn(ctx, core.DayKey(now))
	require.NoError(t, err)
	assert.Equal(t, 25.0, total)

	avg, err := s.AverageMoodSince(ctx, core.RecentSince(now))
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 2.0, *avg, 1e-9)

	avg, err = s.AverageProgressSince(ctx, core.RecentSince(now))
	require.NoError(t, err)
	assert.Nil(t, avg)
}

func TestStore_ErrIsReturnedEverywhere(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")
	s := New()
	s.Err = boom

	_, err := s.CreateExpense(ctx, core.Expense{})
	assert.ErrorIs(t, err, boom)
	_, err = s.ListMentalEntries(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = s.AverageProgressSince(ctx, "2024-01-01")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Ping(ctx), boom)
	_, err = s.RowsAfter(ctx, core.KindExpense, 0, 1)
	assert.ErrorIs(t, err, boom)
}

func TestStore_ExportCursor(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 3; i++ {
		_, err := s.CreateIntellectualEntry(ctx, core.IntellectualEntry{ProgressPercentage: int64(i * 10)})
		require.NoError(t, err)
	}

	rows, err := s.RowsAfter(ctx, core.KindIntellectual, 1, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].ID)

	rows, err = s.RowsAfter(ctx, core.KindIntellectual, 0, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, s.SetExportCursor(ctx, core.KindIntellectual, 3))
	require.NoError(t, s.SetExportCursor(ctx, core.KindIntellectual, 2))
	cursor, err := s.ExportCursor(ctx, core.KindIntellectual)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cursor)
}

func ptr[T any](v T) *T { return &v }
