package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/amqp"
	"wellness/internal/core"
	sheetmem "wellness/internal/sheets/memory"
	"wellness/internal/storage/memory"
)

func seedExpenses(t *testing.T, store *memory.Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := store.CreateExpense(context.Background(), core.Expense{Title: "e", Amount: float64(i + 1), Category: "c"})
		require.NoError(t, err)
	}
}

func TestExportWorker_ExportKindBatches(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	sink := sheetmem.New("Test")
	seedExpenses(t, store, 5)

	w := NewExportWorker(store, sink, 2)
	n, err := w.ExportKind(ctx, core.KindExpense)
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, sink.IDs(core.KindExpense))
	assert.Equal(t, 3, sink.Calls())

	cursor, err := store.ExportCursor(ctx, core.KindExpense)
	require.NoError(t, err)
	assert.Equal(t, int64(5), cursor)
}

func TestExportWorker_DuplicateNotificationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	sink := sheetmem.New("")
	w := NewExportWorker(store, sink, 10)

	seedExpenses(t, store, 1)
	msg := amqp.NewRecordCreatedMessage(core.KindExpense, 1)
	require.NoError(t, w.HandleRecordCreated(ctx, msg))
	require.NoError(t, w.HandleRecordCreated(ctx, msg))

	seedExpenses(t, store, 1)
	require.NoError(t, w.HandleRecordCreated(ctx, amqp.NewRecordCreatedMessage(core.KindExpense, 2)))

	assert.Equal(t, []int64{1, 2}, sink.IDs(core.KindExpense))
}

func TestExportWorker_SinkFailureKeepsCursor(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	sink := sheetmem.New("")
	seedExpenses(t, store, 3)

	w := NewExportWorker(store, sink, 10)
	sink.Err = errors.New("quota exceeded")

	err := w.HandleRecordCreated(ctx, amqp.NewRecordCreatedMessage(core.KindExpense, 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	cursor, err := store.ExportCursor(ctx, core.KindExpense)
	require.NoError(t, err)
	assert.Zero(t, cursor)

	sink.Err = nil
	require.NoError(t, w.HandleRecordCreated(ctx, amqp.NewRecordCreatedMessage(core.KindExpense, 3)))
	assert.Equal(t, []int64{1, 2, 3}, sink.IDs(core.KindExpense))
}

func TestExportWorker_BackfillAllKinds(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	sink := sheetmem.New("")
	mood := int64(3)

	seedExpenses(t, store, 2)
	_, _ = store.CreateBudget(ctx, core.Budget{MonthlyBudget: 1000})
	_, _ = store.CreateMentalEntry(ctx, core.MentalEntry{MoodRating: &mood})
	_, _ = store.CreateIntellectualEntry(ctx, core.IntellectualEntry{ProgressPercentage: 10})

	w := NewExportWorker(store, sink, 0)
	require.NoError(t, w.Backfill(ctx))

	assert.Len(t, sink.IDs(core.KindExpense), 2)
	assert.Len(t, sink.IDs(core.KindBudget), 1)
	assert.Len(t, sink.IDs(core.KindMental), 1)
	assert.Len(t, sink.IDs(core.KindIntellectual), 1)

	require.NoError(t, w.Backfill(ctx))
	assert.Equal(t, 4, sink.Calls())
}

func TestExportWorker_BackfillReportsStoreErrors(t *testing.T) {
	store := memory.New()
	store.Err = errors.New("database is locked")
	w := NewExportWorker(store, sheetmem.New(""), 10)

	err := w.Backfill(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expense:")
	assert.Contains(t, err.Error(), "intellectual:")
}

func TestExportWorker_UnknownKind(t *testing.T) {
	w := NewExportWorker(memory.New(), sheetmem.New(""), 10)
	_, err := w.ExportKind(context.Background(), core.RecordKind("income"))
	assert.Error(t, err)
}

func TestExportWorker_RunBackfillStopsOnCancel(t *testing.T) {
	store := memory.New()
	sink := sheetmem.New("")
	seedExpenses(t, store, 1)
	w := NewExportWorker(store, sink, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.RunBackfill(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(sink.IDs(core.KindExpense)) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunBackfill did not stop")
	}
}
