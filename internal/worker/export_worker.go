package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"wellness/internal/amqp"
	"wellness/internal/core"
	"wellness/internal/sheets"
)

const defaultBatchSize = 50

// ExportWorker copies records to the spreadsheet in id order. Progress per
// kind lives in the store's export cursor, so replays and duplicate
// notifications append nothing twice. A crash between the append and the
// cursor update can repeat that one batch.
type ExportWorker struct {
	source    sheets.RecordSource
	sink      sheets.RowAppender
	batchSize int

	locks map[core.RecordKind]*sync.Mutex
}

func NewExportWorker(source sheets.RecordSource, sink sheets.RowAppender, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	locks := make(map[core.RecordKind]*sync.Mutex)
	for _, k := range core.RecordKinds() {
		locks[k] = &sync.Mutex{}
	}
	return &ExportWorker{
		source:    source,
		sink:      sink,
		batchSize: batchSize,
		locks:     locks,
	}
}

// HandleRecordCreated exports everything pending for the message's kind.
func (w *ExportWorker) HandleRecordCreated(ctx context.Context, msg *amqp.RecordCreatedMessage) error {
	slog.DebugContext(ctx, "Record notification received", "kind", msg.Kind, "id", msg.ID)

	n, err := w.ExportKind(ctx, msg.Kind)
	if err != nil {
		return fmt.Errorf("export after %s %d: %w", msg.Kind, msg.ID, err)
	}
	if n == 0 {
		slog.DebugContext(ctx, "Record already exported", "kind", msg.Kind, "id", msg.ID)
	}
	return nil
}

// ExportKind appends every row past the cursor in batches and returns how
// many rows were exported.
func (w *ExportWorker) ExportKind(ctx context.Context, kind core.RecordKind) (int, error) {
	lock, ok := w.locks[kind]
	if !ok {
		return 0, fmt.Errorf("unknown record kind %q", kind)
	}
	lock.Lock()
	defer lock.Unlock()

	cursor, err := w.source.ExportCursor(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("read cursor: %w", err)
	}

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		rows, err := w.source.RowsAfter(ctx, kind, cursor, w.batchSize)
		if err != nil {
			return total, fmt.Errorf("read %s rows after %d: %w", kind, cursor, err)
		}
		if len(rows) == 0 {
			break
		}

		if err := w.sink.AppendRows(ctx, kind, rows); err != nil {
			return total, fmt.Errorf("append %s rows: %w", kind, err)
		}

		last := rows[len(rows)-1].ID
		if err := w.source.SetExportCursor(ctx, kind, last); err != nil {
			return total, fmt.Errorf("advance %s cursor to %d: %w", kind, last, err)
		}
		cursor = last
		total += len(rows)

		if len(rows) < w.batchSize {
			break
		}
	}

	if total > 0 {
		slog.InfoContext(ctx, "Records exported", "kind", kind, "rows", total, "cursor", cursor)
	}
	return total, nil
}

// Backfill exports pending rows of every kind. A failing kind does not stop
// the others; all failures are returned together.
func (w *ExportWorker) Backfill(ctx context.Context) error {
	var errs []error
	for _, kind := range core.RecordKinds() {
		if _, err := w.ExportKind(ctx, kind); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}

// RunBackfill calls Backfill immediately and then on every tick until ctx
// ends. It is the safety net for lost notifications.
func (w *ExportWorker) RunBackfill(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.Backfill(ctx); err != nil && ctx.Err() == nil {
			slog.ErrorContext(ctx, "Backfill failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
