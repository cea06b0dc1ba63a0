// Package memory records exported rows in process. It stands in for the
// spreadsheet when no GOOGLE_SPREADSHEET_ID is configured and in tests.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"wellness/internal/core"
	"wellness/internal/sheets"
)

type Sheet struct {
	mu     sync.Mutex
	prefix string
	tabs   map[string][]sheets.Row
	calls  int

	// Err, when set, fails every append.
	Err error
}

var _ sheets.RowAppender = (*Sheet)(nil)

func New(prefix string) *Sheet {
	return &Sheet{prefix: prefix, tabs: make(map[string][]sheets.Row)}
}

func (s *Sheet) AppendRows(ctx context.Context, kind core.RecordKind, rows []sheets.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if len(rows) == 0 {
		return nil
	}
	tab := sheets.TabName(s.prefix, kind)
	s.tabs[tab] = append(s.tabs[tab], rows...)
	s.calls++
	slog.DebugContext(ctx, "Rows recorded in memory sheet", "tab", tab, "rows", len(rows))
	return nil
}

// Rows returns a copy of what was appended for kind.
func (s *Sheet) Rows(kind core.RecordKind) []sheets.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.Row(nil), s.tabs[sheets.TabName(s.prefix, kind)]...)
}

// IDs lists the ids appended for kind, in append order.
func (s *Sheet) IDs(kind core.RecordKind) []int64 {
	rows := s.Rows(kind)
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

// Calls counts non-empty appends.
func (s *Sheet) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
