// Package memory is an in-process implementation of the repository ports.
// It backs DATA_BACKEND=memory and the service and handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"wellness/internal/core"
	"wellness/internal/sheets"
)

// Store keeps the four tables in slices ordered by insertion.
type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	expenses     []core.Expense
	budgets      []core.Budget
	mental       []core.MentalEntry
	intellectual []core.IntellectualEntry
	cursors      map[core.RecordKind]int64

	// Err, when set, is returned by every operation.
	Err error
}

func New() *Store {
	return &Store{now: time.Now, cursors: map[core.RecordKind]int64{}}
}

// NewWithClock returns a store whose timestamps come from now.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return core.Expense{}, s.Err
	}
	e.ID = int64(len(s.expenses) + 1)
	e.CreatedAt = s.stamp()
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := append([]core.Expense(nil), s.expenses...)
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *Store) SumExpensesOn(_ context.Context, day string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var total float64
	for _, e := range s.expenses {
		if core.DayKey(e.CreatedAt) == day {
			total += e.Amount
		}
	}
	return total, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return core.Budget{}, s.Err
	}
	b.ID = int64(len(s.budgets) + 1)
	b.CreatedAt = s.stamp()
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) LatestBudget(ctx context.Context) (core.Budget, error) {
	all, err := s.ListBudgets(ctx)
	if err != nil || len(all) == 0 {
		return core.Budget{}, err
	}
	return all[0], nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := append([]core.Budget(nil), s.budgets...)
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *Store) CreateMentalEntry(_ context.Context, e core.MentalEntry) (core.MentalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return core.MentalEntry{}, s.Err
	}
	e.ID = int64(len(s.mental) + 1)
	e.EntryDate = s.stamp()
	s.mental = append(s.mental, e)
	return e, nil
}

func (s *Store) ListMentalEntries(_ context.Context) ([]core.MentalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := append([]core.MentalEntry(nil), s.mental...)
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i].EntryDate, out[i].ID, out[j].EntryDate, out[j].ID)
	})
	return out, nil
}

func (s *Store) AverageMoodSince(_ context.Context, day string) (*float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var sum float64
	var n int
	for _, e := range s.mental {
		if e.MoodRating == nil || core.DayKey(e.EntryDate) < day {
			continue
		}
		sum += float64(*e.MoodRating)
		n++
	}
	return average(sum, n), nil
}

func (s *Store) CreateIntellectualEntry(_ context.Context, e core.IntellectualEntry) (core.IntellectualEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return core.IntellectualEntry{}, s.Err
	}
	e.ID = int64(len(s.intellectual) + 1)
	e.EntryDate = s.stamp()
	s.intellectual = append(s.intellectual, e)
	return e, nil
}

func (s *Store) ListIntellectualEntries(_ context.Context) ([]core.IntellectualEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := append([]core.IntellectualEntry(nil), s.intellectual...)
	sort.SliceStable(out, func(i, j int) bool {
		return newer(out[i].EntryDate, out[i].ID, out[j].EntryDate, out[j].ID)
	})
	return out, nil
}

func (s *Store) AverageProgressSince(_ context.Context, day string) (*float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var sum float64
	var n int
	for _, e := range s.intellectual {
		if core.DayKey(e.EntryDate) < day {
			continue
		}
		sum += float64(e.ProgressPercentage)
		n++
	}
	return average(sum, n), nil
}

// Ping implements the readiness check.
func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Err
}

func (s *Store) Close() error { return nil }

// newer orders by timestamp descending, then id descending.
func newer(at time.Time, id int64, bt time.Time, bid int64) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return id > bid
}

func average(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func (s *Store) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("memory(expenses=%d budgets=%d mental=%d intellectual=%d)",
		len(s.expenses), len(s.budgets), len(s.mental), len(s.intellectual))
}

// RowsAfter implements sheets.RecordSource.
func (s *Store) RowsAfter(_ context.Context, kind core.RecordKind, afterID int64, limit int) ([]sheets.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var rows []sheets.Row
	add := func(r sheets.Row) bool {
		if r.ID <= afterID {
			return true
		}
		rows = append(rows, r)
		return limit <= 0 || len(rows) < limit
	}
	switch kind {
	case core.KindExpense:
		for _, e := range s.expenses {
			if !add(sheets.ExpenseRow(e)) {
				break
			}
		}
	case core.KindBudget:
		for _, b := range s.budgets {
			if !add(sheets.BudgetRow(b)) {
				break
			}
		}
	case core.KindMental:
		for _, e := range s.mental {
			if !add(sheets.MentalRow(e)) {
				break
			}
		}
	case core.KindIntellectual:
		for _, e := range s.intellectual {
			if !add(sheets.IntellectualRow(e)) {
				break
			}
		}
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	return rows, nil
}

func (s *Store) ExportCursor(_ context.Context, kind core.RecordKind) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return s.cursors[kind], nil
}

func (s *Store) SetExportCursor(_ context.Context, kind core.RecordKind, lastID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if lastID > s.cursors[kind] {
		s.cursors[kind] = lastID
	}
	return nil
}
