package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"wellness/internal/core"
	"wellness/internal/sheets"

	_ "modernc.org/sqlite"
)

// timestampLayout matches strftime('%Y-%m-%d %H:%M:%f') in the schema defaults.
const timestampLayout = "2006-01-02 15:04:05.000"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("SQLite repository ready", "path", dbPath)
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Expenses

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	var created string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO expenses (title, amount, category) VALUES (?, ?, ?) RETURNING id, created_at`,
		e.Title, e.Amount, e.Category,
	).Scan(&e.ID, &created)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	if e.CreatedAt, err = parseTimestamp(created); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, amount, category, created_at FROM expenses ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	items := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) SumExpensesOn(ctx context.Context, day string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE date(created_at) = ?`, day,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum expenses for %s: %w", day, err)
	}
	return total, nil
}

// Budgets

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	var created string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO budgets (monthly_budget) VALUES (?) RETURNING id, created_at`,
		b.MonthlyBudget,
	).Scan(&b.ID, &created)
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	if b.CreatedAt, err = parseTimestamp(created); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// LatestBudget returns the zero Budget when none has been set.
func (r *SQLiteRepository) LatestBudget(ctx context.Context) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, monthly_budget, created_at FROM budgets ORDER BY created_at DESC, id DESC LIMIT 1`)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, nil
	}
	return b, err
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, monthly_budget, created_at FROM budgets ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	items := []core.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

// Mental wellness

func (r *SQLiteRepository) CreateMentalEntry(ctx context.Context, e core.MentalEntry) (core.MentalEntry, error) {
	var created string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO mental_wellness (mood_rating, meditation_minutes, sleep_hours, notes)
		 VALUES (?, ?, ?, ?) RETURNING id, entry_date`,
		nullable(e.MoodRating), nullable(e.MeditationMinutes), nullable(e.SleepHours), nullable(e.Notes),
	).Scan(&e.ID, &created)
	if err != nil {
		return core.MentalEntry{}, fmt.Errorf("insert mental wellness entry: %w", err)
	}
	if e.EntryDate, err = parseTimestamp(created); err != nil {
		return core.MentalEntry{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) ListMentalEntries(ctx context.Context) ([]core.MentalEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, mood_rating, meditation_minutes, sleep_hours, notes, entry_date
		 FROM mental_wellness ORDER BY entry_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query mental wellness entries: %w", err)
	}
	defer rows.Close()

	items := []core.MentalEntry{}
	for rows.Next() {
		e, err := scanMental(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// AverageMoodSince averages non-null moods on or after day; nil when there are none.
func (r *SQLiteRepository) AverageMoodSince(ctx context.Context, day string) (*float64, error) {
	return r.average(ctx, "average mood",
		`SELECT AVG(mood_rating) FROM mental_wellness WHERE date(entry_date) >= ?`, day)
}

// Intellectual wellness

func (r *SQLiteRepository) CreateIntellectualEntry(ctx context.Context, e core.IntellectualEntry) (core.IntellectualEntry, error) {
	var created string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO intellectual_wellness (learning_goal, reading_time, current_book, progress_percentage)
		 VALUES (?, ?, ?, ?) RETURNING id, entry_date`,
		nullable(e.LearningGoal), nullable(e.ReadingTime), nullable(e.CurrentBook), e.ProgressPercentage,
	).Scan(&e.ID, &created)
	if err != nil {
		return core.IntellectualEntry{}, fmt.Errorf("insert intellectual wellness entry: %w", err)
	}
	if e.EntryDate, err = parseTimestamp(created); err != nil {
		return core.IntellectualEntry{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) ListIntellectualEntries(ctx context.Context) ([]core.IntellectualEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, learning_goal, reading_time, current_book, progress_percentage, entry_date
		 FROM intellectual_wellness ORDER BY entry_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query intellectual wellness entries: %w", err)
	}
	defer rows.Close()

	items := []core.IntellectualEntry{}
	for rows.Next() {
		e, err := scanIntellectual(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) AverageProgressSince(ctx context.Context, day string) (*float64, error) {
	return r.average(ctx, "average progress",
		`SELECT AVG(progress_percentage) FROM intellectual_wellness WHERE date(entry_date) >= ?`, day)
}

func (r *SQLiteRepository) average(ctx context.Context, what, query string, day string) (*float64, error) {
	var avg sql.Null[float64]
	if err := r.db.QueryRowContext(ctx, query, day).Scan(&avg); err != nil {
		return nil, fmt.Errorf("%s since %s: %w", what, day, err)
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// Export bookkeeping, implements sheets.RecordSource.

func (r *SQLiteRepository) RowsAfter(ctx context.Context, kind core.RecordKind, afterID int64, limit int) ([]sheets.Row, error) {
	if limit <= 0 {
		limit = -1
	}

	var query string
	switch kind {
	case core.KindExpense:
		query = `SELECT id, title, amount, category, created_at FROM expenses WHERE id > ? ORDER BY id LIMIT ?`
	case core.KindBudget:
		query = `SELECT id, monthly_budget, created_at FROM budgets WHERE id > ? ORDER BY id LIMIT ?`
	case core.KindMental:
		query = `SELECT id, mood_rating, meditation_minutes, sleep_hours, notes, entry_date
			FROM mental_wellness WHERE id > ? ORDER BY id LIMIT ?`
	case core.KindIntellectual:
		query = `SELECT id, learning_goal, reading_time, current_book, progress_percentage, entry_date
			FROM intellectual_wellness WHERE id > ? ORDER BY id LIMIT ?`
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}

	rows, err := r.db.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query %s rows after %d: %w", kind, afterID, err)
	}
	defer rows.Close()

	var out []sheets.Row
	for rows.Next() {
		var row sheets.Row
		switch kind {
		case core.KindExpense:
			e, err := scanExpense(rows)
			if err != nil {
				return nil, err
			}
			row = sheets.ExpenseRow(e)
		case core.KindBudget:
			b, err := scanBudget(rows)
			if err != nil {
				return nil, err
			}
			row = sheets.BudgetRow(b)
		case core.KindMental:
			e, err := scanMental(rows)
			if err != nil {
				return nil, err
			}
			row = sheets.MentalRow(e)
		case core.KindIntellectual:
			e, err := scanIntellectual(rows)
			if err != nil {
				return nil, err
			}
			row = sheets.IntellectualRow(e)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ExportCursor(ctx context.Context, kind core.RecordKind) (int64, error) {
	var last int64
	err := r.db.QueryRowContext(ctx,
		`SELECT last_id FROM export_cursors WHERE record_kind = ?`, string(kind),
	).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read export cursor for %s: %w", kind, err)
	}
	return last, nil
}

// SetExportCursor only ever moves the cursor forward.
func (r *SQLiteRepository) SetExportCursor(ctx context.Context, kind core.RecordKind, lastID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO export_cursors (record_kind, last_id) VALUES (?, ?)
		 ON CONFLICT (record_kind) DO UPDATE SET last_id = MAX(last_id, excluded.last_id)`,
		string(kind), lastID)
	if err != nil {
		return fmt.Errorf("advance export cursor for %s: %w", kind, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var e core.Expense
	var created string
	if err := s.Scan(&e.ID, &e.Title, &e.Amount, &e.Category, &created); err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	var err error
	e.CreatedAt, err = parseTimestamp(created)
	return e, err
}

func scanBudget(s scanner) (core.Budget, error) {
	var b core.Budget
	var created string
	if err := s.Scan(&b.ID, &b.MonthlyBudget, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Budget{}, err
		}
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	var err error
	b.CreatedAt, err = parseTimestamp(created)
	return b, err
}

func scanMental(s scanner) (core.MentalEntry, error) {
	var (
		e          core.MentalEntry
		mood       sql.Null[int64]
		meditation sql.Null[int64]
		sleep      sql.Null[float64]
		notes      sql.Null[string]
		created    string
	)
	if err := s.Scan(&e.ID, &mood, &meditation, &sleep, &notes, &created); err != nil {
		return core.MentalEntry{}, fmt.Errorf("scan mental wellness entry: %w", err)
	}
	e.MoodRating = fromNull(mood)
	e.MeditationMinutes = fromNull(meditation)
	e.SleepHours = fromNull(sleep)
	e.Notes = fromNull(notes)
	var err error
	e.EntryDate, err = parseTimestamp(created)
	return e, err
}

func scanIntellectual(s scanner) (core.IntellectualEntry, error) {
	var (
		e       core.IntellectualEntry
		goal    sql.Null[string]
		reading sql.Null[int64]
		book    sql.Null[string]
		created string
	)
	if err := s.Scan(&e.ID, &goal, &reading, &book, &e.ProgressPercentage, &created); err != nil {
		return core.IntellectualEntry{}, fmt.Errorf("scan intellectual wellness entry: %w", err)
	}
	e.LearningGoal = fromNull(goal)
	e.ReadingTime = fromNull(reading)
	e.CurrentBook = fromNull(book)
	var err error
	e.EntryDate, err = parseTimestamp(created)
	return e, err
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// nullable turns a nil pointer into SQL NULL.
func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull[T any](n sql.Null[T]) *T {
	if !n.Valid {
		return nil
	}
	v := n.V
	return &v
}
