package core

import "time"

// RecordKind names one of the four record tables.
type RecordKind string

const (
	KindExpense      RecordKind = "expense"
	KindBudget       RecordKind = "budget"
	KindMental       RecordKind = "mental"
	KindIntellectual RecordKind = "intellectual"
)

// RecordKinds lists every kind in export order.
func RecordKinds() []RecordKind {
	return []RecordKind{KindExpense, KindBudget, KindMental, KindIntellectual}
}

// IsValid returns true if the kind names a known table.
func (k RecordKind) IsValid() bool {
	switch k {
	case KindExpense, KindBudget, KindMental, KindIntellectual:
		return true
	default:
		return false
	}
}

func (k RecordKind) String() string {
	return string(k)
}

type (
	Expense struct {
		ID        int64     `json:"id"`
		Title     string    `json:"title"`
		Amount    float64   `json:"amount"`
		Category  string    `json:"category"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Budget is one entry of the append-only budget log.
	// The zero value is the "no budget configured" sentinel.
	Budget struct {
		ID            int64     `json:"id"`
		MonthlyBudget float64   `json:"monthly_budget"`
		CreatedAt     time.Time `json:"created_at"`
	}

	// MentalEntry fields are nullable and stored exactly as received.
	MentalEntry struct {
		ID                int64     `json:"id"`
		MoodRating        *int64    `json:"mood_rating"`
		MeditationMinutes *int64    `json:"meditation_minutes"`
		SleepHours        *float64  `json:"sleep_hours"`
		Notes             *string   `json:"notes"`
		EntryDate         time.Time `json:"entry_date"`
	}

	IntellectualEntry struct {
		ID                 int64     `json:"id"`
		LearningGoal       *string   `json:"learning_goal"`
		ReadingTime        *int64    `json:"reading_time"`
		CurrentBook        *string   `json:"current_book"`
		ProgressPercentage int64     `json:"progress_percentage"`
		EntryDate          time.Time `json:"entry_date"`
	}
)

// Configured reports whether b is a stored budget rather than the sentinel.
func (b Budget) Configured() bool {
	return b.ID != 0
}

// NewExpense validates the create input. Validation is truthy: an empty
// title or category and a zero amount all count as missing.
func NewExpense(title string, amount *float64, category string) (Expense, error) {
	if title == "" {
		return Expense{}, missingField("title")
	}
	if amount == nil || *amount == 0 {
		return Expense{}, missingField("amount")
	}
	if category == "" {
		return Expense{}, missingField("category")
	}
	if *amount < 0 {
		return Expense{}, &ValidationError{Field: "amount", Message: "Amount must be positive"}
	}
	return Expense{Title: title, Amount: *amount, Category: category}, nil
}

// NewBudget validates a monthly budget figure.
func NewBudget(monthly *float64) (Budget, error) {
	if monthly == nil || *monthly == 0 {
		return Budget{}, &ValidationError{Field: "monthly_budget", Message: "Monthly budget is required"}
	}
	if *monthly < 0 {
		return Budget{}, &ValidationError{Field: "monthly_budget", Message: "Monthly budget must be positive"}
	}
	return Budget{MonthlyBudget: *monthly}, nil
}

// NewIntellectualEntry applies the progress default; nothing else is checked.
func NewIntellectualEntry(goal *string, readingTime *int64, book *string, progress *int64) IntellectualEntry {
	e := IntellectualEntry{
		LearningGoal: goal,
		ReadingTime:  readingTime,
		CurrentBook:  book,
	}
	if progress != nil {
		e.ProgressPercentage = *progress
	}
	return e
}

func missingField(field string) error {
	return &ValidationError{Field: field, Message: "Missing required fields"}
}

// DayLayout is the calendar-date format the store compares against.
const DayLayout = "2006-01-02"

// DayKey returns the UTC calendar date of t.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// RecentSince returns the first calendar date of the recent window ending at now.
func RecentSince(now time.Time) string {
	return DayKey(now.UTC().AddDate(0, 0, -RecentWindowDays))
}
