// Package core holds the wellness domain types and the dashboard scoring.
//
// Each sub-score is a cheap proxy for one wellness dimension, expressed on a
// 0-100 scale. When there is not enough recent data a fixed fallback is used.
package core

import "math"

const (
	// DaysPerMonth converts a monthly budget into a daily one.
	DaysPerMonth = 30

	FallbackDailyBudget       = 100.0
	FallbackMentalScore       = 75.0
	FallbackIntellectualScore = 70.0

	// MoodScale maps a 1-5 mood rating onto 0-100.
	MoodScale = 20.0

	// RecentWindowDays is how many days before today count as "recent".
	RecentWindowDays = 7
)

// DashboardInputs are the four store reads the dashboard needs.
type DashboardInputs struct {
	Budget        Budget
	TodayExpenses float64
	// AvgMood and AvgProgress are nil when no recent entry has a value.
	AvgMood     *float64
	AvgProgress *float64
}

// DashboardStats is the rounded, displayable result.
type DashboardStats struct {
	Financial    int `json:"financial"`
	Mental       int `json:"mental"`
	Intellectual int `json:"intellectual"`
	Overall      int `json:"overall"`
}

// FinancialScore compares today's spend with the daily share of the budget.
func FinancialScore(b Budget, todayExpenses float64) float64 {
	daily := FallbackDailyBudget
	if b.Configured() {
		daily = b.MonthlyBudget / DaysPerMonth
	}
	if daily <= 0 {
		if todayExpenses > 0 {
			return 0
		}
		return 100
	}
	return clamp(100 - todayExpenses/daily*100)
}

// MentalScore scales the recent average mood. A zero average counts as no data.
func MentalScore(avgMood *float64) float64 {
	if avgMood == nil || *avgMood == 0 {
		return FallbackMentalScore
	}
	return clamp(*avgMood * MoodScale)
}

// IntellectualScore is the recent average reading progress.
func IntellectualScore(avgProgress *float64) float64 {
	if avgProgress == nil || *avgProgress == 0 {
		return FallbackIntellectualScore
	}
	return clamp(*avgProgress)
}

// ComputeDashboard rounds each sub-score for display, while the overall
// score is the mean of the unrounded sub-scores rounded once.
func ComputeDashboard(in DashboardInputs) DashboardStats {
	f := FinancialScore(in.Budget, in.TodayExpenses)
	m := MentalScore(in.AvgMood)
	i := IntellectualScore(in.AvgProgress)
	return DashboardStats{
		Financial:    roundHalfUp(f),
		Mental:       roundHalfUp(m),
		Intellectual: roundHalfUp(i),
		Overall:      roundHalfUp((f + m + i) / 3),
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
