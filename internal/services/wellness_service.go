package services

import (
	"context"
	"log/slog"

	"wellness/internal/core"
)

// MentalWellnessService stores mood, meditation and sleep check-ins.
// Input is not validated: every field may be null.
type MentalWellnessService struct {
	repo      MentalRepository
	publisher Publisher
}

func NewMentalWellnessService(repo MentalRepository, publisher Publisher) *MentalWellnessService {
	return &MentalWellnessService{repo: repo, publisher: publisher}
}

func (s *MentalWellnessService) RecordEntry(ctx context.Context, mood, meditation *int64, sleep *float64, notes *string) (core.MentalEntry, error) {
	created, err := s.repo.CreateMentalEntry(ctx, core.MentalEntry{
		MoodRating:        mood,
		MeditationMinutes: meditation,
		SleepHours:        sleep,
		Notes:             notes,
	})
	if err != nil {
		return core.MentalEntry{}, core.WrapStore("create mental wellness entry", err)
	}

	slog.InfoContext(ctx, "Mental wellness entry recorded", "id", created.ID)

	publishCreated(ctx, s.publisher, core.KindMental, created.ID)
	return created, nil
}

func (s *MentalWellnessService) ListEntries(ctx context.Context) ([]core.MentalEntry, error) {
	items, err := s.repo.ListMentalEntries(ctx)
	if err != nil {
		return nil, core.WrapStore("list mental wellness entries", err)
	}
	if items == nil {
		items = []core.MentalEntry{}
	}
	return items, nil
}

// IntellectualWellnessService stores reading and learning progress.
type IntellectualWellnessService struct {
	repo      IntellectualRepository
	publisher Publisher
}

func NewIntellectualWellnessService(repo IntellectualRepository, publisher Publisher) *IntellectualWellnessService {
	return &IntellectualWellnessService{repo: repo, publisher: publisher}
}

// RecordEntry stores an entry; a missing progress is stored as 0.
func (s *IntellectualWellnessService) RecordEntry(ctx context.Context, goal *string, readingTime *int64, book *string, progress *int64) (core.IntellectualEntry, error) {
	created, err := s.repo.CreateIntellectualEntry(ctx, core.NewIntellectualEntry(goal, readingTime, book, progress))
	if err != nil {
		return core.IntellectualEntry{}, core.WrapStore("create intellectual wellness entry", err)
	}

	slog.InfoContext(ctx, "Intellectual wellness entry recorded",
		"id", created.ID,
		"progress_percentage", created.ProgressPercentage)

	publishCreated(ctx, s.publisher, core.KindIntellectual, created.ID)
	return created, nil
}

func (s *IntellectualWellnessService) ListEntries(ctx context.Context) ([]core.IntellectualEntry, error) {
	items, err := s.repo.ListIntellectualEntries(ctx)
	if err != nil {
		return nil, core.WrapStore("list intellectual wellness entries", err)
	}
	if items == nil {
		items = []core.IntellectualEntry{}
	}
	return items, nil
}
