package services

import (
	"context"
	"log/slog"
	"sync"

	"wellness/internal/cache"
	"wellness/internal/core"
)

const latestBudgetKey = "budget:latest"

// BudgetService treats budgets as an append-only log. The current budget
// is a projection of the newest entry, kept warm in a cache.
//
// The projection only moves forward: a cached row is never replaced by one
// with a lower id, and a read-through fill is discarded when a write
// finished while the read was in flight.
type BudgetService struct {
	repo       BudgetRepository
	projection cache.Cache[core.Budget]
	publisher  Publisher

	mu         sync.Mutex
	generation uint64
}

// NewBudgetService accepts a nil projection, in which case every read hits the store.
func NewBudgetService(repo BudgetRepository, projection cache.Cache[core.Budget], publisher Publisher) *BudgetService {
	return &BudgetService{
		repo:       repo,
		projection: projection,
		publisher:  publisher,
	}
}

// SetMonthlyBudget appends a new budget figure.
func (s *BudgetService) SetMonthlyBudget(ctx context.Context, monthly *float64) (core.Budget, error) {
	b, err := core.NewBudget(monthly)
	if err != nil {
		return core.Budget{}, err
	}

	created, err := s.repo.CreateBudget(ctx, b)
	if err != nil {
		s.dropProjection()
		return core.Budget{}, core.WrapStore("create budget", err)
	}
	s.advanceProjection(created)

	slog.InfoContext(ctx, "Monthly budget set", "id", created.ID, "monthly_budget", created.MonthlyBudget)

	publishCreated(ctx, s.publisher, core.KindBudget, created.ID)
	return created, nil
}

// LatestBudget returns the newest budget or the unconfigured sentinel.
func (s *BudgetService) LatestBudget(ctx context.Context) (core.Budget, error) {
	if s.projection == nil {
		b, err := s.repo.LatestBudget(ctx)
		return b, core.WrapStore("latest budget", err)
	}

	s.mu.Lock()
	if b, ok := s.projection.Get(latestBudgetKey); ok {
		s.mu.Unlock()
		slog.DebugContext(ctx, "Budget projection cache hit", "id", b.ID)
		return b, nil
	}
	gen := s.generation
	s.mu.Unlock()

	b, err := s.repo.LatestBudget(ctx)
	if err != nil {
		return core.Budget{}, core.WrapStore("latest budget", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		slog.DebugContext(ctx, "Budget written during read, projection fill skipped", "id", b.ID)
		return b, nil
	}
	s.setIfNewerLocked(b)
	return b, nil
}

// advanceProjection records a freshly written row.
func (s *BudgetService) advanceProjection(b core.Budget) {
	if s.projection == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.setIfNewerLocked(b)
}

// dropProjection forgets the cached row after a failed write, whose
// outcome in the store is unknown.
func (s *BudgetService) dropProjection() {
	if s.projection == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.projection.Delete(latestBudgetKey)
}

func (s *BudgetService) setIfNewerLocked(b core.Budget) {
	if cur, ok := s.projection.Get(latestBudgetKey); ok && cur.ID > b.ID {
		return
	}
	s.projection.Set(latestBudgetKey, b)
}

// BudgetHistory returns the full budget log, newest first.
func (s *BudgetService) BudgetHistory(ctx context.Context) ([]core.Budget, error) {
	items, err := s.repo.ListBudgets(ctx)
	if err != nil {
		return nil, core.WrapStore("list budgets", err)
	}
	if items == nil {
		items = []core.Budget{}
	}
	return items, nil
}
