package http

import (
	"context"
	"net/http"
	"time"

	"wellness/internal/log"
)

const storeTimeout = 7 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady pings the store and reports 503 when it is unreachable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	switch {
	case s.store == nil:
		checks["store"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	default:
		if err := s.store.Ping(ctx); err != nil {
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			checks["store"] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients()}

	NewJSONResponse().Status(httpStatus).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

type expenseCreatedResponse struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	e, err := s.expenses.RecordExpense(ctx, sanitizeInput(req.Title), req.Amount, sanitizeInput(req.Category))
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}

	NewJSONResponse().Status(http.StatusCreated).Body(expenseCreatedResponse{
		ID:       e.ID,
		Title:    e.Title,
		Amount:   e.Amount,
		Category: e.Category,
	}).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	items, err := s.expenses.ListExpenses(ctx)
	if err != nil {
		writeServiceError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(items).Write(w)
}

type budgetCreatedResponse struct {
	ID            int64   `json:"id"`
	MonthlyBudget float64 `json:"monthly_budget"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	b, err := s.budgets.SetMonthlyBudget(ctx, req.MonthlyBudget)
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(budgetCreatedResponse{
		ID:            b.ID,
		MonthlyBudget: b.MonthlyBudget,
	}).Write(w)
}

// handleLatestBudget answers exactly {"monthly_budget":0} while no budget
// has been set.
func (s *Server) handleLatestBudget(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	b, err := s.budgets.LatestBudget(ctx)
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	if !b.Configured() {
		NewJSONResponse().Body(map[string]float64{"monthly_budget": 0}).Write(w)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleBudgetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	items, err := s.budgets.BudgetHistory(ctx)
	if err != nil {
		writeServiceError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(items).Write(w)
}

func (s *Server) handleCreateMentalEntry(w http.ResponseWriter, r *http.Request) {
	var req mentalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	e, err := s.mental.RecordEntry(ctx, req.MoodRating, req.MeditationMinutes, req.SleepHours, req.Notes)
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(e).Write(w)
}

func (s *Server) handleListMentalEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	items, err := s.mental.ListEntries(ctx)
	if err != nil {
		writeServiceError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(items).Write(w)
}

func (s *Server) handleCreateIntellectualEntry(w http.ResponseWriter, r *http.Request) {
	var req intellectualRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	e, err := s.intellectual.RecordEntry(ctx,
		req.LearningGoal, req.ReadingTime, req.CurrentBook, req.ProgressPercentage)
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(e).Write(w)
}

func (s *Server) handleListIntellectualEntries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	items, err := s.intellectual.ListEntries(ctx)
	if err != nil {
		writeServiceError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(items).Write(w)
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	stats, err := s.dashboard.Stats(ctx)
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(stats).Write(w)
}

