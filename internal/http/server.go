// Package http serves the JSON API under /api plus the liveness and
// readiness probes.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"wellness/internal/log"
	"wellness/internal/middleware/ratelimit"
	"wellness/internal/middleware/security"
	"wellness/internal/middleware/trace"
	"wellness/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the application services the handlers call.
type Services struct {
	Expenses     *services.ExpenseService
	Budgets      *services.BudgetService
	Mental       *services.MentalWellnessService
	Intellectual *services.IntellectualWellnessService
	Dashboard    *services.DashboardService
	Store        Pinger
}

type Options struct {
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server

	expenses     *services.ExpenseService
	budgets      *services.BudgetService
	mental       *services.MentalWellnessService
	intellectual *services.IntellectualWellnessService
	dashboard    *services.DashboardService
	store        Pinger

	rateLimiter *ratelimit.Limiter
	ipResolver  *security.IPResolver
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		expenses:     svc.Expenses,
		budgets:      svc.Budgets,
		mental:       svc.Mental,
		intellectual: svc.Intellectual,
		dashboard:    svc.Dashboard,
		store:        svc.Store,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		ipResolver: security.NewIPResolver(),
		started:    time.Now(),
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(logger, opts.CORSAllowedOrigins),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

func (s *Server) routes(logger *log.Logger, origins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(trace.NewMiddleware(logger.WithComponent(log.ComponentTrace), s.ipResolver.ClientIP).Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	if len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", trace.HeaderRequestID},
			ExposedHeaders:   []string{trace.HeaderRequestID},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		MethodNotAllowedError("method not allowed").Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(api chi.Router) {
		api.Use(s.limitWrites)

		api.Get("/expenses", s.handleListExpenses)
		api.Post("/expenses", s.handleCreateExpense)

		api.Get("/budget/latest", s.handleLatestBudget)
		api.Get("/budget/history", s.handleBudgetHistory)
		api.Post("/budget", s.handleCreateBudget)

		api.Get("/mental-wellness-entries", s.handleListMentalEntries)
		api.Post("/mental-wellness-entries", s.handleCreateMentalEntry)

		api.Get("/intellectual-wellness-entries", s.handleListIntellectualEntries)
		api.Post("/intellectual-wellness-entries", s.handleCreateIntellectualEntry)

		api.Get("/dashboard-stats", s.handleDashboardStats)
	})

	return r
}

// limitWrites applies the per-client rate limit to POST requests only.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.ipResolver.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.ipResolver.ClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.Method, http.MethodPost) {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
