package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"wellness/internal/backend"
	"wellness/internal/cache"
	"wellness/internal/cli"
	"wellness/internal/core"
	apphttp "wellness/internal/http"
	"wellness/internal/log"
	"wellness/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, nil)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	budgetProjection := cache.NewLRUCache[core.Budget](8, cfg.BudgetCacheTTL)
	caches := cache.NewManager()
	caches.Register("budget_projection", budgetProjection)

	budgets := services.NewBudgetService(res.Store, budgetProjection, res.Publisher)
	svc := apphttp.Services{
		Expenses:     services.NewExpenseService(res.Store, res.Publisher),
		Budgets:      budgets,
		Mental:       services.NewMentalWellnessService(res.Store, res.Publisher),
		Intellectual: services.NewIntellectualWellnessService(res.Store, res.Publisher),
		Dashboard:    services.NewDashboardService(budgets, res.Store, res.Store, res.Store),
		Store:        res.Store,
	}

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger.WithComponent(log.ComponentHTTP),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", log.FieldError, err)
		}
		caches.Stop()
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	})
	caches.Start(ctx, time.Minute)

	go func() {
		logger.Info("Starting server",
			"addr", srv.Addr,
			"backend", cfg.DataBackend,
			"amqp_enabled", res.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", log.FieldError, err, "addr", srv.Addr)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
