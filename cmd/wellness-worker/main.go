package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"wellness/internal/amqp"
	"wellness/internal/cli"
	"wellness/internal/config"
	"wellness/internal/log"
	"wellness/internal/sheets"
	gsheet "wellness/internal/sheets/google"
	sheetsmem "wellness/internal/sheets/memory"
	"wellness/internal/storage"
	"wellness/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	logger.Info("Starting wellness-worker")

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	sink, err := newSink(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}

	var consumer *amqp.Client
	if cfg.AMQPEnabled() {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer consumer.Close()
	} else {
		logger.Info("AMQP disabled, relying on periodic backfill", "interval", cfg.ExportInterval)
	}

	exporter := worker.NewExportWorker(repo, sink, cfg.ExportBatchSize)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		exporter.RunBackfill(gctx, cfg.ExportInterval)
		return nil
	})
	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeRecordCreated(gctx, exporter.HandleRecordCreated)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	<-done
	logger.Info("Worker shutdown complete")
}

// newSink returns the Google Sheets exporter, or an in-process sheet when no
// spreadsheet is configured.
func newSink(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.RowAppender, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, exported rows are kept in memory only")
		return sheetsmem.New(cfg.GoogleSheetPrefix), nil
	}

	creds, err := gsheet.CredentialsFromEnv()
	if err != nil {
		return nil, err
	}
	client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetPrefix, creds)
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
