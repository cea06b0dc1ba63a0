package backend

import (
	"context"

	"wellness/internal/services"
	"wellness/internal/sheets"
)

// Store is everything the application needs from a data backend.
type Store interface {
	services.ExpenseRepository
	services.BudgetRepository
	services.MentalRepository
	services.IntellectualRepository
	sheets.RecordSource

	Ping(ctx context.Context) error
	Close() error
}

type CleanupFunc func() error

// BackendResult holds the store, the optional record publisher and a
// cleanup releasing both. Publisher is nil when AMQP is disabled.
type BackendResult struct {
	Store     Store
	Publisher services.Publisher
	Cleanup   CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// AMQP is optional and only wired for the sqlite backend
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
