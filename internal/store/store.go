// Package store persists committed transactions and upload records and
// loads the optional category file.
package store

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// TransactionStore is the persistence contract used by the pipeline.
type TransactionStore interface {
	// InsertBatch writes txs atomically and returns them with ids assigned.
	InsertBatch(ctx context.Context, txs []models.PersistedTransaction) ([]models.PersistedTransaction, error)
	// ListByUser returns every transaction of a user ordered by id.
	ListByUser(ctx context.Context, userID string) ([]models.PersistedTransaction, error)
	RecordUpload(ctx context.Context, upload models.Upload) error
	// MarkUploadProcessed flags an upload as committed with its transaction count.
	MarkUploadProcessed(ctx context.Context, uploadID string, count int) error
	Close() error
}

// Config selects and locates the backing database.
type Config struct {
	Driver string
	DSN    string
}

// Open connects to the configured store and brings its schema up to date.
func Open(ctx context.Context, cfg Config, logger logging.Logger) (TransactionStore, error) {
	logger = logging.OrDefault(logger)
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	logger.Debug("Opening transaction store", logging.Field{Key: logging.FieldStoreDriver, Value: driver})

	switch driver {
	case DriverSQLite, "":
		return NewSQLiteStore(ctx, cfg.DSN, logger)
	case DriverPostgres:
		return NewPostgresStore(ctx, cfg.DSN, logger)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", cfg.Driver)
	}
}
