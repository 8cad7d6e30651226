package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
)

// PostgresStore keeps transactions in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPostgresStore connects to dsn and runs the migrations.
func NewPostgresStore(ctx context.Context, dsn string, logger logging.Logger) (*PostgresStore, error) {
	if dsn == "" {
		return nil, storeErr("open", DriverPostgres, fmt.Errorf("connection string is empty"))
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, storeErr("open", DriverPostgres, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storeErr("ping", DriverPostgres, err)
	}

	migrateDB, err := sql.Open("pgx", dsn)
	if err != nil {
		pool.Close()
		return nil, storeErr("migrate", DriverPostgres, err)
	}
	if err := runMigrations(migrateDB, DriverPostgres); err != nil {
		pool.Close()
		return nil, storeErr("migrate", DriverPostgres, err)
	}

	return &PostgresStore{pool: pool, logger: logging.OrDefault(logger)}, nil
}

// InsertBatch writes all transactions in one database transaction and
// returns them with the generated ids.
func (s *PostgresStore) InsertBatch(ctx context.Context, txs []models.PersistedTransaction) ([]models.PersistedTransaction, error) {
	if len(txs) == 0 {
		return []models.PersistedTransaction{}, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, storeErr("begin", DriverPostgres, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, t := range txs {
		batch.Queue(`INSERT INTO transactions (`+transactionColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING id`,
			t.UserID,
			t.CalendarDate(),
			t.Time,
			t.User,
			t.Description,
			t.OriginalDescription,
			t.Amount.StringFixed(2),
			string(t.Type),
			t.Category,
			t.Bank,
			t.AccountID,
			string(t.AccountType),
			models.OptionalString(t.FileSource),
			t.CreatedAt,
			t.UpdatedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	saved := make([]models.PersistedTransaction, len(txs))
	for i, t := range txs {
		if err := results.QueryRow().Scan(&t.ID); err != nil {
			results.Close()
			return nil, storeErr("insert", DriverPostgres, err)
		}
		saved[i] = t
	}
	if err := results.Close(); err != nil {
		return nil, storeErr("insert", DriverPostgres, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit", DriverPostgres, err)
	}
	s.logger.Debug("Inserted transaction batch",
		logging.Field{Key: logging.FieldStoreDriver, Value: DriverPostgres},
		logging.Field{Key: logging.FieldCount, Value: len(saved)})
	return saved, nil
}

// ListByUser returns the user's transactions ordered by id.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]models.PersistedTransaction, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, user_id, date, time, account_holder, description,
		original_description, amount::text, type, category, bank, account_id, account_type,
		COALESCE(file_source, ''), created_at, updated_at
		FROM transactions WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, storeErr("list", DriverPostgres, err)
	}
	defer rows.Close()

	var out []models.PersistedTransaction
	for rows.Next() {
		var (
			t               models.PersistedTransaction
			amount          string
			txType, account string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Date, &t.Time, &t.User, &t.Description, &t.OriginalDescription,
			&amount, &txType, &t.Category, &t.Bank, &t.AccountID, &account, &t.FileSource,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, storeErr("scan", DriverPostgres, err)
		}
		if t.Amount, err = models.AmountFromString(amount); err != nil {
			return nil, storeErr("scan", DriverPostgres, fmt.Errorf("transaction %d amount: %w", t.ID, err))
		}
		t.Type = models.TransactionType(txType)
		t.AccountType = models.AccountType(account)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list", DriverPostgres, err)
	}
	return out, nil
}

// RecordUpload inserts the upload row.
func (s *PostgresStore) RecordUpload(ctx context.Context, u models.Upload) error {
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return storeErr("record upload", DriverPostgres, fmt.Errorf("invalid upload id: %w", err))
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO uploads
		(id, filename, file_type, file_size, user_id, uploaded_at, processed, transactions_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, u.Filename, u.FileType, u.FileSize, u.UserID, u.UploadedAt, u.Processed, u.TransactionsCount)
	if err != nil {
		return storeErr("record upload", DriverPostgres, err)
	}
	return nil
}

// MarkUploadProcessed sets the processed flag and transaction count.
func (s *PostgresStore) MarkUploadProcessed(ctx context.Context, uploadID string, count int) error {
	id, err := uuid.Parse(uploadID)
	if err != nil {
		return storeErr("mark upload", DriverPostgres, fmt.Errorf("invalid upload id: %w", err))
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE uploads SET processed = TRUE, transactions_count = $1 WHERE id = $2`, count, id)
	if err != nil {
		return storeErr("mark upload", DriverPostgres, err)
	}
	if tag.RowsAffected() == 0 {
		return storeErr("mark upload", DriverPostgres, fmt.Errorf("upload %s not found", uploadID))
	}
	return nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
