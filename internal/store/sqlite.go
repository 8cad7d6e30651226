package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fjacquet/ledger-ingest/internal/dateutils"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipelineerror"

	_ "modernc.org/sqlite"
)

const (
	sqliteDateLayout = "2006-01-02"
	sqliteTimeLayout = time.RFC3339Nano
)

const transactionColumns = `user_id, date, time, account_holder, description, original_description,
	amount, type, category, bank, account_id, account_type, file_source, created_at, updated_at`

// SQLiteStore keeps transactions in a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path and runs
// the migrations.
func NewSQLiteStore(ctx context.Context, path string, logger logging.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, storeErr("open", DriverSQLite, fmt.Errorf("database path is empty"))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, storeErr("open", DriverSQLite, fmt.Errorf("create db directory: %w", err))
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storeErr("open", DriverSQLite, err)
	}
	// A single writer avoids SQLITE_BUSY between batch goroutines.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, storeErr("ping", DriverSQLite, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, storeErr("configure", DriverSQLite, err)
	}

	migrateDB, err := sql.Open("sqlite", path)
	if err != nil {
		db.Close()
		return nil, storeErr("migrate", DriverSQLite, err)
	}
	if err := runMigrations(migrateDB, DriverSQLite); err != nil {
		db.Close()
		return nil, storeErr("migrate", DriverSQLite, err)
	}

	return &SQLiteStore{db: db, logger: logging.OrDefault(logger)}, nil
}

// InsertBatch writes all transactions in one database transaction.
func (s *SQLiteStore) InsertBatch(ctx context.Context, txs []models.PersistedTransaction) ([]models.PersistedTransaction, error) {
	if len(txs) == 0 {
		return []models.PersistedTransaction{}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("begin", DriverSQLite, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, storeErr("prepare insert", DriverSQLite, err)
	}
	defer stmt.Close()

	saved := make([]models.PersistedTransaction, len(txs))
	for i, t := range txs {
		if y := t.CalendarDate().Year(); y < dateutils.MinYear || y > dateutils.MaxYear {
			return nil, storeErr("insert", DriverSQLite, fmt.Errorf("transaction %d date: year %d out of range", i+1, y))
		}
		res, err := stmt.ExecContext(ctx,
			t.UserID,
			t.CalendarDate().Format(sqliteDateLayout),
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
			t.CreatedAt.UTC().Format(sqliteTimeLayout),
			t.UpdatedAt.UTC().Format(sqliteTimeLayout),
		)
		if err != nil {
			return nil, storeErr("insert", DriverSQLite, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, storeErr("insert", DriverSQLite, err)
		}
		t.ID = id
		saved[i] = t
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit", DriverSQLite, err)
	}
	s.logger.Debug("Inserted transaction batch",
		logging.Field{Key: logging.FieldStoreDriver, Value: DriverSQLite},
		logging.Field{Key: logging.FieldCount, Value: len(saved)})
	return saved, nil
}

// ListByUser returns the user's transactions ordered by id.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]models.PersistedTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, `+transactionColumns+`
		FROM transactions WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, storeErr("list", DriverSQLite, err)
	}
	defer rows.Close()

	var out []models.PersistedTransaction
	for rows.Next() {
		var (
			t                models.PersistedTransaction
			date, amount     string
			txType, account  string
			fileSource       sql.NullString
			created, updated string
			tm, holder       sql.NullString
			bank, accountID  sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.UserID, &date, &tm, &holder, &t.Description, &t.OriginalDescription,
			&amount, &txType, &t.Category, &bank, &accountID, &account, &fileSource, &created, &updated); err != nil {
			return nil, storeErr("scan", DriverSQLite, err)
		}

		if t.Date, err = time.Parse(sqliteDateLayout, date); err != nil {
			return nil, storeErr("scan", DriverSQLite, fmt.Errorf("transaction %d date: %w", t.ID, err))
		}
		if t.Amount, err = models.AmountFromString(amount); err != nil {
			return nil, storeErr("scan", DriverSQLite, fmt.Errorf("transaction %d amount: %w", t.ID, err))
		}
		if t.CreatedAt, err = time.Parse(sqliteTimeLayout, created); err != nil {
			return nil, storeErr("scan", DriverSQLite, fmt.Errorf("transaction %d created_at: %w", t.ID, err))
		}
		if t.UpdatedAt, err = time.Parse(sqliteTimeLayout, updated); err != nil {
			return nil, storeErr("scan", DriverSQLite, fmt.Errorf("transaction %d updated_at: %w", t.ID, err))
		}
		t.Type = models.TransactionType(txType)
		t.AccountType = models.AccountType(account)
		t.FileSource = fileSource.String
		t.Time = nullable(tm)
		t.User = nullable(holder)
		t.Bank = nullable(bank)
		t.AccountID = nullable(accountID)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list", DriverSQLite, err)
	}
	return out, nil
}

// RecordUpload inserts the upload row.
func (s *SQLiteStore) RecordUpload(ctx context.Context, u models.Upload) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO uploads
		(id, filename, file_type, file_size, user_id, uploaded_at, processed, transactions_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Filename, u.FileType, u.FileSize, u.UserID,
		u.UploadedAt.UTC().Format(sqliteTimeLayout), u.Processed, u.TransactionsCount)
	if err != nil {
		return storeErr("record upload", DriverSQLite, err)
	}
	return nil
}

// MarkUploadProcessed sets the processed flag and transaction count.
func (s *SQLiteStore) MarkUploadProcessed(ctx context.Context, uploadID string, count int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE uploads SET processed = 1, transactions_count = ? WHERE id = ?`, count, uploadID)
	if err != nil {
		return storeErr("mark upload", DriverSQLite, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storeErr("mark upload", DriverSQLite, fmt.Errorf("upload %s not found", uploadID))
	}
	return nil
}

// GetUpload loads one upload row.
func (s *SQLiteStore) GetUpload(ctx context.Context, uploadID string) (models.Upload, error) {
	var (
		u        models.Upload
		uploaded string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, filename, file_type, file_size, user_id, uploaded_at,
		processed, transactions_count FROM uploads WHERE id = ?`, uploadID).
		Scan(&u.ID, &u.Filename, &u.FileType, &u.FileSize, &u.UserID, &uploaded, &u.Processed, &u.TransactionsCount)
	if err != nil {
		return models.Upload{}, storeErr("get upload", DriverSQLite, err)
	}
	if u.UploadedAt, err = time.Parse(sqliteTimeLayout, uploaded); err != nil {
		return models.Upload{}, storeErr("get upload", DriverSQLite, err)
	}
	return u, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func storeErr(op, driver string, err error) error {
	return &pipelineerror.StoreError{Op: op, Driver: driver, Err: err}
}
