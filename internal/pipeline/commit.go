package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"fjacquet/ledger-ingest/internal/dateutils"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
)

var errNoStore = errors.New("no transaction store configured")

// CommitRequest carries reviewed transactions to persist for one user.
type CommitRequest struct {
	UserID      string
	AccountType models.AccountType
	// UploadID, when set, tags every transaction with its file source and
	// marks the upload processed.
	UploadID     string
	Transactions []models.CandidateTransaction
}

// CommitResult reports what was written.
type CommitResult struct {
	Saved            []models.PersistedTransaction `json:"-"`
	TransactionCount int                           `json:"transactionCount"`
	SentinelDates    int                           `json:"sentinelDates"`
	Message          string                        `json:"message"`
}

// RegisterUpload records filePath as a new upload of userID and returns it
// with a fresh id.
func (s *Service) RegisterUpload(ctx context.Context, userID, filePath string) (models.Upload, error) {
	if s.store == nil {
		return models.Upload{}, errNoStore
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return models.Upload{}, fmt.Errorf("failed to stat upload: %w", err)
	}
	upload := models.NewUpload(userID, filePath, info.Size(), s.now())
	if err := s.store.RecordUpload(ctx, upload); err != nil {
		return models.Upload{}, err
	}
	s.logger.Debug("Registered upload",
		logging.Field{Key: logging.FieldUploadID, Value: upload.ID},
		logging.Field{Key: logging.FieldFile, Value: filePath})
	return upload, nil
}

// Commit normalizes dates, applies the commit defaults and inserts the
// batch. Unparseable dates are stored as the epoch sentinel and logged.
func (s *Service) Commit(ctx context.Context, req CommitRequest) (CommitResult, error) {
	if s.store == nil {
		return CommitResult{}, errNoStore
	}
	accountType := req.AccountType
	if accountType == "" {
		accountType = models.AccountTypeBank
	}

	logger := s.logger.WithField(logging.FieldUserID, req.UserID)
	now := s.now().UTC()
	records := make([]models.PersistedTransaction, 0, len(req.Transactions))
	sentinels := 0
	for i, c := range req.Transactions {
		date := dateutils.ParseDate(c.Date)
		if dateutils.IsSentinel(date) {
			sentinels++
			logger.Warn("Transaction date stored as epoch sentinel",
				logging.Field{Key: logging.FieldDate, Value: c.Date})
		}

		record, err := models.NewPersistedTransactionBuilder().
			FromCandidate(c).
			WithUser(req.UserID).
			WithDate(date).
			WithAccountType(accountType).
			WithUpload(req.UploadID).
			WithTimestamps(now).
			Build()
		if err != nil {
			return CommitResult{}, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		records = append(records, record)
	}

	saved, err := s.store.InsertBatch(ctx, records)
	if err != nil {
		return CommitResult{}, fmt.Errorf("failed to save transactions: %w", err)
	}

	if req.UploadID != "" {
		if err := s.store.MarkUploadProcessed(ctx, req.UploadID, len(saved)); err != nil {
			logger.WithError(err).Warn("Failed to mark upload processed",
				logging.Field{Key: logging.FieldUploadID, Value: req.UploadID})
		}
	}

	logger.Info("Saved transactions", logging.Field{Key: logging.FieldCount, Value: len(saved)})
	return CommitResult{
		Saved:            saved,
		TransactionCount: len(saved),
		SentinelDates:    sentinels,
		Message:          fmt.Sprintf("Successfully saved %d transactions to database", len(saved)),
	}, nil
}
