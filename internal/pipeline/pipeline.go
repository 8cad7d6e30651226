// Package pipeline chains extraction, categorization, persistence and
// duplicate detection for one statement file at a time.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"fjacquet/ledger-ingest/internal/categorizer"
	"fjacquet/ledger-ingest/internal/dateutils"
	"fjacquet/ledger-ingest/internal/duplicates"
	"fjacquet/ledger-ingest/internal/extractor"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pdfextractor"
	"fjacquet/ledger-ingest/internal/pipelineerror"
	"fjacquet/ledger-ingest/internal/store"
)

// FileExtractor turns a statement file into text. *factory.Dispatcher
// implements it.
type FileExtractor interface {
	Dispatch(ctx context.Context, filePath, password string) models.ExtractionResult
	IsPasswordProtected(ctx context.Context, filePath string) (bool, error)
}

// Service runs the pipeline stages. It holds no per-file state and may be
// shared between goroutines.
type Service struct {
	extractor   FileExtractor
	categorizer categorizer.Client
	store       store.TransactionStore
	finder      *duplicates.Finder
	logger      logging.Logger
	now         func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now for commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDuplicateOptions tunes the duplicate finder.
func WithDuplicateOptions(opts duplicates.Options) Option {
	return func(s *Service) {
		if s.store != nil {
			s.finder = duplicates.NewFinder(s.store, opts, s.logger)
		}
	}
}

// NewService wires the stages. txStore may be nil for extract-only use;
// Commit and FindDuplicates then fail.
func NewService(ext FileExtractor, client categorizer.Client, txStore store.TransactionStore, logger logging.Logger, opts ...Option) *Service {
	s := &Service{
		extractor:   ext,
		categorizer: client,
		store:       txStore,
		logger:      logging.OrDefault(logger),
		now:         time.Now,
	}
	if txStore != nil {
		s.finder = duplicates.NewFinder(txStore, duplicates.Options{}, s.logger)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract converts filePath to text.
func (s *Service) Extract(ctx context.Context, filePath, password string) models.ExtractionResult {
	return s.extractor.Dispatch(ctx, filePath, password)
}

// ProbePassword reports whether filePath is a password-protected PDF.
func (s *Service) ProbePassword(ctx context.Context, filePath string) (bool, error) {
	return s.extractor.IsPasswordProtected(ctx, filePath)
}

// Categorize sends a successful extraction to the categorization client.
// selectedPages are 1-based; empty means all text.
func (s *Service) Categorize(ctx context.Context, extraction models.ExtractionResult, selectedPages []int) categorizer.Result {
	if !extraction.OK() {
		return categorizer.Failure(extraction.Err, extraction.Message)
	}
	if s.categorizer == nil {
		return categorizer.Failure(pipelineerror.CodeMissingCredentials, "")
	}

	pages := extraction.Pages
	if len(selectedPages) > 0 && len(pages) == 0 {
		pages = pdfextractor.SplitPages(extraction.Data)
	}

	start := time.Now()
	res := s.categorizer.Categorize(ctx, categorizer.Request{
		Text:          extraction.Data,
		Pages:         pages,
		SelectedPages: selectedPages,
	})

	logger := s.logger.WithFields(
		logging.Field{Key: logging.FieldStage, Value: "categorize"},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})
	if !res.Success {
		logger.Warn("Categorization failed", logging.Field{Key: logging.FieldErrorCode, Value: string(res.Error)})
		return res
	}
	logger.Info("Categorized transactions",
		logging.Field{Key: logging.FieldCount, Value: len(res.Transactions)},
		logging.Field{Key: logging.FieldTokens, Value: res.TotalTokens})
	return res
}

// ParseDate normalizes a DD/MM/YYYY date, falling back to the epoch sentinel.
func (s *Service) ParseDate(value string) time.Time {
	return dateutils.ParseDate(value)
}

// ProcessRequest describes one file to run through extract and categorize.
type ProcessRequest struct {
	FilePath      string
	Password      string
	SelectedPages []int
	AccountType   models.AccountType
}

// ProcessOutcome is what Process reached. Exactly one of RequiresPassword,
// RequiresPageSelection or a categorization result applies. On failure Error
// holds the code, and RawResponse the unparsed model answer when there was one.
type ProcessOutcome struct {
	FilePath              string                        `json:"file"`
	Kind                  extractor.Kind                `json:"type"`
	AccountType           models.AccountType            `json:"accountType"`
	RequiresPassword      bool                          `json:"requiresPassword,omitempty"`
	RequiresPageSelection bool                          `json:"requiresPageSelection,omitempty"`
	Pages                 []string                      `json:"pages,omitempty"`
	TotalPages            int                           `json:"totalPages,omitempty"`
	Transactions          []models.CandidateTransaction `json:"transactions,omitempty"`
	TotalTransactions     int                           `json:"totalTransactions"`
	TokensUsed            int                           `json:"tokensUsed"`
	Message               string                        `json:"message"`
	Error                 pipelineerror.Code            `json:"error,omitempty"`
	RawResponse           string                        `json:"rawResponse,omitempty"`
}

// Messages reported by Process.
const (
	MessagePasswordRequired = "This PDF is password protected. Please provide the password."
	MessageSelectPages      = "Please select which pages to process"
	MessageProcessed        = "File processed successfully. Please review the transactions."
	MessageNoData           = "Could not extract any data from the file"
)

// Process extracts and categorizes one file. A protected PDF without a
// password and a multi-page PDF without a page selection stop early with a
// nil error. Extraction and categorization failures return the outcome so
// far plus a typed error.
func (s *Service) Process(ctx context.Context, req ProcessRequest) (ProcessOutcome, error) {
	kind := extractor.KindOf(req.FilePath)
	accountType := req.AccountType
	if accountType == "" {
		accountType = models.AccountTypeBank
	}
	out := ProcessOutcome{FilePath: req.FilePath, Kind: kind, AccountType: accountType}
	logger := s.logger.WithField(logging.FieldFile, req.FilePath)

	extraction := s.Extract(ctx, req.FilePath, req.Password)
	if !extraction.OK() {
		if extraction.RequiresPassword && req.Password == "" {
			logger.Info("Statement requires a password")
			out.RequiresPassword = true
			out.Message = MessagePasswordRequired
			return out, nil
		}
		out.RequiresPassword = extraction.RequiresPassword
		out.Message = extraction.Message
		out.Error = extraction.Err
		return out, &pipelineerror.ExtractionError{
			Code:     extraction.Err,
			FilePath: req.FilePath,
			Err:      errors.New(extraction.Message),
		}
	}
	if strings.TrimSpace(extraction.Data) == "" {
		out.Message = MessageNoData
		out.Error = pipelineerror.CodeProcessingFailed
		return out, &pipelineerror.ExtractionError{
			Code:     pipelineerror.CodeProcessingFailed,
			FilePath: req.FilePath,
			Err:      errors.New(MessageNoData),
		}
	}

	if kind == extractor.KindPDF && len(req.SelectedPages) == 0 {
		pages := extraction.Pages
		if len(pages) == 0 {
			pages = pdfextractor.SplitPages(extraction.Data)
		}
		if len(pages) > 1 {
			logger.Info("Statement needs page selection", logging.Field{Key: logging.FieldPages, Value: len(pages)})
			out.RequiresPageSelection = true
			out.Pages = pages
			out.TotalPages = len(pages)
			out.Message = MessageSelectPages
			return out, nil
		}
	}

	res := s.Categorize(ctx, extraction, req.SelectedPages)
	out.TokensUsed = res.TotalTokens
	if !res.Success {
		out.Message = res.Message
		out.Error = res.Error
		out.RawResponse = res.RawResponse
		return out, res.Err()
	}

	out.Transactions = res.Transactions
	out.TotalTransactions = len(res.Transactions)
	out.Message = MessageProcessed
	return out, nil
}

// AllPages selects pages 1 through n.
func AllPages(n int) []int {
	pages := make([]int, n)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// FindDuplicates scans the user's stored transactions for duplicates.
func (s *Service) FindDuplicates(ctx context.Context, userID string) (duplicates.Report, error) {
	if s.finder == nil {
		return duplicates.Report{}, errNoStore
	}
	return s.finder.Find(ctx, userID)
}
