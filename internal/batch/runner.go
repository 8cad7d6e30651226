package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"fjacquet/ledger-ingest/internal/extractor"
	"fjacquet/ledger-ingest/internal/fileutils"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipeline"
	"fjacquet/ledger-ingest/internal/pipelineerror"
)

// DefaultConcurrency bounds the files processed at once.
const DefaultConcurrency = 4

// Processor runs one file through extraction and categorization.
// *pipeline.Service implements it.
type Processor interface {
	Process(ctx context.Context, req pipeline.ProcessRequest) (pipeline.ProcessOutcome, error)
}

// Options configure a Runner.
type Options struct {
	Concurrency int
	// Password is tried on every protected PDF.
	Password    string
	AccountType models.AccountType
	// AllPages categorizes every page of multi-page PDFs instead of
	// reporting them as needing a page selection.
	AllPages bool
}

// FileResult is the outcome for one file of the batch.
type FileResult struct {
	File     string                  `json:"file"`
	Outcome  pipeline.ProcessOutcome `json:"outcome"`
	Code     pipelineerror.Code      `json:"error,omitempty"`
	Err      error                   `json:"-"`
	Duration time.Duration           `json:"-"`
}

// Succeeded reports whether the file produced transactions.
func (r FileResult) Succeeded() bool {
	return r.Err == nil && !r.NeedsInput()
}

// NeedsInput reports whether the file stopped for a password or page selection.
func (r FileResult) NeedsInput() bool {
	return r.Outcome.RequiresPassword || r.Outcome.RequiresPageSelection
}

// Report summarizes a batch run. Results follow the sorted file order.
type Report struct {
	Results      []FileResult                  `json:"results"`
	Succeeded    int                           `json:"succeeded"`
	Failed       int                           `json:"failed"`
	NeedsInput   int                           `json:"needsInput"`
	Transactions []models.CandidateTransaction `json:"transactions"`
	DateRange    DateRange                     `json:"-"`
}

// Runner processes every supported statement in a directory.
type Runner struct {
	processor  Processor
	aggregator *Aggregator
	opts       Options
	logger     logging.Logger
}

// NewRunner creates a Runner. A non-positive concurrency uses DefaultConcurrency.
func NewRunner(processor Processor, opts Options, logger logging.Logger) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	logger = logging.OrDefault(logger)
	return &Runner{processor: processor, aggregator: NewAggregator(logger), opts: opts, logger: logger}
}

// Run processes the supported files directly inside dir. Each file runs
// sequentially in its own goroutine; a failing file does not stop the
// others. The returned error is only for an unreadable directory.
func (r *Runner) Run(ctx context.Context, dir string) (Report, error) {
	files, err := fileutils.ListFiles(dir, extractor.IsSupported)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list statements in %s: %w", dir, err)
	}
	r.logger.Info("Starting batch",
		logging.Field{Key: logging.FieldFile, Value: dir},
		logging.Field{Key: logging.FieldCount, Value: len(files)})

	results := make([]FileResult, len(files))
	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for i, file := range files {
		g.Go(func() error {
			results[i] = r.processFile(ctx, file)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Results: results}
	for _, res := range results {
		switch {
		case res.Succeeded():
			report.Succeeded++
		case res.NeedsInput():
			report.NeedsInput++
		default:
			report.Failed++
		}
	}
	report.Transactions = r.aggregator.Aggregate(results)
	report.DateRange = DateRangeOf(report.Transactions)

	r.logger.Info("Batch finished",
		logging.Field{Key: "succeeded", Value: report.Succeeded},
		logging.Field{Key: "failed", Value: report.Failed},
		logging.Field{Key: "needs_input", Value: report.NeedsInput})
	return report, nil
}

func (r *Runner) processFile(ctx context.Context, path string) FileResult {
	start := time.Now()
	logger := r.logger.WithField(logging.FieldFile, filepath.Base(path))

	req := pipeline.ProcessRequest{FilePath: path, Password: r.opts.Password, AccountType: r.opts.AccountType}
	outcome, err := r.processor.Process(ctx, req)
	if err == nil && outcome.RequiresPageSelection && r.opts.AllPages {
		req.SelectedPages = pipeline.AllPages(outcome.TotalPages)
		outcome, err = r.processor.Process(ctx, req)
	}

	res := FileResult{File: path, Outcome: outcome, Err: err, Duration: time.Since(start)}
	if err != nil {
		res.Code = pipelineerror.CodeOf(err)
		logger.WithError(err).Warn("Statement failed",
			logging.Field{Key: logging.FieldErrorCode, Value: string(res.Code)})
		return res
	}
	logger.Debug("Statement processed",
		logging.Field{Key: logging.FieldCount, Value: outcome.TotalTransactions},
		logging.Field{Key: logging.FieldDuration, Value: res.Duration.Milliseconds()})
	return res
}
