// Package batch handles batch processing of files
package batch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	cmdcommon "fjacquet/ledger-ingest/cmd/common"
	"fjacquet/ledger-ingest/cmd/root"
	"fjacquet/ledger-ingest/internal/batch"
	"fjacquet/ledger-ingest/internal/common"
	"fjacquet/ledger-ingest/internal/container"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipeline"
	"fjacquet/ledger-ingest/internal/validation"
)

var (
	password    string
	allPages    bool
	concurrency int
	accountType string
	prefix      string
	save        bool
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch DIR",
	Short: "Batch process every statement in a directory",
	Long: `Batch process every PDF, CSV, XLS and XLSX statement in a directory.

Files are processed concurrently and independently: a failing file is reported
and the others continue. The transactions of all successful files are written
to one consolidated CSV named {prefix}_{first date}_{last date}.csv in the
--output directory, or to stdout without --output. A per-file summary is
printed as JSON to stderr.

Example:
  ledger-ingest batch statements/ -o out/ --all-pages --password secret`,
	Args: cobra.ExactArgs(1),
	RunE: batchFunc,
}

func init() {
	Cmd.Flags().StringVarP(&password, "password", "p", "", "Password tried on every protected PDF")
	Cmd.Flags().BoolVar(&allPages, "all-pages", false, "Categorize every page of multi-page PDFs")
	Cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "Files processed at once (default: batch.concurrency from config)")
	Cmd.Flags().StringVar(&accountType, "account-type", string(models.AccountTypeBank), "Account type (bank, credit_card)")
	Cmd.Flags().StringVar(&prefix, "prefix", "transactions", "Consolidated file name prefix")
	Cmd.Flags().BoolVar(&save, "save", false, "Store the transactions of every successful file")
}

// FileSummary is one line of the printed batch summary.
type FileSummary struct {
	File         string `json:"file"`
	Status       string `json:"status"`
	Transactions int    `json:"transactions"`
	Error        string `json:"error,omitempty"`
	Message      string `json:"message,omitempty"`
	RawResponse  string `json:"rawResponse,omitempty"`
}

// Summary is printed after a batch run.
type Summary struct {
	Files      []FileSummary `json:"files"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	NeedsInput int           `json:"needsInput"`
	Saved      int           `json:"saved,omitempty"`
	Output     string        `json:"output,omitempty"`
}

func batchFunc(cmd *cobra.Command, args []string) error {
	app, err := root.GetContainer()
	if err != nil {
		return err
	}
	logger := app.GetLogger()
	ctx := cmd.Context()
	inputDir := args[0]
	if err := validation.IsValidDirectory(inputDir); err != nil {
		return err
	}

	runner := app.NewBatchRunner(batch.Options{
		Concurrency: concurrency,
		Password:    password,
		AccountType: models.ParseAccountType(accountType),
		AllPages:    allPages,
	})
	report, err := runner.Run(ctx, inputDir)
	if err != nil {
		return err
	}

	summary := summarize(report)
	if save {
		if summary.Saved, err = saveResults(ctx, app, report); err != nil {
			return err
		}
	}

	var sources []string
	for _, res := range report.Results {
		if res.Succeeded() {
			sources = append(sources, filepath.Base(res.File))
		}
	}

	outputDir := root.SharedFlags.Output
	if outputDir != "" && outputDir != "-" {
		summary.Output = filepath.Join(outputDir, batch.OutputFilename(prefix, report.DateRange))
	}
	w, err := cmdcommon.OpenOutput(summary.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := writeConsolidated(w, sources, report.Transactions); err != nil {
		return err
	}
	if summary.Output != "" {
		logger.Info("Wrote consolidated transactions",
			logging.Field{Key: logging.FieldOutputFile, Value: summary.Output},
			logging.Field{Key: logging.FieldCount, Value: len(report.Transactions)})
	}

	if err := cmdcommon.WriteJSON(cmd.ErrOrStderr(), summary); err != nil {
		return err
	}
	if summary.Succeeded == 0 && len(report.Results) > 0 {
		return fmt.Errorf("no statement in %s could be processed", inputDir)
	}
	return nil
}

func summarize(report batch.Report) Summary {
	s := Summary{Succeeded: report.Succeeded, Failed: report.Failed, NeedsInput: report.NeedsInput}
	for _, res := range report.Results {
		fs := FileSummary{
			File:         filepath.Base(res.File),
			Transactions: res.Outcome.TotalTransactions,
			Message:      res.Outcome.Message,
		}
		switch {
		case res.Succeeded():
			fs.Status = "ok"
		case res.NeedsInput():
			fs.Status = "needs_input"
		default:
			fs.Status = "failed"
			fs.Error = string(res.Code)
			fs.RawResponse = res.Outcome.RawResponse
			if res.Err != nil {
				fs.Message = res.Err.Error()
			}
		}
		s.Files = append(s.Files, fs)
	}
	return s
}

func saveResults(ctx context.Context, app *container.Container, report batch.Report) (int, error) {
	svc := app.GetService()
	userID := root.UserID()
	saved := 0
	for _, res := range report.Results {
		if !res.Succeeded() || len(res.Outcome.Transactions) == 0 {
			continue
		}
		upload, err := svc.RegisterUpload(ctx, userID, res.File)
		if err != nil {
			return saved, err
		}
		result, err := svc.Commit(ctx, pipeline.CommitRequest{
			UserID:       userID,
			AccountType:  res.Outcome.AccountType,
			UploadID:     upload.ID,
			Transactions: res.Outcome.Transactions,
		})
		if err != nil {
			return saved, fmt.Errorf("%s: %w", filepath.Base(res.File), err)
		}
		saved += result.TransactionCount
	}
	return saved, nil
}

func writeConsolidated(w io.Writer, sources []string, transactions []models.CandidateTransaction) error {
	if header := batch.SourceFileHeader(sources, time.Now()); header != "" {
		if _, err := io.WriteString(w, header); err != nil {
			return err
		}
	}
	if transactions == nil {
		transactions = []models.CandidateTransaction{}
	}
	if err := common.WriteTransactionsCSV(transactions, w); err != nil {
		return fmt.Errorf("failed to write consolidated CSV: %w", err)
	}
	return nil
}

