// Package process implements the process command
package process

import (
	"errors"

	"github.com/spf13/cobra"

	cmdcommon "fjacquet/ledger-ingest/cmd/common"
	"fjacquet/ledger-ingest/cmd/root"
	"fjacquet/ledger-ingest/internal/common"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipeline"
	"fjacquet/ledger-ingest/internal/validation"
)

var (
	password    string
	pages       string
	allPages    bool
	accountType string
	format      string
	save        bool
)

// Response is the JSON printed by the process command.
type Response struct {
	pipeline.ProcessOutcome
	Commit *pipeline.CommitResult `json:"commit,omitempty"`
}

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process FILE",
	Short: "Extract and categorize the transactions of a statement",
	Long: `Extract a statement, send its text to the categorization model and print the
proposed transactions for review.

A protected PDF needs --password. A PDF with more than one page needs --pages
(for example "1,3-4") or --all-pages. With --save the transactions are stored
right away instead of being reviewed first.

Example:
  ledger-ingest process statement.pdf --pages 1-2 --format csv -o review.csv`,
	Args: cobra.ExactArgs(1),
	RunE: processFunc,
}

func init() {
	Cmd.Flags().StringVarP(&password, "password", "p", "", "Password of a protected PDF")
	Cmd.Flags().StringVar(&pages, "pages", "", "Pages to categorize, e.g. 1,3-4")
	Cmd.Flags().BoolVar(&allPages, "all-pages", false, "Categorize every page of a multi-page PDF")
	Cmd.Flags().StringVar(&accountType, "account-type", string(models.AccountTypeBank), "Account type (bank, credit_card)")
	Cmd.Flags().StringVarP(&format, "format", "f", cmdcommon.FormatJSON, "Output format (json, csv)")
	Cmd.Flags().BoolVar(&save, "save", false, "Store the transactions after categorizing")
}

func processFunc(cmd *cobra.Command, args []string) error {
	if err := validation.IsValidOutputFormat(format, cmdcommon.FormatJSON, cmdcommon.FormatCSV); err != nil {
		return err
	}
	selected, err := cmdcommon.ParsePages(pages)
	if err != nil {
		return err
	}
	app, err := root.GetContainer()
	if err != nil {
		return err
	}
	svc := app.GetService()
	logger := app.GetLogger().WithField(logging.FieldFile, args[0])
	ctx := cmd.Context()

	req := pipeline.ProcessRequest{
		FilePath:      args[0],
		Password:      password,
		SelectedPages: selected,
		AccountType:   models.ParseAccountType(accountType),
	}
	outcome, err := svc.Process(ctx, req)
	if err == nil && outcome.RequiresPageSelection && allPages {
		req.SelectedPages = pipeline.AllPages(outcome.TotalPages)
		outcome, err = svc.Process(ctx, req)
	}
	if err != nil {
		if outcome.RawResponse != "" {
			logger.Warn("Model response could not be used",
				logging.Field{Key: logging.FieldErrorCode, Value: string(outcome.Error)},
				logging.Field{Key: logging.FieldRawResponse, Value: outcome.RawResponse})
		}
		if outcome.Error != "" && format == cmdcommon.FormatJSON {
			if werr := writeJSON(cmd, Response{ProcessOutcome: outcome}); werr != nil {
				logger.WithError(werr).Warn("Failed to write process output")
			}
		}
		return err
	}

	resp := Response{ProcessOutcome: outcome}
	needsInput := outcome.RequiresPassword || outcome.RequiresPageSelection
	if save && !needsInput {
		upload, err := svc.RegisterUpload(ctx, root.UserID(), args[0])
		if err != nil {
			return err
		}
		result, err := svc.Commit(ctx, pipeline.CommitRequest{
			UserID:       root.UserID(),
			AccountType:  outcome.AccountType,
			UploadID:     upload.ID,
			Transactions: outcome.Transactions,
		})
		if err != nil {
			return err
		}
		logger.Info(result.Message)
		resp.Commit = &result
	}

	output := root.SharedFlags.Output
	if format == cmdcommon.FormatCSV {
		if needsInput {
			return errors.New(outcome.Message)
		}
		if output != "" && output != "-" {
			return common.WriteTransactionsToCSV(outcome.Transactions, output, logger)
		}
		return common.WriteTransactionsCSV(outcome.Transactions, cmd.OutOrStdout())
	}

	return writeJSON(cmd, resp)
}

func writeJSON(cmd *cobra.Command, resp Response) error {
	w, err := cmdcommon.OpenOutput(root.SharedFlags.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	return cmdcommon.WriteJSON(w, resp)
}
