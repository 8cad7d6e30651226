// Package save implements the save command
package save

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cmdcommon "fjacquet/ledger-ingest/cmd/common"
	"fjacquet/ledger-ingest/cmd/root"
	"fjacquet/ledger-ingest/internal/common"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipeline"
	"fjacquet/ledger-ingest/internal/validation"
)

var (
	accountType string
	source      string
)

// Cmd represents the save command
var Cmd = &cobra.Command{
	Use:   "save REVIEWED.csv",
	Short: "Store reviewed transactions",
	Long: `Store the transactions of a reviewed CSV file, as written by
"process --format csv", for the current user.

With --source the original statement is recorded as an upload and every
stored transaction points back to it.

Example:
  ledger-ingest save review.csv --source statement.pdf --user 42`,
	Args: cobra.ExactArgs(1),
	RunE: saveFunc,
}

func init() {
	Cmd.Flags().StringVar(&accountType, "account-type", string(models.AccountTypeBank), "Account type (bank, credit_card)")
	Cmd.Flags().StringVar(&source, "source", "", "Original statement file the transactions came from")
}

func saveFunc(cmd *cobra.Command, args []string) error {
	app, err := root.GetContainer()
	if err != nil {
		return err
	}
	svc := app.GetService()
	ctx := cmd.Context()

	f, err := os.Open(args[0]) // #nosec G304 -- path comes from the command line
	if err != nil {
		return fmt.Errorf("failed to open reviewed transactions: %w", err)
	}
	defer func() { _ = f.Close() }()

	transactions, err := common.ReadTransactionsCSV(f)
	if err != nil {
		return fmt.Errorf("failed to read reviewed transactions: %w", err)
	}

	req := pipeline.CommitRequest{
		UserID:       root.UserID(),
		AccountType:  models.ParseAccountType(accountType),
		Transactions: transactions,
	}
	if source != "" {
		if err := validation.IsValidFile(source); err != nil {
			return err
		}
		upload, err := svc.RegisterUpload(ctx, req.UserID, source)
		if err != nil {
			return err
		}
		req.UploadID = upload.ID
	}

	result, err := svc.Commit(ctx, req)
	if err != nil {
		return err
	}

	w, err := cmdcommon.OpenOutput(root.SharedFlags.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	return cmdcommon.WriteJSON(w, result)
}
