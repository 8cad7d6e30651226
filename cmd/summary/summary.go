// Package summary implements the summary command
package summary

import (
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "fjacquet/ledger-ingest/cmd/common"
	"fjacquet/ledger-ingest/cmd/root"
	"fjacquet/ledger-ingest/internal/models"
	"fjacquet/ledger-ingest/internal/pipeline"
)

var (
	year        int
	month       int
	accountType string
)

// Cmd represents the summary command
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Total credits and expenses per category",
	Long: `Print the totals of the current user's stored transactions and the expenses
of each category, largest first. --month needs --year.

Example:
  ledger-ingest summary --year 2024 --month 3 --account-type credit_card`,
	Args: cobra.NoArgs,
	RunE: summaryFunc,
}

func init() {
	Cmd.Flags().IntVar(&year, "year", 0, "Only transactions of this year")
	Cmd.Flags().IntVar(&month, "month", 0, "Only transactions of this month (1-12)")
	Cmd.Flags().StringVar(&accountType, "account-type", "", "Only this account type (bank, credit_card)")
}

func summaryFunc(cmd *cobra.Command, _ []string) error {
	if month != 0 && (month < 1 || month > 12 || year == 0) {
		return fmt.Errorf("--month must be between 1 and 12 and needs --year")
	}
	app, err := root.GetContainer()
	if err != nil {
		return err
	}

	filter := pipeline.SummaryFilter{UserID: root.UserID(), Year: year, Month: month}
	if accountType != "" {
		filter.AccountType = models.ParseAccountType(accountType)
	}
	summary, err := app.GetService().Summarize(cmd.Context(), filter)
	if err != nil {
		return err
	}

	w, err := cmdcommon.OpenOutput(root.SharedFlags.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	return cmdcommon.WriteJSON(w, summary)
}
