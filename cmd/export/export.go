// Package export implements the export command
package export

import (
	"fmt"

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
	format   string
	txType   string
	category string
	start    string
	end      string
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored transactions",
	Long: `Export the current user's stored transactions, newest first, as CSV, XLSX or
JSON. XLSX needs --output.

Example:
  ledger-ingest export --format xlsx --start 2024-01-01 --end 2024-03-31 -o q1.xlsx`,
	Args: cobra.NoArgs,
	RunE: exportFunc,
}

func init() {
	Cmd.Flags().StringVarP(&format, "format", "f", cmdcommon.FormatCSV, "Output format (csv, xlsx, json)")
	Cmd.Flags().StringVar(&txType, "type", "", "Only credit or expense transactions")
	Cmd.Flags().StringVar(&category, "category", "", "Only this category")
	Cmd.Flags().StringVar(&start, "start", "", "First day to include (YYYY-MM-DD)")
	Cmd.Flags().StringVar(&end, "end", "", "Last day to include (YYYY-MM-DD)")
}

func exportFunc(cmd *cobra.Command, _ []string) error {
	filter, err := buildFilter()
	if err != nil {
		return err
	}
	output := root.SharedFlags.Output
	if err := validation.IsValidOutputFormat(format, cmdcommon.FormatCSV, cmdcommon.FormatXLSX, cmdcommon.FormatJSON); err != nil {
		return err
	}
	if format == cmdcommon.FormatXLSX && (output == "" || output == "-") {
		return fmt.Errorf("xlsx export needs --output")
	}

	app, err := root.GetContainer()
	if err != nil {
		return err
	}
	txs, err := app.GetService().Export(cmd.Context(), filter)
	if err != nil {
		return err
	}
	rows := make([]models.ExportRow, len(txs))
	for i, t := range txs {
		rows[i] = t.ToExportRow()
	}

	app.GetLogger().Info("Exporting transactions",
		logging.Field{Key: logging.FieldCount, Value: len(rows)},
		logging.Field{Key: logging.FieldOutputFile, Value: output})

	if format == cmdcommon.FormatXLSX {
		return common.WriteExportXLSX(rows, output)
	}

	w, err := cmdcommon.OpenOutput(output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	if format == cmdcommon.FormatJSON {
		return cmdcommon.WriteJSON(w, rows)
	}
	return common.WriteExportCSV(rows, w)
}

func buildFilter() (pipeline.ExportFilter, error) {
	filter := pipeline.ExportFilter{UserID: root.UserID(), Category: category}
	if txType != "" {
		t, ok := models.ParseTransactionType(txType)
		if !ok {
			return filter, fmt.Errorf("invalid --type %q (must be credit or expense)", txType)
		}
		filter.Type = t
	}
	var err error
	if filter.Start, err = cmdcommon.ParseDay(start); err != nil {
		return filter, err
	}
	if filter.End, err = cmdcommon.ParseDay(end); err != nil {
		return filter, err
	}
	return filter, nil
}
