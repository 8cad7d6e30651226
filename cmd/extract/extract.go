// Package extract implements the extract command
package extract

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	cmdcommon "fjacquet/ledger-ingest/cmd/common"
	"fjacquet/ledger-ingest/cmd/root"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/pipelineerror"
)

var (
	password string
	textOnly bool
)

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Extract the text of a statement",
	Long: `Extract the text of a PDF, CSV, XLS or XLSX statement without categorizing it.

The result is printed as JSON: {"data": ..., "error": null, "requiresPassword": false}.
With --text only the extracted text is printed.

Example:
  ledger-ingest extract statement.pdf --password secret --text`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{root.AnnotationNoStore: "true"},
	RunE:        extractFunc,
}

func init() {
	Cmd.Flags().StringVarP(&password, "password", "p", "", "Password of a protected PDF")
	Cmd.Flags().BoolVar(&textOnly, "text", false, "Print only the extracted text")
}

func extractFunc(cmd *cobra.Command, args []string) error {
	app, err := root.GetContainer()
	if err != nil {
		return err
	}
	logger := app.GetLogger()
	logger.Debug("Extract command called", logging.Field{Key: logging.FieldFile, Value: args[0]})

	result := app.GetService().Extract(cmd.Context(), args[0], password)

	w, err := cmdcommon.OpenOutput(root.SharedFlags.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if textOnly {
		if !result.OK() {
			return &pipelineerror.ExtractionError{Code: result.Err, FilePath: args[0], Err: errors.New(result.Message)}
		}
		_, err = io.WriteString(w, result.Data+"\n")
		return err
	}
	return cmdcommon.WriteJSON(w, result)
}
