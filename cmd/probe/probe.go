// Package probe implements the probe command
package probe

import (
	"github.com/spf13/cobra"

	cmdcommon "fjacquet/ledger-ingest/cmd/common"
	"fjacquet/ledger-ingest/cmd/root"
	"fjacquet/ledger-ingest/internal/extractor"
)

// Result is printed by the probe command.
type Result struct {
	File              string         `json:"file"`
	Kind              extractor.Kind `json:"kind"`
	Supported         bool           `json:"supported"`
	PasswordProtected bool           `json:"passwordProtected"`
}

// Cmd represents the probe command
var Cmd = &cobra.Command{
	Use:   "probe FILE",
	Short: "Report whether a statement needs a password",
	Long: `Report the detected format of a statement and whether it is password protected.

Only PDF files can be protected; other formats always report false.

Example:
  ledger-ingest probe statement.pdf`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{root.AnnotationNoStore: "true"},
	RunE:        probeFunc,
}

func probeFunc(cmd *cobra.Command, args []string) error {
	app, err := root.GetContainer()
	if err != nil {
		return err
	}

	path := args[0]
	protected, err := app.GetService().ProbePassword(cmd.Context(), path)
	if err != nil {
		return err
	}

	w, err := cmdcommon.OpenOutput(root.SharedFlags.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	return cmdcommon.WriteJSON(w, Result{
		File:              path,
		Kind:              extractor.KindOf(path),
		Supported:         extractor.IsSupported(path),
		PasswordProtected: protected,
	})
}
