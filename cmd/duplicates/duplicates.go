// Package duplicates implements the duplicates command
package duplicates

import (
	"github.com/spf13/cobra"

	cmdcommon "fjacquet/ledger-ingest/cmd/common"
	"fjacquet/ledger-ingest/cmd/root"
)

// Cmd represents the duplicates command
var Cmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List groups of likely duplicate transactions",
	Long: `List pairs of stored transactions of the current user that share a day, an
amount and a type, and whose descriptions match or were stored within a few
minutes of each other. Nothing is deleted.

Example:
  ledger-ingest duplicates --user 42`,
	Args: cobra.NoArgs,
	RunE: duplicatesFunc,
}

func duplicatesFunc(cmd *cobra.Command, _ []string) error {
	app, err := root.GetContainer()
	if err != nil {
		return err
	}

	report, err := app.GetService().FindDuplicates(cmd.Context(), root.UserID())
	if err != nil {
		return err
	}

	w, err := cmdcommon.OpenOutput(root.SharedFlags.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	return cmdcommon.WriteJSON(w, report)
}
