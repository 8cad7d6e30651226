// Package categories implements the categories command
package categories

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	cmdcommon "fjacquet/ledger-ingest/cmd/common"
	"fjacquet/ledger-ingest/cmd/root"
	"fjacquet/ledger-ingest/internal/models"
)

var (
	asJSON bool
	force  bool
)

// Cmd represents the categories command
var Cmd = &cobra.Command{
	Use:   "categories",
	Short: "Show or initialize the category list",
	Long: `Show the categories the model may assign, or write the built-in list to the
configured category file so it can be edited.

Example:
  ledger-ingest categories list
  ledger-ingest categories init --force`,
	Annotations: map[string]string{root.AnnotationNoStore: "true"},
}

var listCmd = &cobra.Command{
	Use:         "list",
	Short:       "Print the categories in use",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{root.AnnotationNoStore: "true"},
	RunE:        listFunc,
}

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write the built-in categories to the category file",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{root.AnnotationNoStore: "true"},
	RunE:        initFunc,
}

func init() {
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Print as a JSON array")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing category file")
	Cmd.AddCommand(listCmd, initCmd)
}

func listFunc(cmd *cobra.Command, _ []string) error {
	app, err := root.GetContainer()
	if err != nil {
		return err
	}
	w, err := cmdcommon.OpenOutput(root.SharedFlags.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	names := app.GetCategories().Names()
	if asJSON {
		return cmdcommon.WriteJSON(w, names)
	}
	for _, name := range names {
		if _, err := io.WriteString(w, name+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func initFunc(cmd *cobra.Command, _ []string) error {
	app, err := root.GetContainer()
	if err != nil {
		return err
	}
	categoryStore := app.GetCategoryStore()
	file := categoryStore.CategoriesFile
	if file == "" {
		return fmt.Errorf("no category file configured")
	}
	if _, err := os.Stat(file); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", file)
	}

	if err := categoryStore.Save(models.DefaultCategorySet()); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d categories to %s\n", models.DefaultCategorySet().Len(), file)
	return err
}
