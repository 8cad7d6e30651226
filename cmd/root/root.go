// Package root contains the root command for the application
package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"fjacquet/ledger-ingest/internal/config"
	"fjacquet/ledger-ingest/internal/container"
	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/store"
)

// AnnotationNoStore marks commands that never touch the database; they run
// on the in-memory store.
const AnnotationNoStore = "ledger-ingest/no-store"

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	ConfigFile  string
	Output      string
	UserID      string
	LogLevel    string
	LogFormat   string
	StoreDriver string
	StoreDSN    string
}

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "ledger-ingest",
		Short: "Turn bank statements into categorized, stored transactions.",
		Long: `ledger-ingest extracts text from bank statements (PDF, CSV, XLS, XLSX),
asks a language model to turn it into categorized transactions, stores the
reviewed transactions and finds likely duplicates.`,
		SilenceUsage:      true,
		Annotations:       map[string]string{AnnotationNoStore: "true"},
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// SharedFlags holds the persistent flag values.
	SharedFlags = CommonFlags{}

	// ContainerOptions are passed to every container the commands build.
	ContainerOptions []container.Option

	app      *container.Container
	initOnce sync.Once
)

// Init initializes the root command and all flags. Repeated calls are no-ops.
func Init() {
	initOnce.Do(initFlags)
}

func initFlags() {
	flags := Cmd.PersistentFlags()
	flags.StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: ./config.yaml, .ledger-ingest/ or $HOME/.ledger-ingest/)")
	flags.StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (default: stdout)")
	flags.StringVarP(&SharedFlags.UserID, "user", "u", "", "Owner of the transactions (default: user.id from config)")
	flags.StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text, json)")
	flags.StringVar(&SharedFlags.StoreDriver, "store-driver", "", "Transaction store (sqlite, postgres, memory)")
	flags.StringVar(&SharedFlags.StoreDSN, "store-dsn", "", "SQLite path or PostgreSQL connection string")
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.InitializeConfig(SharedFlags.ConfigFile)
	if err != nil {
		return err
	}
	applyFlags(cfg)
	if cmd.Annotations[AnnotationNoStore] == "true" {
		cfg.Store.Driver = store.DriverMemory
	}

	logging.SetAllLogLevels(cfg.LogLevel())
	c, err := container.NewContainer(cmd.Context(), cfg, ContainerOptions...)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	app = c
	return nil
}

func applyFlags(cfg *config.Config) {
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	if SharedFlags.LogFormat != "" {
		cfg.Log.Format = SharedFlags.LogFormat
	}
	if SharedFlags.StoreDriver != "" {
		cfg.Store.Driver = SharedFlags.StoreDriver
	}
	if SharedFlags.StoreDSN != "" {
		cfg.Store.DSN = SharedFlags.StoreDSN
	}
	if SharedFlags.UserID != "" {
		cfg.User.ID = SharedFlags.UserID
	}
}

func teardown(_ *cobra.Command, _ []string) {
	Shutdown()
}

// Shutdown closes the container. Post-run hooks are skipped when a command
// fails, so main calls it after Execute as well.
func Shutdown() {
	if app == nil {
		return
	}
	if err := app.Close(); err != nil {
		app.GetLogger().WithError(err).Warn("Failed to close resources")
	}
	app = nil
}

// GetContainer returns the container built for the running command.
func GetContainer() (*container.Container, error) {
	if app == nil {
		return nil, errors.New("application not initialized")
	}
	return app, nil
}

// UserID returns the --user flag, falling back to the configured user.
func UserID() string {
	if app != nil {
		return app.GetConfig().User.ID
	}
	return SharedFlags.UserID
}

// GetLogger returns the container's logger, or the default logger before setup.
func GetLogger() logging.Logger {
	if app != nil {
		return app.GetLogger()
	}
	return logging.GetLogger()
}

// Run executes args against Cmd with every flag back at its default, then
// releases the container.
func Run(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	resetFlags(Cmd)
	Cmd.SetOut(stdout)
	Cmd.SetErr(stderr)
	Cmd.SetArgs(args)
	defer Shutdown()
	return Cmd.ExecuteContext(ctx)
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}
