package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"fjacquet/ledger-ingest/cmd/batch"
	"fjacquet/ledger-ingest/cmd/categories"
	"fjacquet/ledger-ingest/cmd/duplicates"
	"fjacquet/ledger-ingest/cmd/export"
	"fjacquet/ledger-ingest/cmd/extract"
	"fjacquet/ledger-ingest/cmd/probe"
	"fjacquet/ledger-ingest/cmd/process"
	"fjacquet/ledger-ingest/cmd/root"
	"fjacquet/ledger-ingest/cmd/save"
	"fjacquet/ledger-ingest/cmd/summary"
	"fjacquet/ledger-ingest/internal/config"
	"fjacquet/ledger-ingest/internal/logging"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	_, _ = config.LoadEnv(logging.NewLogrusAdapterWithOutput("error", "text", io.Discard))

	// 2. Force the early log level on all loggers until the config is read
	logging.SetAllLogLevels(envLogLevel())

	// 3. Initialize root command and add all subcommands
	root.Init()
	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(probe.Cmd)
	root.Cmd.AddCommand(process.Cmd)
	root.Cmd.AddCommand(save.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(duplicates.Cmd)
	root.Cmd.AddCommand(summary.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
}

func envLogLevel() logrus.Level {
	for _, key := range []string{"LEDGER_LOG_LEVEL", "LOG_LEVEL"} {
		if v := os.Getenv(key); v != "" {
			if level, err := logrus.ParseLevel(strings.ToLower(v)); err == nil {
				return level
			}
		}
	}
	return logrus.InfoLevel
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.Run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		os.Exit(1)
	}
}
