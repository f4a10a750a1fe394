// Command fern serves form prefill data sources and mappings over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fern: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	serveCmd := newServeCommand()

	root := &cobra.Command{
		Use:           "fern",
		Short:         "Form prefill dependency resolution service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serveCmd.RunE,
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(serveCmd, newMigrateCommand())

	return root
}

// withRuntime loads the configuration and the process logger before running fn.
func withRuntime(fn func(cfg *config.Config, logger ectologger.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, zapLogger, err := logging.NewLogger(logging.Config{Level: cfg.LogLevel, Pretty: cfg.PrettyLogs})
	if err != nil {
		return err
	}
	defer func() { _ = zapLogger.Sync() }()

	return fn(cfg, logger)
}
