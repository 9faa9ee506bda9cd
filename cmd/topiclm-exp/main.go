package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

// formatError renders a CLI failure, prefixed with its application error
// code when it carries one.
func formatError(err error) string {
	if code := common.ErrorCode(err); code != "" {
		return fmt.Sprintf("Error [%s]: %v\n", code, err)
	}
	return fmt.Sprintf("Error: %v\n", err)
}

func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

func newRootCmd(cfg *common.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "topiclm-exp",
		Short:         "Run topic-model training/evaluation parameter sweeps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.Binaries.BuildDir, "build-dir", cfg.Binaries.BuildDir, "directory holding the training/prediction binaries and their libraries")
	root.PersistentFlags().StringVar(&cfg.Data.Root, "data-root", cfg.Data.Root, "directory holding the preprocessed corpora")

	root.AddCommand(newRunCmd(cfg), newListCmd(), newReportCmd(), newRunsCmd(cfg))
	return root
}

func main() {
	cfg := common.LoadConfig()
	newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		printError("%s", formatError(err))
		stop()
		os.Exit(1)
	}
}
