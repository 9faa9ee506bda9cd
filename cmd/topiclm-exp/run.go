package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/topiclm-experiments/internal/command"
	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
	"github.com/joseph-ayodele/topiclm-experiments/internal/core"
	"github.com/joseph-ayodele/topiclm-experiments/internal/core/proc"
	"github.com/joseph-ayodele/topiclm-experiments/internal/corpus"
	"github.com/joseph-ayodele/topiclm-experiments/internal/experiment"
	"github.com/joseph-ayodele/topiclm-experiments/internal/export"
	"github.com/joseph-ayodele/topiclm-experiments/internal/repository"
	"github.com/joseph-ayodele/topiclm-experiments/internal/results"
)

type runFlags struct {
	configFile string
	inmem      bool
	xlsx       string
}

func newRunCmd(cfg *common.Config) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run <experiment>",
		Short: "Train and evaluate every job of a named experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperiment(cmd, cfg, f, args[0])
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&cfg.Batch.Workers, "workers", cfg.Batch.Workers, "maximum number of jobs running at once")
	flags.DurationVar(&cfg.Batch.JobTimeout, "timeout", cfg.Batch.JobTimeout, "per-job time limit (0 = none)")
	flags.StringVar(&cfg.Batch.OutDir, "out-dir", cfg.Batch.OutDir, "directory for the <experiment>.json and .failed files")
	flags.StringVar(&cfg.Batch.WorkDir, "work-dir", cfg.Batch.WorkDir, "working directory of the external binaries (model outputs land here)")
	flags.StringVar(&cfg.Database.DSN, "db", cfg.Database.DSN, "run store DSN: postgres://... or a SQLite file (empty = disabled)")
	flags.StringVar(&f.configFile, "config", "", "YAML file with additional experiment definitions")
	flags.BoolVar(&f.inmem, "inmem", false, "use an in-memory SQLite run store")
	flags.StringVar(&f.xlsx, "xlsx", "", "also write the batch's records to this XLSX file")
	return cmd
}

func loadCatalog(configFile string) (*experiment.Catalog, error) {
	if configFile == "" {
		return experiment.NewCatalog(), nil
	}
	defs, err := experiment.LoadFile(configFile)
	if err != nil {
		return nil, err
	}
	return experiment.NewCatalog(defs...), nil
}

func runExperiment(cmd *cobra.Command, cfg *common.Config, f runFlags, name string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	if err := cfg.Validate(); err != nil {
		return err
	}
	catalog, err := loadCatalog(f.configFile)
	if err != nil {
		return err
	}
	def, err := catalog.Lookup(name)
	if err != nil {
		return err
	}

	resultsLog := results.NewLog(cfg.Batch.OutDir, def.OutputName(), logger)
	processor, err := newProcessor(cfg, proc.ExecRunner{}, resultsLog, logger)
	if err != nil {
		return err
	}

	var runs repository.RunRepository
	if f.inmem || cfg.Database.DSN != "" {
		dsn := cfg.Database.DSN
		if f.inmem {
			dsn = repository.InMemoryDSN
		}
		db, err := openStore(cmd, cfg, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		runs = repository.NewRunRepository(db, logger)
	}

	batch := core.NewBatch(logger, processor, runs, core.BatchOptions{
		Workers:    cfg.Batch.Workers,
		JobTimeout: cfg.Batch.JobTimeout,
	})
	sum, err := batch.Run(ctx, def)
	if err != nil {
		return err
	}

	if f.xlsx != "" {
		var recs []results.Record
		for _, out := range sum.Outcomes {
			if out.Record != nil {
				recs = append(recs, *out.Record)
			}
		}
		xlsxBytes, err := export.NewService(logger).ExportRecordsXLSX(recs)
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.xlsx, xlsxBytes, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Experiment %s complete (run %s)\n", sum.Experiment, sum.RunID)
	fmt.Fprintf(out, "- Jobs: %d\n", len(sum.Outcomes))
	fmt.Fprintf(out, "- Succeeded: %d\n", sum.Succeeded)
	fmt.Fprintf(out, "- Training failures: %d (%s)\n", sum.TrainFailed, resultsLog.FailedPath())
	fmt.Fprintf(out, "- Other failures: %d\n", sum.Failed)
	fmt.Fprintf(out, "- Results: %s\n", resultsLog.RecordsPath())

	return ctx.Err()
}

// newProcessor wires the job runner. Children run in WorkDir, so the build
// directory and data root must not be relative; model ids stay relative to
// WorkDir.
func newProcessor(cfg *common.Config, runner proc.Runner, resultsLog *results.Log, logger *slog.Logger) (*core.Processor, error) {
	buildDir, err := filepath.Abs(cfg.Binaries.BuildDir)
	if err != nil {
		return nil, err
	}
	dataRoot, err := filepath.Abs(cfg.Data.Root)
	if err != nil {
		return nil, err
	}
	return core.NewProcessor(
		logger,
		runner,
		command.NewBuilder(buildDir),
		corpus.NewTable(dataRoot),
		resultsLog,
		core.ProcessorOptions{
			WorkDir: cfg.Batch.WorkDir,
			Env:     proc.Environ(cfg.Binaries.LibraryPathVar, buildDir),
			Predict: command.PredictOptions{
				Particles: cfg.Predict.Particles,
				Samples:   cfg.Predict.Samples,
			},
		},
	), nil
}
