package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
	"github.com/joseph-ayodele/topiclm-experiments/internal/repository"
)

func newRunsCmd(cfg *common.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run store",
	}
	cmd.PersistentFlags().StringVar(&cfg.Database.DSN, "db", cfg.Database.DSN, "run store DSN: postgres://... or a SQLite file")

	health := &cobra.Command{
		Use:   "health",
		Short: "Ping the run store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openStore(cmd, cfg, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.HealthCheck(cmd.Context(), time.Second); err != nil {
				return fmt.Errorf("DB health: FAIL (%w)", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "DB health: OK (%s)\n", db.Dialect())
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print a run and its job outcomes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("%w: run id: %v", common.ErrInvalidInput, err)
			}
			db, err := openStore(cmd, cfg, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			repo := repository.NewRunRepository(db, slog.Default())
			run, err := repo.GetRun(ctx, runID)
			if err != nil {
				return err
			}
			outs, err := repo.ListOutcomes(ctx, runID)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Run %s: %s\n", run.ID, run.Experiment)
			fmt.Fprintf(w, "- Started: %s\n", run.StartedAt.Format(time.RFC3339))
			if run.FinishedAt != nil {
				fmt.Fprintf(w, "- Finished: %s\n", run.FinishedAt.Format(time.RFC3339))
			}
			fmt.Fprintf(w, "- Jobs: %d (%d succeeded, %d failed, %d workers)\n", run.Jobs, run.Succeeded, run.Failed, run.Workers)

			table := tablewriter.NewWriter(w)
			table.SetHeader([]string{"Seq", "Model", "Status", "Ave PPL"})
			for _, o := range outs {
				ppl := "-"
				if o.AvePpl != nil {
					ppl = strconv.FormatFloat(*o.AvePpl, 'f', 3, 64)
				}
				table.Append([]string{strconv.Itoa(o.Seq), o.ModelID, o.Status, ppl})
			}
			table.Render()
			return nil
		},
	}

	cmd.AddCommand(health, show)
	return cmd
}

// openStore opens and migrates the run store at dsn.
func openStore(cmd *cobra.Command, cfg *common.Config, dsn string) (*repository.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: --db or RESULTS_DB is required", common.ErrInvalidInput)
	}
	db, err := repository.Open(cmd.Context(), repository.Config{
		DSN:             dsn,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, slog.Default())
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(cmd.Context()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
