package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
	"github.com/joseph-ayodele/topiclm-experiments/internal/entity"
)

type RunRepository interface {
	StartRun(ctx context.Context, run *entity.Run) error
	FinishRun(ctx context.Context, runID uuid.UUID, succeeded, failed int) error
	RecordOutcome(ctx context.Context, out *entity.JobOutcome) error
	GetRun(ctx context.Context, runID uuid.UUID) (*entity.Run, error)
	ListOutcomes(ctx context.Context, runID uuid.UUID) ([]entity.JobOutcome, error)
}

type runRepo struct {
	db  *DB
	log *slog.Logger
}

func NewRunRepository(db *DB, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{db: db, log: log}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (r *runRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.dialect)
}

func (r *runRepo) StartRun(ctx context.Context, run *entity.Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	query, args := r.builder().
		Insert("experiment_run").
		Columns("id", "experiment", "started_at", "jobs", "workers").
		Values(run.ID.String(), run.Experiment, formatTime(run.StartedAt), run.Jobs, run.Workers).
		Query()
	if err := r.db.drv.Exec(ctx, query, args, nil); err != nil {
		r.log.Error("experiment_run start failed", "run_id", run.ID, "err", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.log.Info("experiment_run started", "run_id", run.ID, "experiment", run.Experiment, "jobs", run.Jobs)
	return nil
}

func (r *runRepo) FinishRun(ctx context.Context, runID uuid.UUID, succeeded, failed int) error {
	query, args := r.builder().
		Update("experiment_run").
		Set("finished_at", formatTime(time.Now())).
		Set("succeeded", succeeded).
		Set("failed", failed).
		Where(entsql.EQ("id", runID.String())).
		Query()
	if err := r.db.drv.Exec(ctx, query, args, nil); err != nil {
		r.log.Error("experiment_run finish failed", "run_id", runID, "err", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.log.Info("experiment_run finished", "run_id", runID, "succeeded", succeeded, "failed", failed)
	return nil
}

func (r *runRepo) RecordOutcome(ctx context.Context, out *entity.JobOutcome) error {
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now()
	}
	params, err := json.Marshal(out.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	ppls, err := json.Marshal(nonNil(out.Ppls))
	if err != nil {
		return fmt.Errorf("marshal ppls: %w", err)
	}
	times, err := json.Marshal(nonNil(out.Times))
	if err != nil {
		return fmt.Errorf("marshal times: %w", err)
	}

	query, args := r.builder().
		Insert("job_outcome").
		Columns("run_id", "seq", "model_id", "corpus", "variant", "params", "status",
			"error_message", "ppls", "times", "ave_ppl", "ave_time", "created_at").
		Values(out.RunID.String(), out.Seq, out.ModelID, out.Corpus, out.Variant, string(params), out.Status,
			out.Error, string(ppls), string(times), out.AvePpl, out.AveTime, formatTime(out.CreatedAt)).
		Query()
	if err := r.db.drv.Exec(ctx, query, args, nil); err != nil {
		r.log.Error("job_outcome insert failed", "run_id", out.RunID, "model_id", out.ModelID, "err", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.log.Debug("job_outcome recorded", "run_id", out.RunID, "model_id", out.ModelID, "status", out.Status)
	return nil
}

func (r *runRepo) GetRun(ctx context.Context, runID uuid.UUID) (*entity.Run, error) {
	query, args := r.builder().
		Select("id", "experiment", "started_at", "finished_at", "jobs", "workers", "succeeded", "failed").
		From(entsql.Table("experiment_run")).
		Where(entsql.EQ("id", runID.String())).
		Query()

	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		return nil, fmt.Errorf("%w: run %s not found", common.ErrDatabase, runID)
	}
	var (
		id, started string
		finished    *string
		run         entity.Run
	)
	if err := rows.Scan(&id, &run.Experiment, &started, &finished, &run.Jobs, &run.Workers, &run.Succeeded, &run.Failed); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	var err error
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, err
	}
	if finished != nil {
		t, err := time.Parse(time.RFC3339Nano, *finished)
		if err != nil {
			return nil, err
		}
		run.FinishedAt = &t
	}
	return &run, nil
}

func (r *runRepo) ListOutcomes(ctx context.Context, runID uuid.UUID) ([]entity.JobOutcome, error) {
	query, args := r.builder().
		Select("seq", "model_id", "corpus", "variant", "params", "status",
			"error_message", "ppls", "times", "ave_ppl", "ave_time", "created_at").
		From(entsql.Table("job_outcome")).
		Where(entsql.EQ("run_id", runID.String())).
		OrderBy("seq").
		Query()

	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var outs []entity.JobOutcome
	for rows.Next() {
		var (
			o                   entity.JobOutcome
			params, ppls, times string
			created             string
		)
		o.RunID = runID
		if err := rows.Scan(&o.Seq, &o.ModelID, &o.Corpus, &o.Variant, &params, &o.Status,
			&o.Error, &ppls, &times, &o.AvePpl, &o.AveTime, &created); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		if err := json.Unmarshal([]byte(params), &o.Params); err != nil {
			return nil, fmt.Errorf("decode params: %w", err)
		}
		if err := json.Unmarshal([]byte(ppls), &o.Ppls); err != nil {
			return nil, fmt.Errorf("decode ppls: %w", err)
		}
		if err := json.Unmarshal([]byte(times), &o.Times); err != nil {
			return nil, fmt.Errorf("decode times: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, err
		}
		o.CreatedAt = t
		outs = append(outs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return outs, nil
}

func nonNil(xs []float64) []float64 {
	if xs == nil {
		return []float64{}
	}
	return xs
}
