package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/topiclm-experiments/constants"
	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
	"github.com/joseph-ayodele/topiclm-experiments/internal/core/async"
	"github.com/joseph-ayodele/topiclm-experiments/internal/entity"
	"github.com/joseph-ayodele/topiclm-experiments/internal/experiment"
	"github.com/joseph-ayodele/topiclm-experiments/internal/repository"
)

// BatchOptions configures a batch run.
type BatchOptions struct {
	Workers    int
	JobTimeout time.Duration
}

// Summary is the result of one batch.
type Summary struct {
	RunID       uuid.UUID
	Experiment  string
	Outcomes    []async.Outcome
	Succeeded   int
	TrainFailed int
	Failed      int
	Duration    time.Duration
}

// Batch enumerates an experiment and runs every job on a bounded pool.
type Batch struct {
	logger *slog.Logger
	runner async.JobRunner
	runs   repository.RunRepository // optional
	opts   BatchOptions
}

func NewBatch(logger *slog.Logger, runner async.JobRunner, runs repository.RunRepository, opts BatchOptions) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Batch{logger: logger, runner: runner, runs: runs, opts: opts}
}

// StatusOf classifies a job error for the run store.
func StatusOf(err error) constants.JobStatus {
	switch {
	case err == nil:
		return constants.JobStatusSucceeded
	case errors.Is(err, common.ErrTrainingFailed):
		return constants.JobStatusTrainFailed
	default:
		return constants.JobStatusFailed
	}
}

// Run executes def. Individual job failures are reported in the summary,
// not returned; only enumeration and store errors abort the batch.
func (b *Batch) Run(ctx context.Context, def experiment.Definition) (*Summary, error) {
	start := time.Now()
	jobs, err := experiment.Enumerate(def)
	if err != nil {
		return nil, err
	}

	run := &entity.Run{
		ID:         uuid.New(),
		Experiment: def.OutputName(),
		StartedAt:  start,
		Jobs:       len(jobs),
		Workers:    b.opts.Workers,
	}
	if b.runs != nil {
		if err := b.runs.StartRun(ctx, run); err != nil {
			return nil, err
		}
	}
	ctx = common.WithRunID(ctx, run.ID.String())
	logger := common.LoggerFromContext(ctx, b.logger)
	logger.Info("batch started", "experiment", run.Experiment, "jobs", len(jobs), "workers", b.opts.Workers)

	q := async.NewJobQueue(b.runner, logger,
		async.WithWorkers(b.opts.Workers),
		async.WithQueueSize(len(jobs)),
		async.WithJobTimeout(b.opts.JobTimeout),
		async.WithOnDone(func(out async.Outcome) { b.record(ctx, logger, run.ID, out) }),
	)
	for _, job := range jobs {
		if err := q.Enqueue(ctx, job); err != nil {
			logger.Error("enqueue failed", "model_id", job.ModelID(), "error", err)
		}
	}
	outcomes := q.Wait()

	sum := &Summary{
		RunID:      run.ID,
		Experiment: run.Experiment,
		Outcomes:   outcomes,
		Duration:   time.Since(start),
	}
	for _, out := range outcomes {
		switch StatusOf(out.Err) {
		case constants.JobStatusSucceeded:
			sum.Succeeded++
		case constants.JobStatusTrainFailed:
			sum.TrainFailed++
		default:
			sum.Failed++
		}
	}

	if b.runs != nil {
		// record the finish even if the batch was interrupted
		if err := b.runs.FinishRun(context.WithoutCancel(ctx), run.ID, sum.Succeeded, sum.TrainFailed+sum.Failed); err != nil {
			return sum, err
		}
	}
	logger.Info("batch finished",
		"experiment", run.Experiment,
		"succeeded", sum.Succeeded,
		"train_failed", sum.TrainFailed,
		"failed", sum.Failed,
		"duration_ms", sum.Duration.Milliseconds(),
	)
	return sum, nil
}

func (b *Batch) record(ctx context.Context, logger *slog.Logger, runID uuid.UUID, out async.Outcome) {
	if b.runs == nil {
		return
	}
	row := &entity.JobOutcome{
		RunID:   runID,
		Seq:     out.Job.Seq,
		ModelID: out.Job.ModelID(),
		Corpus:  out.Job.Corpus,
		Variant: out.Job.Variant,
		Params:  out.Job.Params,
		Status:  string(StatusOf(out.Err)),
	}
	if out.Err != nil {
		msg := out.Err.Error()
		row.Error = &msg
	}
	if out.Record != nil {
		row.Ppls = out.Record.Ppls
		row.Times = out.Record.Times
		avePpl, aveTime := out.Record.AvePpl, out.Record.AveTime
		row.AvePpl = &avePpl
		row.AveTime = &aveTime
	}
	if err := b.runs.RecordOutcome(context.WithoutCancel(ctx), row); err != nil {
		logger.Error("failed to record job outcome", "model_id", row.ModelID, "error", err)
	}
}
