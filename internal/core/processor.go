package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/topiclm-experiments/internal/command"
	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
	"github.com/joseph-ayodele/topiclm-experiments/internal/core/proc"
	"github.com/joseph-ayodele/topiclm-experiments/internal/corpus"
	"github.com/joseph-ayodele/topiclm-experiments/internal/experiment"
	"github.com/joseph-ayodele/topiclm-experiments/internal/results"
)

// ProcessorOptions configures where and how the external binaries run.
type ProcessorOptions struct {
	// WorkDir is the working directory of every child; model identifiers
	// and prediction logs are relative to it.
	WorkDir string
	// Env is the full child environment, already carrying the library
	// search path.
	Env     []string
	Predict command.PredictOptions
}

// Processor runs one job end to end: train, predict every saved sample,
// scrape perplexities, append the summary record.
type Processor struct {
	logger  *slog.Logger
	runner  proc.Runner
	builder *command.Builder
	corpora *corpus.Table
	log     *results.Log
	opts    ProcessorOptions
}

func NewProcessor(
	logger *slog.Logger,
	runner proc.Runner,
	builder *command.Builder,
	corpora *corpus.Table,
	log *results.Log,
	opts ProcessorOptions,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = proc.ExecRunner{}
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	if opts.Predict.Particles == 0 {
		opts.Predict.Particles = 10
	}
	if opts.Predict.Samples == 0 {
		opts.Predict.Samples = 10
	}
	return &Processor{
		logger:  logger,
		runner:  runner,
		builder: builder,
		corpora: corpora,
		log:     log,
		opts:    opts,
	}
}

// RunJob executes job and returns its appended record.
//
// A failed training run writes a failure marker and returns an error
// wrapping common.ErrTrainingFailed. Prediction and log parsing failures
// abort the job without a marker.
func (p *Processor) RunJob(ctx context.Context, job experiment.Job) (*results.Record, error) {
	modelID := job.ModelID()
	ctx = common.WithModelID(ctx, modelID)
	logger := common.LoggerFromContext(ctx, p.logger)

	paths, err := p.corpora.Lookup(job.Corpus)
	if err != nil {
		return nil, err
	}
	sampling, err := job.Sampling()
	if err != nil {
		return nil, err
	}

	logger.Info("start", "corpus", job.Corpus, "variant", job.Variant)
	if err := p.train(ctx, logger, job, paths.Train, modelID); err != nil {
		return nil, err
	}

	rec := results.NewRecord(modelID)
	for _, iter := range sampling.Iterations() {
		ppl, elapsed, err := p.predict(ctx, logger, job.Variant, paths.Test, modelID, iter)
		if err != nil {
			return nil, err
		}
		rec.Add(ppl, elapsed.Seconds())
		logger.Debug("sample evaluated", "iteration", iter, "ppl", ppl, "duration_ms", elapsed.Milliseconds())
	}
	rec.Finalize()

	if err := p.log.AppendRecord(rec); err != nil {
		return rec, fmt.Errorf("append record: %w", err)
	}
	logger.Info("end", "ave_ppl", rec.AvePpl, "ave_time", rec.AveTime)
	return rec, nil
}

func (p *Processor) train(ctx context.Context, logger *slog.Logger, job experiment.Job, trainPath, modelID string) error {
	cmd := p.builder.Train(job.Variant, job.Params, trainPath, modelID)
	err := p.runner.Run(ctx, proc.Request{
		Path: cmd.Path,
		Args: cmd.Args,
		Dir:  p.opts.WorkDir,
		Env:  p.opts.Env,
	}, logger)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
		// interrupted, not a model failure
		return ctxErr
	}

	logger.Warn("failed", "error", err)
	if markErr := p.log.AppendFailure(modelID); markErr != nil {
		logger.Error("failed to write failure marker", "error", markErr)
	}
	return fmt.Errorf("%w: %s: %v", common.ErrTrainingFailed, modelID, err)
}

func (p *Processor) predict(ctx context.Context, logger *slog.Logger, variant, testPath, modelID string, iter int) (float64, time.Duration, error) {
	modelPath := filepath.Join(modelID, "model", fmt.Sprintf("%d.out", iter))
	logPath := filepath.Join(p.opts.WorkDir, modelID, fmt.Sprintf("test_ppl.%d.out", iter))

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return 0, 0, err
	}
	f, err := os.Create(logPath)
	if err != nil {
		return 0, 0, err
	}

	cmd := p.builder.Predict(variant, testPath, modelPath, p.opts.Predict)
	start := time.Now()
	runErr := p.runner.Run(ctx, proc.Request{
		Path: cmd.Path,
		Args: cmd.Args,
		Dir:  p.opts.WorkDir,
		Env:  p.opts.Env,
		Out:  f,
	}, logger)
	elapsed := time.Since(start)
	if cerr := f.Close(); cerr != nil && runErr == nil {
		runErr = cerr
	}
	if runErr != nil {
		return 0, elapsed, fmt.Errorf("%w: %s at iteration %d: %v", common.ErrPredictionFailed, modelID, iter, runErr)
	}

	ppl, err := results.ReadPerplexity(logPath)
	if err != nil {
		return 0, elapsed, fmt.Errorf("%s: %w", logPath, err)
	}
	return ppl, elapsed, nil
}
