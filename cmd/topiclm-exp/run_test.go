package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
	"github.com/joseph-ayodele/topiclm-experiments/internal/core/proc"
	"github.com/joseph-ayodele/topiclm-experiments/internal/experiment"
	"github.com/joseph-ayodele/topiclm-experiments/internal/results"
)

type recordingRunner struct {
	calls []proc.Request
}

func (r *recordingRunner) Run(_ context.Context, req proc.Request, _ *slog.Logger) error {
	r.calls = append(r.calls, req)
	return errors.New("exit status 1")
}

func flagValue(args []string, name string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == name {
			return args[i+1]
		}
	}
	return ""
}

func TestProcessorResolvesRelativePaths(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	cfg := common.LoadConfig()
	cfg.Binaries.BuildDir = "build/src"
	cfg.Binaries.LibraryPathVar = "LD_LIBRARY_PATH"
	cfg.Data.Root = "data"
	cfg.Batch.WorkDir = "runs"

	runner := &recordingRunner{}
	log := results.NewLog(t.TempDir(), "emnlp.paths", nil)
	p, err := newProcessor(cfg, runner, log, slog.Default())
	require.NoError(t, err)

	job := experiment.Job{
		Corpus:  "brown",
		Variant: "HPYTM",
		Params:  experiment.Params{"b": "500", "n": "1", "i": "1", "K": "10", "O": "3"},
	}
	_, err = p.RunJob(context.Background(), job)
	assert.ErrorIs(t, err, common.ErrTrainingFailed)

	require.Len(t, runner.calls, 1)
	req := runner.calls[0]
	assert.Equal(t, "runs", req.Dir)
	assert.Equal(t, filepath.Join(cwd, "build/src/hpy_lda_train"), req.Path)
	assert.Equal(t, filepath.Join(cwd, "data/brown/brown_new.train"), flagValue(req.Args, "-f"))
	assert.Equal(t, job.ModelID(), flagValue(req.Args, "-m"))

	libPath := filepath.Join(cwd, "build/src")
	if old := os.Getenv("LD_LIBRARY_PATH"); old != "" {
		libPath += ":" + old
	}
	assert.Contains(t, req.Env, "LD_LIBRARY_PATH="+libPath)
}
