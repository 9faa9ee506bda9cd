package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/topiclm-experiments/constants"
	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
	"github.com/joseph-ayodele/topiclm-experiments/internal/experiment"
	"github.com/joseph-ayodele/topiclm-experiments/internal/repository"
	"github.com/joseph-ayodele/topiclm-experiments/internal/results"
)

type stubJobRunner map[string]error

func (s stubJobRunner) RunJob(_ context.Context, job experiment.Job) (*results.Record, error) {
	if err := s[job.Variant]; err != nil {
		return nil, err
	}
	rec := results.NewRecord(job.ModelID())
	rec.Add(100, 1)
	rec.Finalize()
	return rec, nil
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, constants.JobStatusSucceeded, StatusOf(nil))
	assert.Equal(t, constants.JobStatusTrainFailed, StatusOf(fmt.Errorf("%w: m", common.ErrTrainingFailed)))
	assert.Equal(t, constants.JobStatusFailed, StatusOf(common.ErrMalformedLog))
}

func TestBatchRunRecordsOutcomes(t *testing.T) {
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: repository.InMemoryDSN}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	runs := repository.NewRunRepository(db, nil)

	runner := stubJobRunner{
		"DHPYTM": fmt.Errorf("%w: x", common.ErrTrainingFailed),
		"cHPYTM": errors.New("predict crashed"),
	}
	b := NewBatch(nil, runner, runs, BatchOptions{Workers: 2})

	sum, err := b.Run(ctx, experiment.Definition{
		Name:     "mixed",
		Corpora:  []string{"brown"},
		Variants: []string{"HPYTM", "DHPYTM", "cHPYTM"},
		Grid:     experiment.Grid{"K": {"10", "50"}},
	})
	require.NoError(t, err)
	assert.Len(t, sum.Outcomes, 6)
	assert.Equal(t, 2, sum.Succeeded)
	assert.Equal(t, 2, sum.TrainFailed)
	assert.Equal(t, 2, sum.Failed)

	run, err := runs.GetRun(ctx, sum.RunID)
	require.NoError(t, err)
	assert.Equal(t, "mixed", run.Experiment)
	assert.Equal(t, 6, run.Jobs)
	assert.Equal(t, 2, run.Succeeded)
	assert.Equal(t, 4, run.Failed)
	assert.NotNil(t, run.FinishedAt)

	outs, err := runs.ListOutcomes(ctx, sum.RunID)
	require.NoError(t, err)
	require.Len(t, outs, 6)
	for i, o := range outs {
		assert.Equal(t, i, o.Seq)
	}
	assert.Equal(t, "brown.HPYTM.K=10", outs[0].ModelID)
	assert.Equal(t, string(constants.JobStatusSucceeded), outs[0].Status)
	require.NotNil(t, outs[0].AvePpl)
	assert.InDelta(t, 100.0, *outs[0].AvePpl, 1e-9)
	assert.Equal(t, string(constants.JobStatusTrainFailed), outs[2].Status)
	assert.Nil(t, outs[2].AvePpl)
	require.NotNil(t, outs[4].Error)
	assert.Contains(t, *outs[4].Error, "predict crashed")
}

func TestBatchRunWithoutStore(t *testing.T) {
	b := NewBatch(nil, stubJobRunner{}, nil, BatchOptions{})

	sum, err := b.Run(context.Background(), experiment.Definition{
		Name:     "solo",
		Corpora:  []string{"nips"},
		Variants: []string{"rescaling"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Succeeded)
	assert.Equal(t, "solo", sum.Experiment)
}

func TestBatchRunInvalidDefinition(t *testing.T) {
	b := NewBatch(nil, stubJobRunner{}, nil, BatchOptions{Workers: 1})
	_, err := b.Run(context.Background(), experiment.Definition{Name: "empty"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
