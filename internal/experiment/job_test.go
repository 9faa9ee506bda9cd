package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
)

func TestModelIDSortsKeys(t *testing.T) {
	id := ModelID("nips", "cHPYTM", Params{"O": "-1", "K": "100", "b": "400"})
	assert.Equal(t, "nips.cHPYTM.K=100.O=-1.b=400", id)
}

func TestSamplingIterations(t *testing.T) {
	j := Job{Params: Params{"b": "500", "n": "3", "i": "10"}}

	s, err := j.Sampling()
	require.NoError(t, err)
	assert.Equal(t, []int{500, 510, 520}, s.Iterations())
}

func TestSamplingInvalid(t *testing.T) {
	cases := []Params{
		{"n": "1", "i": "1"},
		{"b": "x", "n": "1", "i": "1"},
		{"b": "1", "n": "0", "i": "1"},
		{"b": "1", "n": "1", "i": "1.5"},
	}
	for _, p := range cases {
		_, err := Job{Params: p}.Sampling()
		assert.ErrorIs(t, err, common.ErrInvalidInput, "%v", p)
	}
}
