package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
)

func TestEnumerateOrder(t *testing.T) {
	cases := []struct {
		name string
		def  Definition
		ids  []string
	}{
		{
			name: "variants",
			def: Definition{
				Name:     "small",
				Corpora:  []string{"brown"},
				Variants: []string{"HPYTM", "DHPYTM"},
				Grid:     Grid{"x": {"1", "2"}},
			},
			ids: []string{"brown.HPYTM.x=1", "brown.HPYTM.x=2", "brown.DHPYTM.x=1", "brown.DHPYTM.x=2"},
		},
		{
			name: "corpora",
			def: Definition{
				Name:     "small",
				Corpora:  []string{"a", "b"},
				Variants: []string{"v"},
				Grid:     Grid{"x": {"1", "2"}},
			},
			ids: []string{"a.v.x=1", "a.v.x=2", "b.v.x=1", "b.v.x=2"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			jobs, err := Enumerate(tc.def)
			require.NoError(t, err)
			require.Len(t, jobs, 4)

			var ids []string
			for i, j := range jobs {
				assert.Equal(t, i, j.Seq)
				assert.Equal(t, "small", j.Experiment)
				ids = append(ids, j.ModelID())
			}
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func TestEnumerateLastKeyFastest(t *testing.T) {
	jobs, err := Enumerate(Definition{
		Name:     "g",
		Corpora:  []string{"nips"},
		Variants: []string{"HPYTM"},
		Grid:     Grid{"b": {"1", "2"}, "a": {"x", "y"}},
	})
	require.NoError(t, err)
	require.Len(t, jobs, 4)

	assert.Equal(t, Params{"a": "x", "b": "1"}, jobs[0].Params)
	assert.Equal(t, Params{"a": "x", "b": "2"}, jobs[1].Params)
	assert.Equal(t, Params{"a": "y", "b": "1"}, jobs[2].Params)
	assert.Equal(t, Params{"a": "y", "b": "2"}, jobs[3].Params)
}

func TestEnumerateEdgeGrids(t *testing.T) {
	base := Definition{Name: "e", Corpora: []string{"brown"}, Variants: []string{"HPYTM"}}

	jobs, err := Enumerate(base)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "brown.HPYTM", jobs[0].ModelID())

	base.Grid = Grid{"K": {}}
	jobs, err = Enumerate(base)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	// duplicate values are kept
	base.Grid = Grid{"K": {"1", "1"}}
	jobs, err = Enumerate(base)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestEnumerateParamsIndependent(t *testing.T) {
	jobs, err := Enumerate(Definition{
		Name:     "i",
		Corpora:  []string{"brown", "bnc"},
		Variants: []string{"HPYTM"},
		Grid:     Grid{"K": {"10"}},
	})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	jobs[0].Params["K"] = "99"
	assert.Equal(t, "10", jobs[1].Params["K"])
}

func TestEnumerateRequiresCorpora(t *testing.T) {
	_, err := Enumerate(Definition{Name: "x", Variants: []string{"HPYTM"}})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestBuiltinExperimentsHaveUniqueModelIDs(t *testing.T) {
	c := NewCatalog()
	for _, name := range c.Names() {
		def, err := c.Lookup(name)
		require.NoError(t, err, name)

		jobs, err := Enumerate(def)
		require.NoError(t, err, name)
		require.NotEmpty(t, jobs, name)

		seen := map[string]bool{}
		for _, j := range jobs {
			assert.False(t, seen[j.ModelID()], "%s: duplicate %s", name, j.ModelID())
			seen[j.ModelID()] = true

			_, err := j.Sampling()
			assert.NoError(t, err, j.ModelID())
		}
	}
}
