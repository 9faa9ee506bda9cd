package experiment

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/topiclm-experiments/constants"
	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
)

// Params maps a flag name to its rendered value.
type Params map[string]string

// Clone returns an independent copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys returns the flag names in lexicographic order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Job is one (corpus, variant, parameter set) combination of an experiment.
type Job struct {
	Seq        int
	Experiment string
	Corpus     string
	Variant    string
	Params     Params
}

// ModelID returns the job's model identifier.
func (j Job) ModelID() string {
	return ModelID(j.Corpus, j.Variant, j.Params)
}

// ModelID joins corpus, variant and the sorted k=v assignments with dots.
// The result doubles as the checkpoint directory of the external binaries.
func ModelID(corpus, variant string, params Params) string {
	parts := make([]string, 0, len(params)+2)
	parts = append(parts, corpus, variant)
	for _, k := range params.Keys() {
		parts = append(parts, k+"="+params[k])
	}
	return strings.Join(parts, ".")
}

// Sampling is the checkpoint schedule encoded in b, n and i.
type Sampling struct {
	Burnin   int
	Samples  int
	Interval int
}

// Iterations lists the checkpoint iterations evaluated for this schedule.
func (s Sampling) Iterations() []int {
	out := make([]int, s.Samples)
	for k := range out {
		out[k] = s.Burnin + k*s.Interval
	}
	return out
}

// Sampling parses b, n and i. Every sampling key must be an integer and at
// least one sample is required.
func (j Job) Sampling() (Sampling, error) {
	v := common.NewValidator()
	for _, key := range constants.SamplingParams {
		v.Field(key, j.Params[key], common.Required, common.IntegerString)
	}
	if v.HasErrors() {
		return Sampling{}, v.Error()
	}
	b, _ := strconv.Atoi(j.Params[constants.ParamBurnin])
	n, _ := strconv.Atoi(j.Params[constants.ParamSamples])
	i, _ := strconv.Atoi(j.Params[constants.ParamInterval])
	if n < 1 {
		return Sampling{}, fmt.Errorf("%w: sample count %q must be at least 1", common.ErrInvalidInput, j.Params[constants.ParamSamples])
	}
	return Sampling{Burnin: b, Samples: n, Interval: i}, nil
}
