package experiment

import (
	"sort"

	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
)

// Grid maps a flag name to its candidate values.
type Grid map[string][]string

// Definition describes one experiment: which corpora and variants to cross
// with every combination of the grid.
type Definition struct {
	Name     string
	Output   string // base name of the .json/.failed files
	Corpora  []string
	Variants []string
	Grid     Grid
}

// OutputName returns the results file base name, defaulting to Name.
func (d Definition) OutputName() string {
	if d.Output != "" {
		return d.Output
	}
	return d.Name
}

func (d Definition) validate() error {
	return common.NewValidator().
		Field("name", d.Name, common.Required).
		Field("corpora", d.Corpora, common.Required).
		Field("variants", d.Variants, common.Required).
		Error()
}

// Enumerate produces one Job per element of corpora x variants x grid
// product. Corpora vary slowest, then variants, then the grid with keys in
// sorted order and the last key varying fastest. Duplicates are kept.
func Enumerate(def Definition) ([]Job, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	combos := product(def.Grid)

	jobs := make([]Job, 0, len(def.Corpora)*len(def.Variants)*len(combos))
	for _, c := range def.Corpora {
		for _, v := range def.Variants {
			for _, params := range combos {
				jobs = append(jobs, Job{
					Seq:        len(jobs),
					Experiment: def.OutputName(),
					Corpus:     c,
					Variant:    v,
					Params:     params.Clone(),
				})
			}
		}
	}
	return jobs, nil
}

// product expands the grid into every assignment of one value per key.
// An empty grid yields a single empty assignment; a key with no values
// yields none.
func product(g Grid) []Params {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []Params{{}}
	for _, k := range keys {
		next := make([]Params, 0, len(out)*len(g[k]))
		for _, partial := range out {
			for _, val := range g[k] {
				p := partial.Clone()
				p[k] = val
				next = append(next, p)
			}
		}
		out = next
	}
	return out
}
