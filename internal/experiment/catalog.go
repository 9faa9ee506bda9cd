package experiment

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/joseph-ayodele/topiclm-experiments/constants"
	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
)

func ints(vals ...int) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.Itoa(v)
	}
	return out
}

var (
	allCorpora = []string{"brown", "nips", "bnc"}
	finalists  = []string{string(constants.DHPYTM), string(constants.CHPYTM)}
)

// builtin holds the named experiments. An O value of -1 requests the
// unbounded-order model.
var builtin = map[string]Definition{
	"table_based_effect": {
		Corpora:  allCorpora,
		Variants: []string{string(constants.HPYTM)},
		Grid:     Grid{"b": ints(2000), "n": ints(1), "i": ints(1), "e": ints(-1, 0), "K": ints(50), "O": ints(3, 4)},
	},
	"hpytm_token": {
		Corpora:  allCorpora,
		Variants: []string{string(constants.HPYTM)},
		Grid:     Grid{"b": ints(500), "n": ints(10), "i": ints(10), "K": ints(10, 50, 100), "O": ints(3), "e": ints(0)},
	},
	"hpytm": {
		Corpora:  allCorpora,
		Variants: []string{string(constants.HPYTM)},
		Grid:     Grid{"b": ints(500), "n": ints(10), "i": ints(10), "e": ints(-1), "K": ints(10, 50, 100), "O": ints(3)},
	},
	"dhpytm": {
		Corpora:  allCorpora,
		Variants: []string{string(constants.DHPYTM)},
		Grid:     Grid{"b": ints(500), "n": ints(10), "i": ints(10), "e": ints(-1), "K": ints(10, 50, 100), "O": ints(3)},
	},
	"chpytm": {
		Corpora:  allCorpora,
		Variants: []string{string(constants.CHPYTM)},
		Grid:     Grid{"b": ints(500), "n": ints(10), "i": ints(10), "e": ints(-1), "K": ints(10, 50, 100), "O": ints(3)},
	},
	"rescaling": {
		Corpora:  allCorpora,
		Variants: []string{string(constants.Rescaling)},
		Grid:     Grid{"b": ints(1000), "n": ints(10), "i": ints(10), "K": ints(10, 50, 100), "O": ints(3)},
	},
	"bnc_final": {
		Corpora:  []string{"bnc"},
		Variants: finalists,
		Grid:     Grid{"b": ints(400), "n": ints(10), "i": ints(10), "K": ints(100), "O": ints(4, -1)},
	},
	"rescaling_final": {
		Corpora:  []string{"nips", "bnc"},
		Variants: []string{string(constants.Rescaling)},
		Grid:     Grid{"b": ints(1000), "n": ints(10), "i": ints(10), "K": ints(100), "O": ints(4)},
	},
	"nips_final": {
		Corpora:  []string{"nips"},
		Variants: finalists,
		Grid:     Grid{"b": ints(400), "n": ints(10), "i": ints(10), "K": ints(100), "O": ints(4, -1)},
	},
	"bnc_light_O3": {
		Corpora:  []string{"bnc"},
		Variants: []string{string(constants.HPYTM), string(constants.DHPYTM), string(constants.CHPYTM)},
		Grid:     Grid{"b": ints(400), "n": ints(20), "i": ints(10), "K": ints(50, 100), "O": ints(3), "V": ints(2)},
	},
	"hpytm_final": {
		Corpora:  []string{"nips", "bnc"},
		Variants: []string{string(constants.HPYTM)},
		Grid:     Grid{"b": ints(400), "n": ints(10), "i": ints(10), "K": ints(100), "O": ints(4, -1), "V": ints(2)},
	},
	"hpytm_token_final": {
		Corpora:  []string{"nips", "bnc"},
		Variants: []string{string(constants.HPYTM)},
		Grid:     Grid{"b": ints(500), "n": ints(10), "i": ints(10), "K": ints(100), "O": ints(4, -1), "e": ints(0)},
	},
	"hpylm": {
		Corpora:  allCorpora,
		Variants: []string{string(constants.HPYTM)},
		Grid:     Grid{"b": ints(100), "n": ints(10), "i": ints(10), "K": ints(1), "O": ints(3, 4, -1), "e": ints(0)},
	},
}

// Catalog resolves experiment names against file definitions first, then
// the built-in set.
type Catalog struct {
	extra map[string]Definition
}

// NewCatalog builds a catalog; defs shadow built-ins of the same name.
func NewCatalog(defs ...Definition) *Catalog {
	c := &Catalog{extra: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		c.extra[d.Name] = d
	}
	return c
}

// Lookup returns the named definition or ErrUnknownExperiment.
func (c *Catalog) Lookup(name string) (Definition, error) {
	if d, ok := c.extra[name]; ok {
		return d, nil
	}
	if d, ok := builtin[name]; ok {
		d.Name = name
		d.Output = constants.ExperimentPrefix + name
		return d, nil
	}
	return Definition{}, fmt.Errorf("%w: %q (known: %v)", common.ErrUnknownExperiment, name, c.Names())
}

// Names lists every resolvable experiment name in sorted order.
func (c *Catalog) Names() []string {
	seen := make(map[string]struct{}, len(builtin)+len(c.extra))
	for name := range builtin {
		seen[name] = struct{}{}
	}
	for name := range c.extra {
		seen[name] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
