package corpus

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
)

// Paths are the preprocessed train/test files for one corpus.
type Paths struct {
	Train string
	Test  string
}

// files is relative to the data root.
var files = map[string]Paths{
	"brown": {Train: "brown/brown_new.train", Test: "brown/brown_new.test"},
	"nips":  {Train: "nipstxt/nips_new.train", Test: "nipstxt/nips_new.test"},
	"bnc":   {Train: "BNC/processed/bnc_500.train", Test: "BNC/processed/bnc_500.test"},
}

// Table resolves corpus names under a data root.
type Table struct {
	root string
}

func NewTable(root string) *Table {
	return &Table{root: root}
}

// Lookup returns the train/test paths for name. Unknown names are rejected
// rather than falling back to a default corpus.
func (t *Table) Lookup(name string) (Paths, error) {
	p, ok := files[name]
	if !ok {
		return Paths{}, fmt.Errorf("%w: %q (known: %v)", common.ErrUnknownCorpus, name, Names())
	}
	return Paths{
		Train: filepath.Join(t.root, p.Train),
		Test:  filepath.Join(t.root, p.Test),
	}, nil
}

// Names lists the known corpora in sorted order.
func Names() []string {
	out := make([]string, 0, len(files))
	for name := range files {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
