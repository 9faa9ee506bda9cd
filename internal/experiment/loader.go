package experiment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/topiclm-experiments/constants"
	"github.com/joseph-ayodele/topiclm-experiments/internal/common"
)

// FileSpec is the YAML layout of an experiments file:
//
//	experiments:
//	  - name: small_sweep
//	    output: emnlp.small_sweep
//	    corpora: [brown]
//	    variants: [HPYTM, cHPYTM]
//	    params:
//	      b: [500]
//	      n: [10]
//	      i: [10]
//	      K: [10, 50]
//	      O: [3, -1]
type FileSpec struct {
	Experiments []FileExperiment `yaml:"experiments"`
}

// FileExperiment is one entry of an experiments file
type FileExperiment struct {
	Name     string           `yaml:"name"`
	Output   string           `yaml:"output,omitempty"`
	Corpora  []string         `yaml:"corpora"`
	Variants []string         `yaml:"variants"`
	Params   map[string][]any `yaml:"params"`
}

// LoadFile reads experiment definitions from a YAML file.
func LoadFile(path string) ([]Definition, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiments file: %w", err)
	}
	return Parse(b)
}

// Parse decodes experiment definitions from YAML.
func Parse(data []byte) ([]Definition, error) {
	var spec FileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	defs := make([]Definition, 0, len(spec.Experiments))
	seen := make(map[string]struct{}, len(spec.Experiments))
	for idx, e := range spec.Experiments {
		v := common.NewValidator().
			Field(fmt.Sprintf("experiments[%d].name", idx), e.Name, common.Required).
			Field(fmt.Sprintf("experiments[%d].corpora", idx), e.Corpora, common.Required).
			Field(fmt.Sprintf("experiments[%d].variants", idx), e.Variants, common.Required)
		variants := make([]string, len(e.Variants))
		for i, variant := range e.Variants {
			if canon, ok := constants.CanonicalVariant(variant); ok {
				variant = string(canon)
			}
			variants[i] = variant
			v.Field(fmt.Sprintf("experiments[%d].variants", idx), variant, common.OneOf(constants.VariantsAsStringSlice()...))
		}
		if err := v.Error(); err != nil {
			return nil, err
		}
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("%w: experiment %q defined twice", common.ErrInvalidInput, e.Name)
		}
		seen[e.Name] = struct{}{}

		grid := make(Grid, len(e.Params))
		for key, vals := range e.Params {
			rendered := make([]string, len(vals))
			for i, val := range vals {
				rendered[i] = fmt.Sprint(val)
			}
			grid[key] = rendered
		}

		defs = append(defs, Definition{
			Name:     e.Name,
			Output:   e.Output,
			Corpora:  e.Corpora,
			Variants: variants,
			Grid:     grid,
		})
	}
	return defs, nil
}
