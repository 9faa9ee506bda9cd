package command

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/topiclm-experiments/constants"
	"github.com/joseph-ayodele/topiclm-experiments/internal/experiment"
)

const (
	hpyTrain       = "hpy_lda_train"
	hpyPredict     = "hpy_lda_predict"
	rescaleTrain   = "unigram_rescaling_train"
	rescalePredict = "unigram_rescaling_predict"
)

// Command is an external invocation: executable plus argument tokens.
type Command struct {
	Path string
	Args []string
}

// String renders the command line for logging.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// PredictOptions are the fixed prediction flags.
type PredictOptions struct {
	Particles int
	Samples   int
}

// Builder resolves executables under a build directory.
type Builder struct {
	buildDir string
}

func NewBuilder(buildDir string) *Builder {
	return &Builder{buildDir: buildDir}
}

func (b *Builder) bin(name string) string {
	return filepath.Join(b.buildDir, name)
}

// TrainFlags returns the full flag set handed to the training binary. The
// caller's params are not modified.
//
// Non-rescaling variants get the g/t selector pair and the stop flag S;
// an order of -1 is rewritten to the finite bound with a nonzero S.
func TrainFlags(variant string, params experiment.Params, trainPath, modelID string) experiment.Params {
	flags := params.Clone()
	flags[constants.ParamFile] = trainPath
	flags[constants.ParamModel] = modelID
	if constants.IsRescaling(variant) {
		return flags
	}

	g, t := selector(variant)
	flags[constants.ParamG] = g
	flags[constants.ParamT] = t

	if o, ok := flags[constants.ParamOrder]; ok && o == constants.UnboundedOrder {
		flags[constants.ParamOrder] = constants.MaxOrder
		flags[constants.ParamStop] = constants.UnboundedStop
	} else {
		// fixed n-gram order, never stop early
		flags[constants.ParamStop] = constants.FixedOrderStop
	}
	return flags
}

// selector maps a topic-model variant to its (g, t) flag pair.
func selector(variant string) (string, string) {
	switch variant {
	case string(constants.HPYTM):
		return "1", "0"
	case string(constants.DHPYTM):
		return "0", "0"
	default:
		return "0", "1"
	}
}

// Train builds the training command. Flags are emitted as -name value pairs
// in lexicographic order of name.
func (b *Builder) Train(variant string, params experiment.Params, trainPath, modelID string) Command {
	name := hpyTrain
	if constants.IsRescaling(variant) {
		name = rescaleTrain
	}
	flags := TrainFlags(variant, params, trainPath, modelID)

	args := make([]string, 0, 2*len(flags))
	for _, k := range flags.Keys() {
		args = append(args, "-"+k, flags[k])
	}
	return Command{Path: b.bin(name), Args: args}
}

// Predict builds the evaluation command for one saved sample.
func (b *Builder) Predict(variant, testPath, modelPath string, opts PredictOptions) Command {
	name := hpyPredict
	if constants.IsRescaling(variant) {
		name = rescalePredict
	}
	return Command{
		Path: b.bin(name),
		Args: []string{
			"-f", testPath,
			"-p", strconv.Itoa(opts.Particles),
			"-s", strconv.Itoa(opts.Samples),
			"-m", modelPath,
		},
	}
}
