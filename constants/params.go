package constants

// Flag names with fixed meaning for the training and prediction binaries.
const (
	ParamBurnin   = "b"
	ParamSamples  = "n"
	ParamInterval = "i"
	ParamOrder    = "O"
	ParamStop     = "S"
	ParamG        = "g"
	ParamT        = "t"
	ParamFile     = "f"
	ParamModel    = "m"
)

// Order value requesting an unbounded context length, and its rewrite.
const (
	UnboundedOrder   = "-1"
	MaxOrder         = "8"
	UnboundedStop    = "4"
	FixedOrderStop   = "0"
	ExperimentPrefix = "emnlp."
)

// SamplingParams must be present in every parameter set.
var SamplingParams = []string{ParamBurnin, ParamSamples, ParamInterval}
