package results

// Record summarises one job: per-sample perplexities and prediction times
// with their arithmetic means. Field names match the results file format.
type Record struct {
	Model   string    `json:"model"`
	Ppls    []float64 `json:"ppls"`
	Times   []float64 `json:"times"`
	AvePpl  float64   `json:"ave_ppl"`
	AveTime float64   `json:"ave_time"`
}

// NewRecord starts an empty record for a model identifier.
func NewRecord(model string) *Record {
	return &Record{Model: model, Ppls: []float64{}, Times: []float64{}}
}

// Add appends one sample.
func (r *Record) Add(ppl, seconds float64) {
	r.Ppls = append(r.Ppls, ppl)
	r.Times = append(r.Times, seconds)
}

// Finalize computes the averages. It is a no-op when there are no samples.
func (r *Record) Finalize() {
	r.AvePpl = mean(r.Ppls)
	r.AveTime = mean(r.Times)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
