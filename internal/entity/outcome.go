package entity

import (
	"time"

	"github.com/google/uuid"
)

// JobOutcome represents the result of one job for data transfer between layers.
type JobOutcome struct {
	RunID     uuid.UUID         `json:"run_id"`
	Seq       int               `json:"seq"`
	ModelID   string            `json:"model_id"`
	Corpus    string            `json:"corpus"`
	Variant   string            `json:"variant"`
	Params    map[string]string `json:"params"`
	Status    string            `json:"status"`
	Error     *string           `json:"error,omitempty"`
	Ppls      []float64         `json:"ppls"`
	Times     []float64         `json:"times"`
	AvePpl    *float64          `json:"ave_ppl,omitempty"`
	AveTime   *float64          `json:"ave_time,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
