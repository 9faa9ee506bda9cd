package entity

import (
	"time"

	"github.com/google/uuid"
)

// Run represents one invocation of an experiment.
type Run struct {
	ID         uuid.UUID  `json:"id"`
	Experiment string     `json:"experiment"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Jobs       int        `json:"jobs"`
	Workers    int        `json:"workers"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
}
