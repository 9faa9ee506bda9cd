package constants

// JobStatus is the canonical status for rows in job_outcome.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusSucceeded   JobStatus = "SUCCEEDED"
	JobStatusTrainFailed JobStatus = "TRAIN_FAILED" // failure marker written
	JobStatusFailed      JobStatus = "FAILED"       // prediction or log parse failure
)
