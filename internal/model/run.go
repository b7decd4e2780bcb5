package model

import "time"

// RunStatus represents the final state of an enrichment run.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one full execution of the enrichment pipeline: the input
// volumes, how many rows survived normalization, and timing. Runs exist for
// bookkeeping only; the scored collection itself is the pipeline output.
type Run struct {
	ID            string    `json:"id"`
	Status        RunStatus `json:"status"`
	Trees         int       `json:"trees"`
	Neighborhoods int       `json:"neighborhoods"`
	Rents         int       `json:"rents"`
	DroppedRows   int       `json:"dropped_rows"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Error         string    `json:"error,omitempty"`
}
