package model

import "time"

// RunStatus tracks the lifecycle of a pipeline run record.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one pipeline-run record in the remodel_runs meta collection.
type Run struct {
	ID         string        `bson:"_id"`
	Status     RunStatus     `bson:"status"`
	StartedAt  time.Time     `bson:"started_at"`
	FinishedAt *time.Time    `bson:"finished_at,omitempty"`
	Stages     []StageResult `bson:"stages"`
}

// StageResult records the outcome of one pipeline stage.
type StageResult struct {
	Name       string `bson:"name"`
	Status     string `bson:"status"`
	Docs       int    `bson:"docs"`
	DurationMS int64  `bson:"duration_ms"`
	Error      string `bson:"error,omitempty"`
}
