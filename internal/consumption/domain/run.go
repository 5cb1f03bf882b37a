package domain

import (
	"context"
	"time"
)

// Stage names a pipeline step.
type Stage string

const (
	StageExtract Stage = "extract"
	StageUpload  Stage = "upload"
	StageUpdate  Stage = "update"
	StageProcess Stage = "process"
	StageTrain   Stage = "train"
)

// IsValid reports whether the stage is known.
func (s Stage) IsValid() bool {
	switch s {
	case StageExtract, StageUpload, StageUpdate, StageProcess, StageTrain:
		return true
	}
	return false
}

// Decision is the outcome of the update workflow.
type Decision string

const (
	DecisionPersist Decision = "persist"
	DecisionSkip    Decision = "skip"
)

// Run status values.
const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// Run records one stage invocation.
type Run struct {
	ID         string
	Stage      Stage
	Period     Period
	DatasetKey string
	Decision   Decision
	Status     string
	Records    int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunRecorder stores run records.
type RunRecorder interface {
	RecordRun(ctx context.Context, run Run) error
}
