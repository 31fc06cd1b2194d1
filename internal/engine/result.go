// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import "time"

// Status is the outcome of a whole scenario.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusWarning Status = "warning"
	StatusSkipped Status = "skipped"
)

// StepStatus is the outcome of a single step. Steps are never skipped;
// an aborted scenario fails its remaining steps instead.
type StepStatus string

const (
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
	StepWarning StepStatus = "warning"
)

// ArtifactType classifies a file byproduct of a scenario run.
type ArtifactType string

const (
	ArtifactScreenshot ArtifactType = "screenshot"
	ArtifactVideo      ArtifactType = "video"
	ArtifactLog        ArtifactType = "log"
	ArtifactDocument   ArtifactType = "document"
)

// Artifact is one collected file, classified by extension only.
// Timestamp is the collection time, not the file's mtime.
type Artifact struct {
	Type        ArtifactType `json:"type"`
	Path        string       `json:"path"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
}

// StepResult is the outcome of one step, identified by its position in
// the owning scenario.
type StepResult struct {
	StepIndex    int        `json:"stepIndex"`
	Status       StepStatus `json:"status"`
	ActualResult string     `json:"actualResult"`
	Artifact     string     `json:"artifact,omitempty"`
	Duration     float64    `json:"duration"` // seconds
}

// ScenarioResult is the full outcome of one scenario. The Steps slice
// always has exactly as many entries as the scenario has steps.
type ScenarioResult struct {
	ScenarioID    string       `json:"scenarioId"`
	Status        Status       `json:"status"`
	ExecutionTime float64      `json:"executionTime"` // minutes, wall clock
	Steps         []StepResult `json:"steps"`
	Artifacts     []Artifact   `json:"artifacts"`
	Notes         string       `json:"notes"`
	Timestamp     time.Time    `json:"timestamp"`
}

// combineStatus rolls step outcomes up into a scenario status:
// any failed step fails the scenario, otherwise any warning step
// downgrades it to warning.
func combineStatus(steps []StepResult) Status {
	status := StatusPassed
	for _, s := range steps {
		switch s.Status {
		case StepFailed:
			return StatusFailed
		case StepWarning:
			status = StatusWarning
		}
	}
	return status
}
