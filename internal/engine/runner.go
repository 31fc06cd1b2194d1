// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/qaforge/qaforge/internal/agent"
	"github.com/qaforge/qaforge/internal/scenario"
)

const (
	promptsDir = "interpreter-prompts"
	resultsDir = "interpreter-results"

	// Fixed name for the agent's captured stderr, written into the
	// scenario directory so it survives a dead agent and shows up as
	// a log artifact.
	stderrLogName = "agent-stderr.log"
)

// Executor runs one automation-agent invocation. Satisfied by
// *agent.Executor; faked in tests.
type Executor interface {
	Execute(ctx context.Context, prompt, workingDir string, timeout time.Duration) (agent.Result, error)
}

// PrereqValidator gates a run on environmental prerequisites.
type PrereqValidator interface {
	Validate(ctx context.Context) error
}

// Options carries the engine's configuration surface. Zero values get
// sensible defaults from NewRunner.
type Options struct {
	Timeout           time.Duration // per-scenario budget
	Pause             time.Duration // settle time between scenarios
	SetupInstructions string
	Logger            *slog.Logger
}

// Runner drives scenarios through the agent one at a time and owns the
// ordered result list for the run.
type Runner struct {
	exec   Executor
	prereq PrereqValidator
	parser *Parser
	opts   Options
	log    *slog.Logger
}

// NewRunner composes a Runner from its collaborators.
func NewRunner(exec Executor, prereq PrereqValidator, opts Options) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}
	if opts.Pause < 0 {
		opts.Pause = 0
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		exec:   exec,
		prereq: prereq,
		parser: NewParser(),
		opts:   opts,
		log:    log,
	}
}

// Run executes scenarios strictly in input order and returns one result
// per scenario, in the same order. Scenario-level failures (spawn
// error, timeout, non-zero exit) are absorbed into failed results; only
// a prerequisite failure aborts the run with an error.
//
// Cancelling ctx stops the runner from issuing new scenarios; results
// collected so far are still returned.
func (r *Runner) Run(ctx context.Context, scenarios []scenario.Scenario, outputDir string) ([]ScenarioResult, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	results := make([]ScenarioResult, 0, len(scenarios))
	if len(scenarios) == 0 {
		return results, nil
	}

	if err := r.prereq.Validate(ctx); err != nil {
		return nil, err
	}

	for _, dir := range []string{promptsDir, resultsDir} {
		if err := os.MkdirAll(filepath.Join(outputDir, dir), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	store := NewStateStore(outputDir)
	startedAt := time.Now().UTC()

	for i, sc := range scenarios {
		if ctx.Err() != nil {
			r.log.Warn("run cancelled, skipping remaining scenarios",
				"completed", len(results), "remaining", len(scenarios)-i)
			break
		}

		r.log.Info("executing scenario", "id", sc.ID, "title", sc.Title, "priority", sc.Priority)
		res := r.runOne(ctx, sc, outputDir)

		if err := store.WriteScenarioResult(res); err != nil {
			r.log.Warn("persisting scenario result failed", "id", sc.ID, "err", err)
		}
		results = append(results, res)
		r.log.Info("scenario finished", "id", sc.ID, "status", res.Status)

		// Let the agent's environment settle before the next run.
		if i < len(scenarios)-1 {
			r.settle(ctx)
		}
	}

	if err := store.WriteRunSummary(summarize(results, startedAt)); err != nil {
		r.log.Warn("persisting run summary failed", "err", err)
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, sc scenario.Scenario, outputDir string) ScenarioResult {
	start := time.Now()
	res := ScenarioResult{
		ScenarioID: sc.ID,
		Status:     StatusPassed,
		Steps:      []StepResult{},
		Artifacts:  []Artifact{},
	}

	workDir := filepath.Join(outputDir, sc.ID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		res.Status = StatusFailed
		res.Notes = fmt.Sprintf("creating scenario dir: %v", err)
		res.Steps = abortedSteps(sc, "scenario directory could not be created")
		return r.finalize(res, start)
	}

	prompt := BuildPrompt(sc, r.opts.SetupInstructions)
	promptPath := filepath.Join(outputDir, promptsDir, sc.ID+".txt")
	if err := os.WriteFile(promptPath, []byte(prompt), 0o644); err != nil {
		r.log.Warn("persisting prompt failed", "id", sc.ID, "err", err)
	}

	execRes, execErr := r.exec.Execute(ctx, prompt, workDir, r.opts.Timeout)

	// Persist raw output before deriving anything from it, so a dead
	// agent still leaves diagnosable traces.
	transcriptPath := filepath.Join(outputDir, resultsDir, sc.ID+".txt")
	if err := os.WriteFile(transcriptPath, []byte(execRes.Stdout), 0o644); err != nil {
		r.log.Warn("persisting transcript failed", "id", sc.ID, "err", err)
	}
	if execRes.Stderr != "" {
		stderrPath := filepath.Join(workDir, stderrLogName)
		if err := os.WriteFile(stderrPath, []byte(execRes.Stderr), 0o644); err != nil {
			r.log.Warn("persisting agent stderr failed", "id", sc.ID, "err", err)
		}
	}

	switch {
	case execErr == nil:
		outcome := r.parser.Parse(execRes.Stdout, sc)
		res.Steps = outcome.Steps
		res.Status = outcome.Status
		res.Notes = outcome.Notes
	default:
		res.Status = StatusFailed
		res.Notes = failureNote(execErr)
		res.Steps = abortedSteps(sc, res.Notes)
	}

	artifacts, err := CollectArtifacts(workDir)
	if err != nil {
		// Non-fatal: the scenario keeps its status, just without artifacts.
		r.log.Warn("artifact collection failed", "id", sc.ID, "err", err)
	} else if artifacts != nil {
		res.Artifacts = artifacts
	}

	return r.finalize(res, start)
}

func (r *Runner) finalize(res ScenarioResult, start time.Time) ScenarioResult {
	// A failed step can never leave the scenario passed, whatever the
	// transcript said.
	switch combineStatus(res.Steps) {
	case StatusFailed:
		res.Status = StatusFailed
	case StatusWarning:
		if res.Status == StatusPassed {
			res.Status = StatusWarning
		}
	}
	res.ExecutionTime = time.Since(start).Minutes()
	res.Timestamp = time.Now().UTC()
	return res
}

// settle sleeps for the configured inter-scenario pause, waking early
// if the run is cancelled.
func (r *Runner) settle(ctx context.Context) {
	if r.opts.Pause <= 0 {
		return
	}
	t := time.NewTimer(r.opts.Pause)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// abortedSteps keeps the step-count invariant intact when a scenario
// dies before its steps can be assessed.
func abortedSteps(sc scenario.Scenario, reason string) []StepResult {
	steps := make([]StepResult, len(sc.Steps))
	for i := range sc.Steps {
		steps[i] = StepResult{
			StepIndex:    i,
			Status:       StepFailed,
			ActualResult: "not verified: " + reason,
		}
	}
	return steps
}

func failureNote(execErr error) string {
	var (
		timeoutErr *agent.TimeoutError
		spawnErr   *agent.SpawnError
		exitErr    *agent.NonZeroExitError
	)
	switch {
	case errors.As(execErr, &timeoutErr):
		return fmt.Sprintf("scenario timed out: %v", timeoutErr)
	case errors.As(execErr, &exitErr):
		return fmt.Sprintf("agent failed: %v", exitErr)
	case errors.As(execErr, &spawnErr):
		return fmt.Sprintf("agent could not be started: %v", spawnErr)
	default:
		return fmt.Sprintf("agent execution failed: %v", execErr)
	}
}

func summarize(results []ScenarioResult, startedAt time.Time) RunSummary {
	sum := RunSummary{
		RunID:      uuid.NewString(),
		Status:     "pass",
		Scenarios:  make([]string, 0, len(results)),
		Failed:     []string{},
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
	}
	for _, res := range results {
		sum.Scenarios = append(sum.Scenarios, res.ScenarioID)
		switch res.Status {
		case StatusFailed:
			sum.Failed = append(sum.Failed, res.ScenarioID)
		case StatusWarning:
			sum.Warnings++
		case StatusPassed:
			sum.Passed++
		}
	}
	if len(sum.Failed) > 0 {
		sum.Status = "fail"
	}
	return sum
}
