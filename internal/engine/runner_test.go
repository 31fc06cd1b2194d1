package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaforge/qaforge/internal/agent"
	"github.com/qaforge/qaforge/internal/scenario"
)

type fakeResponse struct {
	result agent.Result
	err    error
	files  []string // dropped into the scenario working dir before returning
}

// fakeExecutor scripts one response per scenario id (the working dir's
// base name) and records invocation order.
type fakeExecutor struct {
	responses map[string]fakeResponse
	calls     []string
	onExecute func(id string)
}

func (f *fakeExecutor) Execute(ctx context.Context, prompt, workingDir string, timeout time.Duration) (agent.Result, error) {
	id := filepath.Base(workingDir)
	f.calls = append(f.calls, id)
	if f.onExecute != nil {
		f.onExecute(id)
	}
	resp := f.responses[id]
	for _, name := range resp.files {
		if err := os.WriteFile(filepath.Join(workingDir, name), []byte("x"), 0o600); err != nil {
			return agent.Result{}, err
		}
	}
	return resp.result, resp.err
}

type fakePrereq struct {
	err   error
	calls int
}

func (f *fakePrereq) Validate(ctx context.Context) error {
	f.calls++
	return f.err
}

func makeScenario(id string, stepCount int) scenario.Scenario {
	steps := make([]scenario.Step, stepCount)
	for i := range steps {
		steps[i] = scenario.Step{Action: "verify", Target: "item", Verification: "shown"}
	}
	return scenario.Scenario{
		ID:                id,
		Title:             "scenario " + id,
		Priority:          scenario.PriorityMedium,
		Category:          scenario.CategoryFunctionality,
		Steps:             steps,
		AutomationLevel:   scenario.AutomationFull,
		EstimatedDuration: 1,
	}
}

func newTestRunner(exec Executor, prereq PrereqValidator) *Runner {
	return NewRunner(exec, prereq, Options{Timeout: time.Minute, Pause: 0})
}

func TestRunner_EmptyScenarioList(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "out")
	exec := &fakeExecutor{}
	pre := &fakePrereq{}

	results, err := newTestRunner(exec, pre).Run(context.Background(), nil, outputDir)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, exec.calls)
	assert.Zero(t, pre.calls)

	// Only the top-level output directory gets created.
	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunner_PrerequisiteFailureAborts(t *testing.T) {
	exec := &fakeExecutor{}
	pre := &fakePrereq{err: assert.AnError}

	results, err := newTestRunner(exec, pre).Run(context.Background(),
		[]scenario.Scenario{makeScenario("s1", 2)}, t.TempDir())
	require.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, results)
	assert.Empty(t, exec.calls, "no scenario may execute when prerequisites fail")
}

func TestRunner_PassingScenario(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]fakeResponse{
		"s1": {result: agent.Result{ExitCode: 0, Stdout: "All steps completed as expected."}},
	}}
	pre := &fakePrereq{}

	results, err := newTestRunner(exec, pre).Run(context.Background(),
		[]scenario.Scenario{makeScenario("s1", 3)}, t.TempDir())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, pre.calls)

	res := results[0]
	assert.Equal(t, "s1", res.ScenarioID)
	assert.Equal(t, StatusPassed, res.Status)
	require.Len(t, res.Steps, 3)
	for i, st := range res.Steps {
		assert.Equal(t, i, st.StepIndex)
		assert.Equal(t, StepPassed, st.Status)
	}
	assert.False(t, res.Timestamp.IsZero())
	assert.GreaterOrEqual(t, res.ExecutionTime, 0.0)
}

func TestRunner_FailureDoesNotAbortRun(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]fakeResponse{
		"s1": {
			result: agent.Result{ExitCode: 1, Stderr: "permission denied"},
			err:    &agent.NonZeroExitError{Code: 1, Stderr: "permission denied"},
		},
		"s2": {result: agent.Result{Stdout: "everything checks out"}},
	}}
	pre := &fakePrereq{}

	scenarios := []scenario.Scenario{makeScenario("s1", 2), makeScenario("s2", 1)}
	results, err := newTestRunner(exec, pre).Run(context.Background(), scenarios, t.TempDir())
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, []string{"s1", "s2"}, exec.calls)
	assert.Equal(t, "s1", results[0].ScenarioID)
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Contains(t, results[0].Notes, "permission denied")
	require.Len(t, results[0].Steps, 2)
	assert.Equal(t, StepFailed, results[0].Steps[0].Status)

	assert.Equal(t, "s2", results[1].ScenarioID)
	assert.Equal(t, StatusPassed, results[1].Status)
}

func TestRunner_TimeoutRecordedAsFailure(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]fakeResponse{
		"slow": {
			result: agent.Result{ExitCode: -1, Stdout: "partial output"},
			err:    &agent.TimeoutError{Budget: time.Minute},
		},
	}}
	pre := &fakePrereq{}
	outputDir := t.TempDir()

	results, err := newTestRunner(exec, pre).Run(context.Background(),
		[]scenario.Scenario{makeScenario("slow", 2)}, outputDir)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, StatusFailed, res.Status)
	assert.Contains(t, res.Notes, "timed out")
	require.Len(t, res.Steps, 2)

	// Partial stdout still persisted for diagnosis.
	transcript, err := os.ReadFile(filepath.Join(outputDir, "interpreter-results", "slow.txt"))
	require.NoError(t, err)
	assert.Equal(t, "partial output", string(transcript))
}

func TestRunner_WarningTranscript(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]fakeResponse{
		"w1": {result: agent.Result{Stdout: "done, but a warning was logged about latency"}},
	}}
	results, err := newTestRunner(exec, &fakePrereq{}).Run(context.Background(),
		[]scenario.Scenario{makeScenario("w1", 1)}, t.TempDir())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, StatusWarning, results[0].Status)
}

func TestRunner_FilesystemLayout(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]fakeResponse{
		"s1": {result: agent.Result{Stdout: "transcript body", Stderr: "diag line"}},
	}}
	outputDir := t.TempDir()

	_, err := newTestRunner(exec, &fakePrereq{}).Run(context.Background(),
		[]scenario.Scenario{makeScenario("s1", 1)}, outputDir)
	require.NoError(t, err)

	prompt, err := os.ReadFile(filepath.Join(outputDir, "interpreter-prompts", "s1.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(prompt), "scenario s1")

	transcript, err := os.ReadFile(filepath.Join(outputDir, "interpreter-results", "s1.txt"))
	require.NoError(t, err)
	assert.Equal(t, "transcript body", string(transcript))

	stderrLog, err := os.ReadFile(filepath.Join(outputDir, "s1", "agent-stderr.log"))
	require.NoError(t, err)
	assert.Equal(t, "diag line", string(stderrLog))
}

func TestRunner_CollectsArtifacts(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]fakeResponse{
		"s1": {
			result: agent.Result{Stdout: "saved a screenshot"},
			files:  []string{"final-state.png", "trace.log"},
		},
	}}

	results, err := newTestRunner(exec, &fakePrereq{}).Run(context.Background(),
		[]scenario.Scenario{makeScenario("s1", 1)}, t.TempDir())
	require.NoError(t, err)
	require.Len(t, results, 1)

	types := map[ArtifactType]int{}
	for _, a := range results[0].Artifacts {
		types[a.Type]++
	}
	assert.Equal(t, 1, types[ArtifactScreenshot])
	assert.Equal(t, 1, types[ArtifactLog])
}

func TestRunner_CancellationStopsNewScenarios(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	exec := &fakeExecutor{
		responses: map[string]fakeResponse{
			"s1": {result: agent.Result{Stdout: "ok"}},
			"s2": {result: agent.Result{Stdout: "ok"}},
		},
		onExecute: func(id string) {
			if id == "s1" {
				cancel()
			}
		},
	}

	scenarios := []scenario.Scenario{makeScenario("s1", 1), makeScenario("s2", 1)}
	results, err := newTestRunner(exec, &fakePrereq{}).Run(ctx, scenarios, t.TempDir())
	require.NoError(t, err)

	// The in-flight scenario's result is kept; no new scenario starts.
	require.Len(t, results, 1)
	assert.Equal(t, "s1", results[0].ScenarioID)
	assert.Equal(t, []string{"s1"}, exec.calls)
}

func TestRunner_PersistsRunSummary(t *testing.T) {
	exec := &fakeExecutor{responses: map[string]fakeResponse{
		"s1": {err: &agent.NonZeroExitError{Code: 1, Stderr: "boom"}},
		"s2": {result: agent.Result{Stdout: "ok"}},
	}}
	outputDir := t.TempDir()

	_, err := newTestRunner(exec, &fakePrereq{}).Run(context.Background(),
		[]scenario.Scenario{makeScenario("s1", 1), makeScenario("s2", 1)}, outputDir)
	require.NoError(t, err)

	sum, err := NewStateStore(outputDir).ReadRunSummary()
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, "fail", sum.Status)
	assert.Equal(t, []string{"s1", "s2"}, sum.Scenarios)
	assert.Equal(t, []string{"s1"}, sum.Failed)
	assert.Equal(t, 1, sum.Passed)

	// Per-scenario results are persisted too.
	res, err := NewStateStore(outputDir).ReadScenarioResult("s2")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, StatusPassed, res.Status)
}
