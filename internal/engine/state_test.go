package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateStore_ScenarioResultRoundTrip(t *testing.T) {
	store := NewStateStore(t.TempDir())

	res := ScenarioResult{
		ScenarioID:    "s1",
		Status:        StatusWarning,
		ExecutionTime: 1.5,
		Steps: []StepResult{
			{StepIndex: 0, Status: StepPassed, ActualResult: "executed: navigate /"},
		},
		Artifacts: []Artifact{},
		Notes:     "completed with warnings",
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.WriteScenarioResult(res))

	got, err := store.ReadScenarioResult("s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, res.Status, got.Status)
	assert.Equal(t, res.Notes, got.Notes)
	require.Len(t, got.Steps, 1)
	assert.Equal(t, res.Steps[0].ActualResult, got.Steps[0].ActualResult)
}

func TestStateStore_ReadMissingResult(t *testing.T) {
	store := NewStateStore(t.TempDir())
	got, err := store.ReadScenarioResult("absent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStateStore_RunSummaryRoundTrip(t *testing.T) {
	store := NewStateStore(t.TempDir())

	sum := RunSummary{
		RunID:     "run-1",
		Status:    "fail",
		Scenarios: []string{"s1", "s2"},
		Failed:    []string{"s2"},
		Passed:    1,
	}
	require.NoError(t, store.WriteRunSummary(sum))

	got, err := store.ReadRunSummary()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "fail", got.Status)
	assert.Equal(t, []string{"s1", "s2"}, got.Scenarios)
	assert.Equal(t, []string{"s2"}, got.Failed)
}

func TestStateStore_NoSummaryIsCleanState(t *testing.T) {
	store := NewStateStore(t.TempDir())
	got, err := store.ReadRunSummary()
	require.NoError(t, err)
	assert.Nil(t, got)
}
