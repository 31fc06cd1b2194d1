package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qaforge/qaforge/internal/scenario"
	"github.com/qaforge/qaforge/internal/testutil/golden"
)

func TestBuildPrompt(t *testing.T) {
	sc := scenario.Scenario{
		ID:          "login-happy-path",
		Title:       "Login with valid credentials",
		Description: "Covers the standard login flow",
		Steps: []scenario.Step{
			{Action: "navigate", Target: "https://example.test/login", Verification: "login form visible"},
			{Action: "input", Target: "#email", Input: "user@example.test", Verification: "field populated"},
			{Action: "click", Target: "#submit"},
		},
		ExpectedOutcome: "user lands on the dashboard",
	}

	got := BuildPrompt(sc, "Start the staging stack with docker compose up.")
	golden.Assert(t, golden.TestdataDir(t), "prompt_full", got)
}

func TestBuildPrompt_MinimalScenario(t *testing.T) {
	sc := scenario.Scenario{
		ID:    "ping",
		Title: "Service responds",
		Steps: []scenario.Step{{Action: "call", Target: "/healthz"}},
	}

	got := BuildPrompt(sc, "")
	assert.Contains(t, got, "Scenario: Service responds")
	assert.Contains(t, got, "1. call /healthz")
	assert.NotContains(t, got, "Setup:")
	assert.NotContains(t, got, "Expected outcome:")
}

func TestBuildPrompt_NeverContainsEnvironment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "super-secret-value")

	sc := scenario.Scenario{
		ID:    "s",
		Title: "t",
		Steps: []scenario.Step{{Action: "verify"}},
	}
	got := BuildPrompt(sc, "setup text")
	assert.NotContains(t, got, "super-secret-value")
}
