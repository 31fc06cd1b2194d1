package prereq

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(cfg Config) *Validator {
	v := NewValidator(cfg)
	v.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	v.getenv = func(string) string { return "set" }
	v.probeRuntime = func(ctx context.Context, binary string) error { return nil }
	return v
}

func TestValidate_AllPresent(t *testing.T) {
	v := newTestValidator(Config{
		AgentBinary:   "agent",
		RuntimeBinary: "docker",
		CredentialEnv: "API_KEY",
	})
	require.NoError(t, v.Validate(context.Background()))
}

func TestValidate_AggregatesAllMissing(t *testing.T) {
	v := newTestValidator(Config{
		AgentBinary:   "agent",
		RuntimeBinary: "docker",
		CredentialEnv: "API_KEY",
	})
	v.lookPath = func(name string) (string, error) {
		return "", fmt.Errorf("%s: not found", name)
	}
	v.getenv = func(string) string { return "" }

	err := v.Validate(context.Background())
	require.Error(t, err)

	var prereqErr *Error
	require.ErrorAs(t, err, &prereqErr)
	require.Len(t, prereqErr.Missing, 3, "every failed check must be reported, not just the first")
	assert.Contains(t, err.Error(), `agent binary "agent"`)
	assert.Contains(t, err.Error(), `container runtime "docker"`)
	assert.Contains(t, err.Error(), "API_KEY")
}

func TestValidate_RuntimeInstalledButUnresponsive(t *testing.T) {
	v := newTestValidator(Config{AgentBinary: "agent", RuntimeBinary: "docker"})
	v.probeRuntime = func(ctx context.Context, binary string) error {
		return errors.New("cannot connect to the daemon")
	}

	err := v.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not responding")
	assert.Contains(t, err.Error(), "cannot connect to the daemon")
}

func TestValidate_SkipsUnconfiguredChecks(t *testing.T) {
	v := newTestValidator(Config{AgentBinary: "agent"})
	probed := false
	v.probeRuntime = func(ctx context.Context, binary string) error {
		probed = true
		return nil
	}

	require.NoError(t, v.Validate(context.Background()))
	assert.False(t, probed, "no runtime configured, no probe")
}

func TestValidate_IdempotentAfterRemediation(t *testing.T) {
	v := newTestValidator(Config{AgentBinary: "agent", CredentialEnv: "API_KEY"})
	credential := ""
	v.getenv = func(string) string { return credential }

	require.Error(t, v.Validate(context.Background()))

	credential = "now-set"
	require.NoError(t, v.Validate(context.Background()), "a later call after remediation must succeed")
}

func TestValidate_UnconfiguredAgentBinary(t *testing.T) {
	v := newTestValidator(Config{})
	err := v.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
