// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prereq gates a run on environmental prerequisites: the agent
// binary, its container runtime, and the backend credential. All checks
// run before any failure is reported, so the user sees the complete
// remediation list in one pass.
package prereq

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Error enumerates every missing prerequisite found by Validate.
type Error struct {
	Missing []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("missing prerequisites:\n  - %s", strings.Join(e.Missing, "\n  - "))
}

// Config names the prerequisites to check.
type Config struct {
	AgentBinary   string // automation agent executable
	RuntimeBinary string // container runtime, e.g. "docker"
	CredentialEnv string // env var holding the backend credential

	// Probe budget for the runtime responsiveness check.
	ProbeTimeout time.Duration
}

// Validator checks prerequisites. It is idempotent; a later call after
// remediation succeeds cleanly.
type Validator struct {
	cfg Config

	// Seams for tests.
	lookPath     func(string) (string, error)
	getenv       func(string) string
	probeRuntime func(ctx context.Context, binary string) error
}

// NewValidator creates a Validator with real OS-backed checks.
func NewValidator(cfg Config) *Validator {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 10 * time.Second
	}
	return &Validator{
		cfg:          cfg,
		lookPath:     exec.LookPath,
		getenv:       os.Getenv,
		probeRuntime: probeRuntime,
	}
}

// Validate runs every check and aggregates the failures into a single
// *Error. Returns nil when all prerequisites hold.
func (v *Validator) Validate(ctx context.Context) error {
	var missing []string

	if v.cfg.AgentBinary == "" {
		missing = append(missing, "agent binary is not configured")
	} else if _, err := v.lookPath(v.cfg.AgentBinary); err != nil {
		missing = append(missing, fmt.Sprintf("agent binary %q not found in PATH; install it first", v.cfg.AgentBinary))
	}

	if v.cfg.RuntimeBinary != "" {
		if _, err := v.lookPath(v.cfg.RuntimeBinary); err != nil {
			missing = append(missing, fmt.Sprintf("container runtime %q not found in PATH", v.cfg.RuntimeBinary))
		} else {
			probeCtx, cancel := context.WithTimeout(ctx, v.cfg.ProbeTimeout)
			err := v.probeRuntime(probeCtx, v.cfg.RuntimeBinary)
			cancel()
			if err != nil {
				missing = append(missing, fmt.Sprintf("container runtime %q is installed but not responding: %v", v.cfg.RuntimeBinary, err))
			}
		}
	}

	if v.cfg.CredentialEnv != "" && v.getenv(v.cfg.CredentialEnv) == "" {
		missing = append(missing, fmt.Sprintf("environment variable %s is not set", v.cfg.CredentialEnv))
	}

	if len(missing) > 0 {
		return &Error{Missing: missing}
	}
	return nil
}

// probeRuntime asks the runtime for its info to confirm the daemon is
// actually reachable, not merely installed.
func probeRuntime(ctx context.Context, binary string) error {
	cmd := exec.CommandContext(ctx, binary, "info")
	if out, err := cmd.CombinedOutput(); err != nil {
		msg := strings.TrimSpace(string(out))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		if msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return err
	}
	return nil
}
