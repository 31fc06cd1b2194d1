// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Result captures everything one agent invocation produced.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// SpawnError means the agent process could not be started at all.
type SpawnError struct {
	Binary string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawning agent %q: %v", e.Binary, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// TimeoutError means the agent was forcibly terminated after exceeding
// its per-scenario budget.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("agent did not finish within %s and was terminated", e.Budget)
}

// NonZeroExitError means the agent ran but reported a hard failure.
// Stderr is carried so callers can surface the root cause.
type NonZeroExitError struct {
	Code   int
	Stderr string
}

func (e *NonZeroExitError) Error() string {
	msg := fmt.Sprintf("agent exited with code %d", e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Config describes how to invoke the automation agent. The binary and
// flag set come from configuration, never from the engine itself.
type Config struct {
	Binary string
	Args   []string

	// Extra environment in KEY=VALUE form, appended to the parent
	// environment at spawn time. Credentials travel here, never in
	// the prompt body.
	ExtraEnv []string

	// Grace period between the kill signal and giving up on I/O.
	WaitDelay time.Duration
}

// Executor runs one automation-agent process per call. It is stateless
// across calls; all per-invocation state lives in the subprocess.
type Executor struct {
	cfg Config
}

// NewExecutor creates an Executor for the given agent configuration.
func NewExecutor(cfg Config) *Executor {
	if cfg.WaitDelay <= 0 {
		cfg.WaitDelay = 5 * time.Second
	}
	return &Executor{cfg: cfg}
}

// Execute spawns the agent, writes the prompt to its stdin, closes the
// stream, and waits for exit or the timeout, whichever comes first.
// Stdout and stderr are buffered in full. The returned Result is valid
// even when err is non-nil, so callers can persist partial output.
//
// Timeout expiry kills the process outright; the agent's internal state
// is opaque, so no graceful-shutdown phase is attempted.
func (e *Executor) Execute(ctx context.Context, prompt, workingDir string, timeout time.Duration) (Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.cfg.Binary, e.cfg.Args...) //nolint:gosec // binary comes from validated config
	cmd.Dir = workingDir
	cmd.Stdin = strings.NewReader(prompt)
	cmd.WaitDelay = e.cfg.WaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	cmd.Env = append(os.Environ(), e.cfg.ExtraEnv...)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, &SpawnError{Binary: e.cfg.Binary, Err: err}
	}

	waitErr := cmd.Wait()

	res := Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return res, &TimeoutError{Budget: timeout}
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return res, &NonZeroExitError{Code: res.ExitCode, Stderr: res.Stderr}
		}
		return res, &SpawnError{Binary: e.cfg.Binary, Err: waitErr}
	}
	return res, nil
}
