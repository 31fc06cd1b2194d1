// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config holds the engine's validated configuration surface.
// Loading is strict: unrecognized keys fail the load instead of being
// silently ignored.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AgentConfig describes how the automation agent is invoked.
type AgentConfig struct {
	Binary        string   `yaml:"binary"`
	Args          []string `yaml:"args"`
	Model         string   `yaml:"model"`
	RuntimeBinary string   `yaml:"runtime_binary"`
	CredentialEnv string   `yaml:"credential_env"`
	TLSCertEnv    string   `yaml:"tls_cert_env"`
}

// Config is the full configuration for a run.
type Config struct {
	OutputDir         string      `yaml:"output_dir"`
	TimeoutMinutes    int         `yaml:"timeout_minutes"`
	PauseSeconds      int         `yaml:"pause_seconds"`
	SetupInstructions string      `yaml:"setup_instructions"`
	Verbosity         string      `yaml:"verbosity"`
	Agent             AgentConfig `yaml:"agent"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		OutputDir:      "qa-results",
		TimeoutMinutes: 10,
		PauseSeconds:   2,
		Verbosity:      "info",
		Agent: AgentConfig{
			Binary:        "claude",
			Args:          []string{"--print", "--dangerously-skip-permissions"},
			Model:         "claude-sonnet-4-5",
			RuntimeBinary: "docker",
			CredentialEnv: "ANTHROPIC_API_KEY",
			TLSCertEnv:    "NODE_EXTRA_CA_CERTS",
		},
	}
}

// Load reads a config file over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening config: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.OutputDir) == "" {
		problems = append(problems, "output_dir is empty")
	}
	if c.TimeoutMinutes <= 0 {
		problems = append(problems, "timeout_minutes must be positive")
	}
	if c.PauseSeconds < 0 {
		problems = append(problems, "pause_seconds must not be negative")
	}
	if strings.TrimSpace(c.Agent.Binary) == "" {
		problems = append(problems, "agent.binary is empty")
	}
	switch c.Verbosity {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("unknown verbosity %q", c.Verbosity))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Timeout returns the per-scenario budget.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// Pause returns the inter-scenario settle time.
func (c *Config) Pause() time.Duration {
	return time.Duration(c.PauseSeconds) * time.Second
}

// LogLevel maps verbosity to a slog level.
func (c *Config) LogLevel() slog.Level {
	switch c.Verbosity {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AgentArgs assembles the full agent argument list, appending the model
// selector when a model is configured.
func (c *Config) AgentArgs() []string {
	args := append([]string{}, c.Agent.Args...)
	if c.Agent.Model != "" {
		args = append(args, "--model", c.Agent.Model)
	}
	return args
}

// AgentEnv builds the extra environment forwarded to the agent process.
// Values come from the parent environment; nothing is persisted.
func (c *Config) AgentEnv() []string {
	var env []string
	if c.Agent.CredentialEnv != "" {
		if v := os.Getenv(c.Agent.CredentialEnv); v != "" {
			env = append(env, c.Agent.CredentialEnv+"="+v)
		}
	}
	if c.Agent.TLSCertEnv != "" {
		if v := os.Getenv(c.Agent.TLSCertEnv); v != "" {
			env = append(env, c.Agent.TLSCertEnv+"="+v)
		}
	}
	return env
}
