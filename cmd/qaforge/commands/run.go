// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/qaforge/qaforge/cmd/qaforge/internal/clierr"
	"github.com/qaforge/qaforge/internal/agent"
	"github.com/qaforge/qaforge/internal/config"
	"github.com/qaforge/qaforge/internal/engine"
	"github.com/qaforge/qaforge/internal/prereq"
	"github.com/qaforge/qaforge/internal/scenario"
)

// NewRunCommand builds the `qaforge run` command.
func NewRunCommand() *cobra.Command {
	var (
		configPath string
		outputDir  string
		timeoutMin int
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "run <scenarios.yaml>",
		Short: "Execute a scenario file against the automation agent",
		Long: `Run every scenario in the given file, in order, one agent invocation
per scenario. Scenario failures are recorded and the run continues;
only missing prerequisites abort the whole run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if timeoutMin > 0 {
				cfg.TimeoutMinutes = timeoutMin
			}

			scenarios, err := scenario.Load(args[0])
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.LogLevel(),
			}))

			executor := agent.NewExecutor(agent.Config{
				Binary:   cfg.Agent.Binary,
				Args:     cfg.AgentArgs(),
				ExtraEnv: cfg.AgentEnv(),
			})
			validator := prereq.NewValidator(prereq.Config{
				AgentBinary:   cfg.Agent.Binary,
				RuntimeBinary: cfg.Agent.RuntimeBinary,
				CredentialEnv: cfg.Agent.CredentialEnv,
			})
			runner := engine.NewRunner(executor, validator, engine.Options{
				Timeout:           cfg.Timeout(),
				Pause:             cfg.Pause(),
				SetupInstructions: cfg.SetupInstructions,
				Logger:            logger,
			})

			results, err := runner.Run(cmd.Context(), scenarios, cfg.OutputDir)
			if err != nil {
				var pe *prereq.Error
				if errors.As(err, &pe) {
					return clierr.Wrap(clierr.CodePrerequisite, "environment not ready", err)
				}
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else {
				printResults(cmd, results)
			}

			failed := 0
			for _, res := range results {
				if res.Status == engine.StatusFailed {
					failed++
				}
			}
			if failed > 0 {
				return clierr.Newf(clierr.CodeScenarioFail, "%d of %d scenarios failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a qaforge config file")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "override the configured output directory")
	cmd.Flags().IntVar(&timeoutMin, "timeout", 0, "per-scenario timeout in minutes")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print results as JSON")

	return cmd
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func printResults(cmd *cobra.Command, results []engine.ScenarioResult) {
	out := cmd.OutOrStdout()
	var passed, failed, warned int
	for _, res := range results {
		switch res.Status {
		case engine.StatusFailed:
			failed++
			fmt.Fprintf(out, "FAIL  %s (%.1f min)\n", res.ScenarioID, res.ExecutionTime)
		case engine.StatusWarning:
			warned++
			fmt.Fprintf(out, "WARN  %s (%.1f min)\n", res.ScenarioID, res.ExecutionTime)
		default:
			passed++
			fmt.Fprintf(out, "PASS  %s (%.1f min)\n", res.ScenarioID, res.ExecutionTime)
		}
		if res.Notes != "" {
			fmt.Fprintf(out, "      %s\n", res.Notes)
		}
	}
	fmt.Fprintf(out, "\n%d passed, %d failed, %d warnings (%d total)\n",
		passed, failed, warned, len(results))
}
