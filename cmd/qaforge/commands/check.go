// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qaforge/qaforge/cmd/qaforge/internal/clierr"
	"github.com/qaforge/qaforge/internal/prereq"
)

// NewCheckCommand builds the `qaforge check` command, which runs the
// prerequisite validator without executing anything.
func NewCheckCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the agent binary, runtime, and credentials are ready",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			validator := prereq.NewValidator(prereq.Config{
				AgentBinary:   cfg.Agent.Binary,
				RuntimeBinary: cfg.Agent.RuntimeBinary,
				CredentialEnv: cfg.Agent.CredentialEnv,
			})
			if err := validator.Validate(cmd.Context()); err != nil {
				return clierr.Wrap(clierr.CodePrerequisite, "environment not ready", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "All prerequisites satisfied.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a qaforge config file")
	return cmd
}
