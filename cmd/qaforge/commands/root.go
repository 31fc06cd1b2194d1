// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd constructs the qaforge root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("QAFORGE_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "qaforge",
		Short:         "qaforge - scenario execution engine for automated QA",
		Long:          "qaforge drives an automation agent through declarative test scenarios,\nenforces timeouts, and rolls transcripts and artifacts up into per-scenario results.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of qaforge",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "qaforge version %s\n", version)
		},
	})

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewReportCommand())

	return cmd
}
