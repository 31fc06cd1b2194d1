// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/qaforge/qaforge/internal/engine"
)

// NewReportCommand builds the `qaforge report` command, which prints
// the persisted summary of the last run in an output directory.
func NewReportCommand() *cobra.Command {
	var (
		outputDir string
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the summary of the last run",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := engine.NewStateStore(outputDir)
			sum, err := store.ReadRunSummary()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if sum == nil {
				fmt.Fprintln(out, "No run state found.")
				return nil
			}

			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}

			fmt.Fprintf(out, "Run:      %s\n", sum.RunID)
			fmt.Fprintf(out, "Status:   %s\n", sum.Status)
			fmt.Fprintf(out, "Finished: %s\n", sum.FinishedAt.Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(out, "Passed:   %d  Warnings: %d  Failed: %d\n", sum.Passed, sum.Warnings, len(sum.Failed))
			if len(sum.Failed) > 0 {
				fmt.Fprintln(out, "Failed scenarios:")
				for _, id := range sum.Failed {
					fmt.Fprintf(out, "  - %s\n", id)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "qa-results", "run output directory to read")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the summary as JSON")
	return cmd
}
