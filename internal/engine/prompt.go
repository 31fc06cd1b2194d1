// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"fmt"
	"strings"

	"github.com/qaforge/qaforge/internal/scenario"
)

// BuildPrompt renders the full scenario-execution prompt delivered to
// the agent over stdin. Credentials never appear here; they travel via
// the process environment.
func BuildPrompt(sc scenario.Scenario, setupInstructions string) string {
	var b strings.Builder

	b.WriteString("You are executing an automated QA test scenario against a live environment.\n")
	b.WriteString("Perform each step in order. Save any screenshots, recordings, or logs\n")
	b.WriteString("you produce into the current working directory.\n\n")

	if setupInstructions != "" {
		b.WriteString("Setup:\n")
		b.WriteString(setupInstructions)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Scenario: %s\n", sc.Title)
	if sc.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", sc.Description)
	}
	b.WriteString("\nSteps:\n")
	for i, st := range sc.Steps {
		fmt.Fprintf(&b, "%d. %s", i+1, st.Action)
		if st.Target != "" {
			fmt.Fprintf(&b, " %s", st.Target)
		}
		if st.Input != "" {
			fmt.Fprintf(&b, " with input %q", st.Input)
		}
		b.WriteString("\n")
		if st.Verification != "" {
			fmt.Fprintf(&b, "   Verify: %s\n", st.Verification)
		}
	}

	if sc.ExpectedOutcome != "" {
		fmt.Fprintf(&b, "\nExpected outcome: %s\n", sc.ExpectedOutcome)
	}

	b.WriteString("\nReport what happened at each step. State clearly whether the expected outcome was met.\n")
	return b.String()
}
