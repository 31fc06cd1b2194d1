// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"fmt"
	"strings"

	"github.com/qaforge/qaforge/internal/scenario"
)

// The agent emits free prose, not a step-addressable protocol, so the
// parser infers step granularity from the scenario definition and
// derives the scenario status from indicator vocabulary in the
// transcript. Known limitation: words like "failed" in unrelated prose
// produce false positives.
var (
	failureIndicators = []string{
		"failed",
		"failure",
		"error",
		"unable to",
		"could not",
		"cannot",
		"not found",
		"exception",
		"timed out",
		"crashed",
	}
	warningIndicators = []string{
		"warning",
		"slow response",
		"unexpected",
		"retried",
		"deprecated",
	}
)

// ParseOutcome is what the parser derives from one transcript.
type ParseOutcome struct {
	Steps  []StepResult
	Status Status
	Notes  string
}

// Parser reconciles a scenario's declared steps with the raw transcript
// produced by the automation agent.
type Parser struct{}

// NewParser returns a Parser with the default indicator vocabulary.
func NewParser() *Parser {
	return &Parser{}
}

// Parse produces exactly one StepResult per declared step, in step
// order, and a scenario status derived from the transcript text.
func (p *Parser) Parse(transcript string, sc scenario.Scenario) ParseOutcome {
	lower := strings.ToLower(transcript)

	status := StatusPassed
	matched := ""
	if word := firstMatch(lower, failureIndicators); word != "" {
		status = StatusFailed
		matched = word
	} else if word := firstMatch(lower, warningIndicators); word != "" {
		status = StatusWarning
		matched = word
	}

	steps := make([]StepResult, len(sc.Steps))
	for i, st := range sc.Steps {
		steps[i] = StepResult{
			StepIndex:    i,
			Status:       StepPassed,
			ActualResult: describeStep(st),
		}
	}

	var notes string
	switch status {
	case StatusFailed:
		notes = fmt.Sprintf("agent transcript indicates a failure (matched %q)", matched)
	case StatusWarning:
		notes = fmt.Sprintf("scenario completed with warnings (matched %q)", matched)
	default:
		notes = "scenario completed; no failure or warning indicators in transcript"
	}

	return ParseOutcome{Steps: steps, Status: status, Notes: notes}
}

func firstMatch(lowerTranscript string, indicators []string) string {
	for _, word := range indicators {
		if strings.Contains(lowerTranscript, word) {
			return word
		}
	}
	return ""
}

func describeStep(st scenario.Step) string {
	desc := "executed: " + st.Action
	if st.Target != "" {
		desc += " " + st.Target
	}
	if st.Verification != "" {
		desc += " (verified: " + st.Verification + ")"
	}
	return desc
}
