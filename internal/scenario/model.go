// SPDX-License-Identifier: AGPL-3.0-or-later

package scenario

import (
	"fmt"
	"strings"
)

// Priority ranks how urgent a scenario is relative to the change under test.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Category tags what aspect of the system a scenario exercises.
type Category string

const (
	CategoryFunctionality Category = "functionality"
	CategoryRegression    Category = "regression"
	CategoryIntegration   Category = "integration"
	CategoryUI            Category = "ui"
	CategoryPerformance   Category = "performance"
	CategorySecurity      Category = "security"
)

// AutomationLevel states how much of a scenario the agent can execute unattended.
type AutomationLevel string

const (
	AutomationManual AutomationLevel = "manual"
	AutomationSemi   AutomationLevel = "semi-automated"
	AutomationFull   AutomationLevel = "automated"
)

// Step is one declarative action/verification unit within a scenario.
// A step has no identity beyond its position in the owning scenario.
type Step struct {
	Action       string `yaml:"action" json:"action"`
	Target       string `yaml:"target,omitempty" json:"target,omitempty"`
	Input        string `yaml:"input,omitempty" json:"input,omitempty"`
	Verification string `yaml:"verification" json:"verification"`
}

// Scenario is a named, prioritized test case produced by the scenario
// generation collaborator. Step order is significant and immutable.
type Scenario struct {
	ID                string          `yaml:"id" json:"id"`
	Title             string          `yaml:"title" json:"title"`
	Description       string          `yaml:"description" json:"description"`
	Priority          Priority        `yaml:"priority" json:"priority"`
	Category          Category        `yaml:"category" json:"category"`
	Steps             []Step          `yaml:"steps" json:"steps"`
	ExpectedOutcome   string          `yaml:"expectedOutcome" json:"expectedOutcome"`
	AutomationLevel   AutomationLevel `yaml:"automationLevel" json:"automationLevel"`
	EstimatedDuration int             `yaml:"estimatedDuration" json:"estimatedDuration"` // minutes
}

// Validate checks a single scenario against the model invariants.
func (s *Scenario) Validate() error {
	var problems []string

	if strings.TrimSpace(s.ID) == "" {
		problems = append(problems, "id is empty")
	}
	if strings.TrimSpace(s.Title) == "" {
		problems = append(problems, "title is empty")
	}
	if len(s.Steps) == 0 {
		problems = append(problems, "steps is empty")
	}
	for i, st := range s.Steps {
		if strings.TrimSpace(st.Action) == "" {
			problems = append(problems, fmt.Sprintf("step %d has no action", i))
		}
	}
	switch s.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		problems = append(problems, fmt.Sprintf("unknown priority %q", s.Priority))
	}
	switch s.Category {
	case CategoryFunctionality, CategoryRegression, CategoryIntegration,
		CategoryUI, CategoryPerformance, CategorySecurity:
	default:
		problems = append(problems, fmt.Sprintf("unknown category %q", s.Category))
	}
	switch s.AutomationLevel {
	case AutomationManual, AutomationSemi, AutomationFull:
	default:
		problems = append(problems, fmt.Sprintf("unknown automationLevel %q", s.AutomationLevel))
	}
	if s.EstimatedDuration <= 0 {
		problems = append(problems, "estimatedDuration must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("scenario %q: %s", s.ID, strings.Join(problems, "; "))
	}
	return nil
}

// ValidateAll checks every scenario and the cross-scenario invariant
// that ids are unique within a run.
func ValidateAll(scenarios []Scenario) error {
	seen := make(map[string]bool, len(scenarios))
	for i := range scenarios {
		if err := scenarios[i].Validate(); err != nil {
			return err
		}
		if seen[scenarios[i].ID] {
			return fmt.Errorf("duplicate scenario id %q", scenarios[i].ID)
		}
		seen[scenarios[i].ID] = true
	}
	return nil
}
