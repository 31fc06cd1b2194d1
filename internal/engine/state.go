// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// RunSummary is the persisted roll-up of one engine run.
// Matches <outputDir>/run.json.
type RunSummary struct {
	RunID      string    `json:"runId"`
	Status     string    `json:"status"` // "pass" or "fail"
	Scenarios  []string  `json:"scenarios"`
	Failed     []string  `json:"failed"`
	Passed     int       `json:"passed"`
	Warnings   int       `json:"warnings"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// StateStore persists per-scenario results and the run summary under
// the run's output directory, for the report command and the reporting
// collaborator.
type StateStore struct {
	baseDir string
}

// NewStateStore creates a store rooted at the given output directory.
func NewStateStore(baseDir string) *StateStore {
	return &StateStore{baseDir: baseDir}
}

func (s *StateStore) summaryPath() string {
	return filepath.Join(s.baseDir, "run.json")
}

// WriteScenarioResult saves one scenario's result as JSON.
func (s *StateStore) WriteScenarioResult(res ScenarioResult) (err error) {
	path := filepath.Join(s.baseDir, "results", res.ScenarioID+".json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// ReadScenarioResult loads one scenario's persisted result, or nil if
// none was written.
func (s *StateStore) ReadScenarioResult(scenarioID string) (*ScenarioResult, error) {
	path := filepath.Join(s.baseDir, "results", scenarioID+".json")
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var res ScenarioResult
	if err := json.NewDecoder(f).Decode(&res); err != nil {
		return nil, fmt.Errorf("decoding result for %s: %w", scenarioID, err)
	}
	return &res, nil
}

// WriteRunSummary saves the run roll-up.
func (s *StateStore) WriteRunSummary(sum RunSummary) (err error) {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(s.summaryPath())
	if err != nil {
		return err
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}

// ReadRunSummary loads the last run roll-up. A missing file is clean
// state, not an error.
func (s *StateStore) ReadRunSummary() (*RunSummary, error) {
	f, err := os.Open(s.summaryPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening run summary: %w", err)
	}
	defer func() { _ = f.Close() }()

	var sum RunSummary
	if err := json.NewDecoder(f).Decode(&sum); err != nil {
		return nil, fmt.Errorf("decoding run summary: %w", err)
	}
	return &sum, nil
}
