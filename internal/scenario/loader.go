// SPDX-License-Identifier: AGPL-3.0-or-later

package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// file is the on-disk shape of a scenario set.
type file struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Load reads a scenario set from a YAML file and validates it.
// Unrecognized keys are rejected rather than silently ignored.
func Load(path string) ([]Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario file: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var doc file
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	if err := ValidateAll(doc.Scenarios); err != nil {
		return nil, err
	}
	return doc.Scenarios, nil
}
