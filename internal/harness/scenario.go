// Package harness provides a conformance testing framework for the patch
// engine.
//
// A scenario describes one artifact fixture, one rule file, and the
// expected tri-state outcomes across one or more successive pipeline
// passes. Running the same rules repeatedly is the point: the first pass
// exercises the candidate chain, later passes exercise the idempotency
// guard. Scenario results are compared against golden snapshots so any
// change to outcome reporting or splicing behavior shows up as a diff.
package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file
	// name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rules is the path to the CUE rule file, relative to the scenario
	// file location.
	Rules string `yaml:"rules"`

	// Input is the path to the artifact fixture, relative to the
	// scenario file location.
	Input string `yaml:"input"`

	// Passes is the number of successive pipeline runs over the evolving
	// artifact text. Defaults to 1. Two passes is the idempotence check:
	// applied on the first, skipped on the second.
	Passes int `yaml:"passes,omitempty"`

	// Expect lists the expected outcome per rule per pass. Expect[i][j]
	// describes rule j of pass i+1. Optional; when present it is
	// validated before any golden comparison.
	Expect [][]ExpectedOutcome `yaml:"expect,omitempty"`

	// dir is the directory of the scenario file, used to resolve the
	// Rules and Input paths.
	dir string
}

// ExpectedOutcome is one rule's expected result within a pass.
type ExpectedOutcome struct {
	// Rule is the rule id.
	Rule string `yaml:"rule"`

	// Status is the expected tri-state outcome: "applied", "skipped",
	// or "not-found".
	Status string `yaml:"status"`

	// Candidate, when set, is the expected index of the matching
	// candidate.
	Candidate *int `yaml:"candidate,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if s.Rules == "" {
		return nil, fmt.Errorf("scenario %s: rules is required", path)
	}
	if s.Input == "" {
		return nil, fmt.Errorf("scenario %s: input is required", path)
	}
	if s.Passes == 0 {
		s.Passes = 1
	}
	s.dir = filepath.Dir(path)
	return &s, nil
}

// RulesPath resolves the rule file path against the scenario location.
func (s *Scenario) RulesPath() string {
	return filepath.Join(s.dir, s.Rules)
}

// InputPath resolves the fixture path against the scenario location.
func (s *Scenario) InputPath() string {
	return filepath.Join(s.dir, s.Input)
}
