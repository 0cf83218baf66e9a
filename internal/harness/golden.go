package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot captures the complete observable result of a scenario for
// golden comparison: every pass's outcome trace plus the final artifact
// text. Serialized as indented JSON for reviewable diffs.
type Snapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Passes       []PassResult `json:"passes"`
	Final        string       `json:"final"`
}

// RunWithGolden executes a scenario, validates its declared
// expectations, and compares the full snapshot against a golden file in
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie or
// expectation mismatch) is reported on t.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	for _, mismatch := range CheckExpectations(scenario, result) {
		t.Error(mismatch)
	}

	snapshot := Snapshot{
		ScenarioName: scenario.Name,
		Passes:       result.Passes,
		Final:        result.FinalText,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
