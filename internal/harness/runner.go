package harness

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/graftkit/graft/internal/artifact"
	"github.com/graftkit/graft/internal/compiler"
	"github.com/graftkit/graft/internal/patch"
	"github.com/graftkit/graft/internal/testutil"
)

// PassResult captures one pipeline pass over the evolving artifact text.
type PassResult struct {
	RunToken string          `json:"run_token"`
	Outcomes []patch.Outcome `json:"outcomes"`
	Changed  bool            `json:"changed"`
	Checksum string          `json:"checksum"`
}

// ScenarioResult is the complete result of executing a scenario.
type ScenarioResult struct {
	Passes    []PassResult
	FinalText string
}

// Run executes a scenario: compile the rule file once, then run the
// pipeline Passes times, each pass consuming the previous pass's text.
// The fixture file on disk is never written; the harness works entirely
// in memory, like the engine between its load and save boundaries.
func Run(s *Scenario) (*ScenarioResult, error) {
	rules, err := compileRuleFile(s.RulesPath())
	if err != nil {
		return nil, err
	}

	input, err := os.ReadFile(s.InputPath())
	if err != nil {
		return nil, fmt.Errorf("reading input fixture: %w", err)
	}
	text := string(input)

	result := &ScenarioResult{}
	for pass := 1; pass <= s.Passes; pass++ {
		token := fmt.Sprintf("test-run-%03d", pass)
		pipeline, err := patch.NewPipeline(rules, testutil.NewFixedTokenGenerator(token))
		if err != nil {
			return nil, fmt.Errorf("pass %d: %w", pass, err)
		}

		runResult, err := pipeline.Run(text)
		if err != nil {
			return nil, fmt.Errorf("pass %d: %w", pass, err)
		}
		text = runResult.Text

		result.Passes = append(result.Passes, PassResult{
			RunToken: runResult.RunToken,
			Outcomes: runResult.Outcomes,
			Changed:  runResult.Changed,
			Checksum: (&artifact.Artifact{Text: text}).Checksum(),
		})
	}

	result.FinalText = text
	return result, nil
}

// CheckExpectations validates the scenario's expected outcomes against
// an actual result. Returns one error per mismatch.
func CheckExpectations(s *Scenario, result *ScenarioResult) []error {
	var errs []error
	for i, expectedPass := range s.Expect {
		if i >= len(result.Passes) {
			errs = append(errs, fmt.Errorf("pass %d: expected but not executed", i+1))
			continue
		}
		actual := result.Passes[i].Outcomes
		for j, want := range expectedPass {
			if j >= len(actual) {
				errs = append(errs, fmt.Errorf("pass %d: missing outcome for rule %q", i+1, want.Rule))
				continue
			}
			got := actual[j]
			if got.RuleID != want.Rule {
				errs = append(errs, fmt.Errorf("pass %d outcome %d: rule %q, want %q", i+1, j, got.RuleID, want.Rule))
			}
			if string(got.Status) != want.Status {
				errs = append(errs, fmt.Errorf("pass %d rule %q: status %q, want %q", i+1, want.Rule, got.Status, want.Status))
			}
			if want.Candidate != nil && got.Candidate != *want.Candidate {
				errs = append(errs, fmt.Errorf("pass %d rule %q: candidate %d, want %d", i+1, want.Rule, got.Candidate, *want.Candidate))
			}
		}
	}
	return errs
}

// compileRuleFile builds one standalone CUE rule file.
func compileRuleFile(path string) ([]patch.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file: %w", err)
	}
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("building rule file: %w", err)
	}
	return compiler.CompileRules(value)
}
