// Package compiler turns CUE rule files into compiled patch rules.
//
// A rule file declares an ordered list under the "rules" field:
//
//	rules: [{
//		id:        "add-agent-endpoint"
//		signature: "func addAgent(agent: AgentConfig)"
//		mode:      "insert-after"
//		candidates: [{pattern: "    // MARK: - Gallery\n", literal: true}]
//		template:  "    func addAgent(agent: AgentConfig) async throws { ... }\n"
//	}]
//
// The list form is deliberate: declaration order is the execution order
// of the pipeline, and candidate order within a rule is the fallback
// priority across known prior states of the target.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/graftkit/graft/internal/patch"
)

// CompileError represents a rule-file compilation error with an optional
// CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileRules parses a CUE value holding a rule file into compiled
// patch rules. Uses the CUE SDK's Go API directly (not CLI subprocess).
//
// The value should be the file root, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`rules: [...]`)
//	rules, err := CompileRules(v)
func CompileRules(v cue.Value) ([]patch.Rule, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return nil, &CompileError{
			Field:   "rules",
			Message: "rules list is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := rulesVal.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "rules",
			Message: fmt.Sprintf("rules must be a list (ordered execution): %v", err),
			Pos:     rulesVal.Pos(),
		}
	}

	var rules []patch.Rule
	for i := 0; iter.Next(); i++ {
		rule, err := CompileRule(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}

	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// CompileRule parses one element of the rules list. Structural
// validation (pattern compilation, template syntax, id uniqueness across
// the list) happens separately in ValidateRules.
func CompileRule(v cue.Value, index int) (*patch.Rule, error) {
	field := fmt.Sprintf("rules[%d]", index)

	rule := &patch.Rule{}

	id, err := requiredString(v, "id", field)
	if err != nil {
		return nil, err
	}
	rule.ID = id

	sig, err := requiredString(v, "signature", field)
	if err != nil {
		return nil, err
	}
	rule.Signature = sig

	// mode is optional; replace is the default, matching the most common
	// transformation shape.
	modeVal := v.LookupPath(cue.ParsePath("mode"))
	if modeVal.Exists() {
		mode, err := modeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		rule.Mode = patch.Mode(mode)
	} else {
		rule.Mode = patch.ModeReplace
	}

	tmpl, err := requiredString(v, "template", field)
	if err != nil {
		return nil, err
	}
	rule.Template = tmpl

	candidates, err := compileCandidates(v, field)
	if err != nil {
		return nil, err
	}
	rule.Candidates = candidates

	return rule, nil
}

// compileCandidates parses the ordered candidate list of one rule.
func compileCandidates(v cue.Value, field string) ([]patch.Candidate, error) {
	candVal := v.LookupPath(cue.ParsePath("candidates"))
	if !candVal.Exists() {
		return nil, &CompileError{
			Field:   field + ".candidates",
			Message: "candidates list is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := candVal.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field + ".candidates",
			Message: fmt.Sprintf("candidates must be a list (fallback priority order): %v", err),
			Pos:     candVal.Pos(),
		}
	}

	var candidates []patch.Candidate
	for i := 0; iter.Next(); i++ {
		cv := iter.Value()
		cField := fmt.Sprintf("%s.candidates[%d]", field, i)

		pattern, err := requiredString(cv, "pattern", cField)
		if err != nil {
			return nil, err
		}

		literal := false
		litVal := cv.LookupPath(cue.ParsePath("literal"))
		if litVal.Exists() {
			literal, err = litVal.Bool()
			if err != nil {
				return nil, formatCUEError(err)
			}
		}

		candidates = append(candidates, patch.Candidate{
			Pattern: pattern,
			Literal: literal,
		})
	}
	return candidates, nil
}

// requiredString extracts a mandatory string field.
func requiredString(v cue.Value, name, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field + "." + name,
			Message: name + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// formatCUEError converts CUE SDK errors into positioned CompileErrors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
