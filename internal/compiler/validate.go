package compiler

import (
	"errors"
	"fmt"

	"github.com/graftkit/graft/internal/patch"
)

// Validation error codes (E100-E199)
const (
	ErrRuleIDEmpty     = "E101" // rule id must not be empty
	ErrNoCandidates    = "E102" // at least one candidate required
	ErrInvalidMode     = "E103" // mode not one of the accepted values
	ErrInvalidPattern  = "E104" // candidate pattern does not compile
	ErrDuplicateRuleID = "E105" // rule ids must be unique within a file
	ErrEmptyPattern    = "E106" // candidate pattern must not be empty
	ErrTemplateSyntax  = "E107" // malformed template reference
	ErrSignatureEmpty  = "E108" // idempotency signature must not be empty
)

// ValidationError represents a rule validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
}

// ValidateRules checks structural invariants across a compiled rule list
// and compiles every rule (patterns and template syntax included), so a
// rule file that passes validation is guaranteed to construct a pipeline.
func ValidateRules(rules []patch.Rule) error {
	seen := make(map[string]int, len(rules))
	for i := range rules {
		field := fmt.Sprintf("rules[%d]", i)
		r := &rules[i]

		if r.ID == "" {
			return &ValidationError{Field: field + ".id", Message: "rule id must not be empty", Code: ErrRuleIDEmpty}
		}
		if prev, dup := seen[r.ID]; dup {
			return &ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate rule id %q (first declared at rules[%d])", r.ID, prev),
				Code:    ErrDuplicateRuleID,
			}
		}
		seen[r.ID] = i

		if r.Signature == "" {
			return &ValidationError{
				Field:   field + ".signature",
				Message: "idempotency signature must not be empty: without it re-runs are not safe no-ops",
				Code:    ErrSignatureEmpty,
			}
		}
		if !patch.IsValidMode(r.Mode) {
			return &ValidationError{
				Field:   field + ".mode",
				Message: fmt.Sprintf("invalid mode %q: must be one of %v", r.Mode, patch.ValidModes),
				Code:    ErrInvalidMode,
			}
		}
		if len(r.Candidates) == 0 {
			return &ValidationError{Field: field + ".candidates", Message: "at least one candidate is required", Code: ErrNoCandidates}
		}
		for j := range r.Candidates {
			if r.Candidates[j].Pattern == "" {
				return &ValidationError{
					Field:   fmt.Sprintf("%s.candidates[%d].pattern", field, j),
					Message: "pattern must not be empty",
					Code:    ErrEmptyPattern,
				}
			}
		}

		if err := r.Compile(); err != nil {
			code := ErrInvalidPattern
			var re *patch.RuleError
			if errors.As(err, &re) && re.Code == patch.ErrCodeInvalidRule {
				code = ErrTemplateSyntax
			}
			return &ValidationError{Field: field, Message: err.Error(), Code: code}
		}
	}
	return nil
}
