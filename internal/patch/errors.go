package patch

import (
	"errors"
	"fmt"
)

// Rule error codes (E200-E299).
const (
	// ErrCodeInvalidRule indicates a structurally malformed rule
	// (missing id, unknown mode, no candidates, bad template syntax).
	ErrCodeInvalidRule = "E201"

	// ErrCodeInvalidPattern indicates a candidate pattern that does not
	// compile as a regular expression.
	ErrCodeInvalidPattern = "E202"

	// ErrCodeTemplate indicates a template referencing a capture group
	// the matched candidate did not produce. Distinct from not-found so
	// an operator can tell "pattern wrong" from "template wrong".
	ErrCodeTemplate = "E203"
)

// RuleError represents a fatal condition detected while compiling or
// applying a rule. Fatal means the pipeline for the current artifact
// aborts; the artifact is never written in that case.
type RuleError struct {
	// Code identifies the error category.
	Code string

	// Message is a human-readable description.
	Message string

	// RuleID identifies the affected rule.
	RuleID string

	// Candidate is the index of the offending candidate, or -1 when the
	// error is not candidate-specific.
	Candidate int
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	if e.RuleID != "" && e.Candidate >= 0 {
		return fmt.Sprintf("%s: %s (rule=%s, candidate=%d)", e.Code, e.Message, e.RuleID, e.Candidate)
	}
	if e.RuleID != "" {
		return fmt.Sprintf("%s: %s (rule=%s)", e.Code, e.Message, e.RuleID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsTemplateError returns true if the error is a template rendering
// error. Uses errors.As to handle wrapped errors.
func IsTemplateError(err error) bool {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code == ErrCodeTemplate
	}
	return false
}

// IsInvalidRuleError returns true if the error is a rule compilation
// error (structure or pattern). Uses errors.As to handle wrapped errors.
func IsInvalidRuleError(err error) bool {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidRule || re.Code == ErrCodeInvalidPattern
	}
	return false
}

// NewInvalidRuleError creates a RuleError for a malformed rule.
func NewInvalidRuleError(ruleID, message string) *RuleError {
	return &RuleError{
		Code:      ErrCodeInvalidRule,
		Message:   message,
		RuleID:    ruleID,
		Candidate: -1,
	}
}

// NewInvalidPatternError creates a RuleError for an uncompilable
// candidate pattern.
func NewInvalidPatternError(ruleID string, candidate int, err error) *RuleError {
	return &RuleError{
		Code:      ErrCodeInvalidPattern,
		Message:   fmt.Sprintf("candidate pattern does not compile: %v", err),
		RuleID:    ruleID,
		Candidate: candidate,
	}
}

// NewTemplateError creates a RuleError for a template referencing a
// capture group absent from the match.
func NewTemplateError(ruleID string, candidate, group, have int) *RuleError {
	return &RuleError{
		Code:      ErrCodeTemplate,
		Message:   fmt.Sprintf("template references group $%d but the match produced %d group(s)", group, have),
		RuleID:    ruleID,
		Candidate: candidate,
	}
}
