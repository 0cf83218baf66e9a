package patch

import (
	"fmt"
	"regexp"
)

// Mode selects how a rule's rendered template is combined with the
// matched span.
type Mode string

const (
	// ModeReplace substitutes the rendered template for the matched span.
	ModeReplace Mode = "replace"

	// ModeInsertBefore inserts the rendered template immediately before
	// the matched span. The span itself is preserved.
	ModeInsertBefore Mode = "insert-before"

	// ModeInsertAfter inserts the rendered template immediately after
	// the matched span. The span itself is preserved.
	ModeInsertAfter Mode = "insert-after"
)

// ValidModes lists the accepted mode strings, in documentation order.
var ValidModes = []Mode{ModeReplace, ModeInsertBefore, ModeInsertAfter}

// IsValidMode reports whether m is one of the accepted modes.
func IsValidMode(m Mode) bool {
	for _, v := range ValidModes {
		if m == v {
			return true
		}
	}
	return false
}

// Candidate is one pattern in a rule's ordered fallback chain. Each
// candidate describes one known prior state of the artifact.
type Candidate struct {
	// Pattern is either an exact substring (Literal true) or a regular
	// expression in Go syntax (Literal false). Matching is case-sensitive
	// and whitespace-significant: indentation is part of the anchor.
	Pattern string

	// Literal selects exact-substring matching instead of regexp.
	Literal bool

	// re is the compiled pattern, populated by Compile for non-literal
	// candidates.
	re *regexp.Regexp
}

// Rule is the declarative unit of one transformation: an idempotency
// signature, an ordered candidate chain, and a replacement template.
type Rule struct {
	// ID uniquely identifies the rule within a rule set. It appears in
	// outcomes, diagnostics, and logs.
	ID string

	// Signature is a literal substring whose presence anywhere in the
	// artifact means the rule's effect is already present. Checked before
	// any candidate; a present signature makes the rule a no-op.
	Signature string

	// Mode selects replace-span or insert-adjacent application.
	Mode Mode

	// Candidates are tried strictly in declared order; the first match
	// wins. Priority order encodes "most specific / most recent expected
	// prior state first".
	Candidates []Candidate

	// Template is the replacement text. $0 references the whole matched
	// span, $1..$N reference capture groups of a non-literal candidate,
	// ${N} is the braced form, and $$ renders a literal dollar sign.
	Template string
}

// Compile validates the rule and compiles its non-literal candidates.
// It must succeed before the rule is applied; Pipeline.Run compiles
// every rule up front so a malformed rule is rejected before any text
// is touched.
func (r *Rule) Compile() error {
	if r.ID == "" {
		return NewInvalidRuleError("", "rule id must not be empty")
	}
	if !IsValidMode(r.Mode) {
		return NewInvalidRuleError(r.ID, fmt.Sprintf("invalid mode %q: must be one of %v", r.Mode, ValidModes))
	}
	if len(r.Candidates) == 0 {
		return NewInvalidRuleError(r.ID, "rule must declare at least one candidate")
	}
	for i := range r.Candidates {
		c := &r.Candidates[i]
		if c.Pattern == "" {
			return NewInvalidRuleError(r.ID, fmt.Sprintf("candidate %d: empty pattern", i))
		}
		if c.Literal {
			continue
		}
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return NewInvalidPatternError(r.ID, i, err)
		}
		c.re = re
	}
	// Reject template syntax errors up front. Group bounds can only be
	// checked against an actual match, at application time.
	if err := checkTemplateSyntax(r.Template); err != nil {
		return NewInvalidRuleError(r.ID, err.Error())
	}
	return nil
}
