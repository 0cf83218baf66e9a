package patch

import "fmt"

// Status is the tri-state result of applying one rule.
type Status string

const (
	// StatusApplied means a candidate matched and the artifact changed.
	StatusApplied Status = "applied"

	// StatusSkipped means the idempotency signature was already present;
	// the artifact is unchanged.
	StatusSkipped Status = "skipped"

	// StatusNotFound means no candidate matched; the artifact is
	// unchanged. This is a normal outcome, not a failure.
	StatusNotFound Status = "not-found"
)

// Outcome records the terminal result of one rule application. Outcomes
// are never merged: a pipeline over N rules yields N outcomes (fewer
// only when a fatal error aborts the run).
type Outcome struct {
	// RuleID identifies the rule this outcome belongs to.
	RuleID string `json:"rule_id"`

	// Status is the tri-state result.
	Status Status `json:"status"`

	// Candidate is the index of the candidate that matched, or -1 for
	// skipped and not-found outcomes.
	Candidate int `json:"candidate"`

	// Diagnostic is a human-readable account of what happened: which
	// candidate matched, or why none did. Aimed at an operator driving
	// repeated corrective runs.
	Diagnostic string `json:"diagnostic"`
}

func appliedOutcome(r *Rule, m *Match) Outcome {
	return Outcome{
		RuleID:    r.ID,
		Status:    StatusApplied,
		Candidate: m.Candidate,
		Diagnostic: fmt.Sprintf("candidate %d matched at offset %d (%s, %d byte span)",
			m.Candidate, m.Start, r.Mode, m.End-m.Start),
	}
}

func skippedOutcome(r *Rule) Outcome {
	return Outcome{
		RuleID:     r.ID,
		Status:     StatusSkipped,
		Candidate:  -1,
		Diagnostic: fmt.Sprintf("signature %q already present, nothing to do", r.Signature),
	}
}

func notFoundOutcome(r *Rule) Outcome {
	return Outcome{
		RuleID:     r.ID,
		Status:     StatusNotFound,
		Candidate:  -1,
		Diagnostic: fmt.Sprintf("no anchor matched after trying %d candidate(s)", len(r.Candidates)),
	}
}
