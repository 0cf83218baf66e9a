package patch

import "fmt"

// Result is the terminal state of one pipeline run: the final text, one
// outcome per rule executed, and the run token for log correlation.
type Result struct {
	// RunToken correlates this run across logs and reports.
	RunToken string `json:"run_token"`

	// Text is the final artifact text after every rule ran.
	Text string `json:"-"`

	// Outcomes holds one entry per rule, in execution order.
	Outcomes []Outcome `json:"outcomes"`

	// Changed reports whether any rule applied. The caller persists the
	// artifact only when Changed is true.
	Changed bool `json:"changed"`
}

// Pipeline applies an ordered list of rules to one text buffer. The
// buffer's ownership transfers linearly from rule to rule; there is no
// concurrency and no shared state beyond the buffer itself.
type Pipeline struct {
	rules  []Rule
	tokens RunTokenGenerator
}

// NewPipeline compiles the rules and returns a pipeline ready to run.
// A malformed rule is rejected here, before any artifact is touched.
// gen may be nil, in which case UUIDv7 run tokens are generated.
func NewPipeline(rules []Rule, gen RunTokenGenerator) (*Pipeline, error) {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	seen := make(map[string]struct{}, len(rules))
	for i := range rules {
		if err := rules[i].Compile(); err != nil {
			return nil, err
		}
		if _, dup := seen[rules[i].ID]; dup {
			return nil, NewInvalidRuleError(rules[i].ID, "duplicate rule id")
		}
		seen[rules[i].ID] = struct{}{}
	}
	return &Pipeline{rules: rules, tokens: gen}, nil
}

// Rules returns the compiled rules in execution order.
func (p *Pipeline) Rules() []Rule {
	return p.rules
}

// Run executes every rule in declared order against text.
//
// skipped and not-found outcomes let the run continue to the next rule;
// a fatal error (TemplateError) aborts immediately and discards the
// in-memory text, so a partially transformed buffer never escapes.
func (p *Pipeline) Run(text string) (*Result, error) {
	res := &Result{
		RunToken: p.tokens.Generate(),
		Outcomes: make([]Outcome, 0, len(p.rules)),
	}

	for i := range p.rules {
		next, outcome, err := ApplyRule(text, &p.rules[i])
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", p.rules[i].ID, err)
		}
		text = next
		res.Outcomes = append(res.Outcomes, outcome)
		if outcome.Status == StatusApplied {
			res.Changed = true
		}
	}

	res.Text = text
	return res, nil
}
