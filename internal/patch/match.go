package patch

import "strings"

// Match locates one candidate's span in the artifact text.
//
// Known limitation: when a pattern matches more than one location, the
// span is the first occurrence by document order. The engine never
// attempts to disambiguate further; patterns must be anchored precisely
// enough to single out the intended location.
type Match struct {
	// Start and End delimit the matched span as byte offsets,
	// half-open [Start, End).
	Start int
	End   int

	// Groups holds the matched text per capture group. Groups[0] is the
	// whole span; a literal candidate produces only Groups[0]. A group
	// that participated in the pattern but matched nothing is the empty
	// string.
	Groups []string

	// Candidate is the index of the candidate that produced this match.
	Candidate int
}

// findCandidate searches text for one candidate and returns the match,
// or nil when the candidate does not occur. Matching is single-pass,
// case-sensitive, and whitespace-significant.
func findCandidate(text string, c *Candidate, index int) *Match {
	if c.Literal {
		start := strings.Index(text, c.Pattern)
		if start < 0 {
			return nil
		}
		end := start + len(c.Pattern)
		return &Match{
			Start:     start,
			End:       end,
			Groups:    []string{text[start:end]},
			Candidate: index,
		}
	}

	loc := c.re.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}
	groups := make([]string, len(loc)/2)
	for g := range groups {
		lo, hi := loc[2*g], loc[2*g+1]
		if lo < 0 {
			// Group did not participate in the match.
			groups[g] = ""
			continue
		}
		groups[g] = text[lo:hi]
	}
	return &Match{
		Start:     loc[0],
		End:       loc[1],
		Groups:    groups,
		Candidate: index,
	}
}

// findFirst tries the rule's candidates strictly in declared order and
// returns the first match, or nil when the chain is exhausted.
func findFirst(text string, r *Rule) *Match {
	for i := range r.Candidates {
		if m := findCandidate(text, &r.Candidates[i], i); m != nil {
			return m
		}
	}
	return nil
}
