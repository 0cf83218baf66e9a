package patch

// applyMatch splices the rendered fragment into text according to the
// rule's mode. Every byte outside the matched span is preserved exactly;
// insert-adjacent modes also preserve the span itself.
func applyMatch(text string, mode Mode, m *Match, rendered string) string {
	switch mode {
	case ModeInsertBefore:
		return text[:m.Start] + rendered + text[m.Start:]
	case ModeInsertAfter:
		return text[:m.End] + rendered + text[m.End:]
	default: // ModeReplace
		return text[:m.Start] + rendered + text[m.End:]
	}
}

// ApplyRule runs one compiled rule against text and returns the new text
// plus the rule's outcome.
//
// Evaluation order is guard, then candidates, then application:
//   - signature present anywhere: skipped, text returned unchanged
//   - no candidate matches: not-found, text returned unchanged
//   - first matching candidate: template rendered with the match's
//     capture groups and spliced in per the rule's mode
//
// The only error is a TemplateError: the template referenced a capture
// group the winning candidate did not produce. The returned text is then
// the input text, unchanged.
func ApplyRule(text string, r *Rule) (string, Outcome, error) {
	if r.Signature != "" && containsSignature(text, r.Signature) {
		return text, skippedOutcome(r), nil
	}

	m := findFirst(text, r)
	if m == nil {
		return text, notFoundOutcome(r), nil
	}

	rendered, err := renderTemplate(r.ID, m.Candidate, r.Template, m.Groups)
	if err != nil {
		return text, Outcome{}, err
	}

	return applyMatch(text, r.Mode, m, rendered), appliedOutcome(r, m), nil
}
