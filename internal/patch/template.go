package patch

import (
	"errors"
	"strconv"
	"strings"
)

// Template reference syntax:
//
//	$0        whole matched span
//	$1..$N    capture group N
//	${N}      braced form, for references followed by a digit
//	$$        literal dollar sign
//
// A dollar sign followed by anything else is literal text, so replacement
// fragments containing incidental dollars (shell, Swift closures) do not
// need escaping unless a digit follows.
//
// Rendering is strict about group bounds: referencing a group the match
// did not produce is a TemplateError, not a silent empty string. The
// stdlib regexp Expand drops unknown references, which would hide a
// mistyped template from the operator.

// checkTemplateSyntax rejects malformed braced references at rule
// compilation time.
func checkTemplateSyntax(tmpl string) error {
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '$' || i+1 >= len(tmpl) {
			continue
		}
		next := tmpl[i+1]
		switch {
		case next == '$':
			i++
		case next == '{':
			j := i + 2
			for j < len(tmpl) && isDigit(tmpl[j]) {
				j++
			}
			if j == i+2 || j >= len(tmpl) || tmpl[j] != '}' {
				return errMalformedRef(tmpl[i:min(i+8, len(tmpl))])
			}
			i = j
		}
	}
	return nil
}

func errMalformedRef(ref string) error {
	return errors.New("malformed template reference near " + strconv.Quote(ref))
}

// renderTemplate interpolates capture groups into the template.
// groups[0] is the whole match. Returns a TemplateError when a reference
// exceeds the groups produced by the match.
func renderTemplate(ruleID string, candidate int, tmpl string, groups []string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		if ch != '$' || i+1 >= len(tmpl) {
			b.WriteByte(ch)
			continue
		}
		next := tmpl[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '{':
			j := i + 2
			for j < len(tmpl) && isDigit(tmpl[j]) {
				j++
			}
			// Syntax was validated at compile time; j points at '}'.
			n := parseGroup(tmpl[i+2 : j])
			if n >= len(groups) {
				return "", NewTemplateError(ruleID, candidate, n, len(groups))
			}
			b.WriteString(groups[n])
			i = j
		case isDigit(next):
			j := i + 1
			for j < len(tmpl) && isDigit(tmpl[j]) {
				j++
			}
			n := parseGroup(tmpl[i+1 : j])
			if n >= len(groups) {
				return "", NewTemplateError(ruleID, candidate, n, len(groups))
			}
			b.WriteString(groups[n])
			i = j - 1
		default:
			b.WriteByte('$')
		}
	}
	return b.String(), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func parseGroup(digits string) int {
	n := 0
	for i := 0; i < len(digits); i++ {
		n = n*10 + int(digits[i]-'0')
		if n > 999 {
			return 999
		}
	}
	return n
}
