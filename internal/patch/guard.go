package patch

import "strings"

// containsSignature checks the idempotency signature. Signatures are
// literal substrings, not patterns: a literal cannot false-positive on
// regex metacharacters, and presence anywhere in the artifact counts.
func containsSignature(text, signature string) bool {
	return strings.Contains(text, signature)
}
