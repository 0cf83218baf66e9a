package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileRule(t *testing.T, r Rule) *Rule {
	t.Helper()
	require.NoError(t, r.Compile())
	return &r
}

func TestFindCandidate_Literal(t *testing.T) {
	text := "class A {\n    // marker\n}\n"
	c := Candidate{Pattern: "    // marker\n", Literal: true}

	m := findCandidate(text, &c, 0)

	require.NotNil(t, m)
	assert.Equal(t, 10, m.Start)
	assert.Equal(t, 24, m.End)
	assert.Equal(t, []string{"    // marker\n"}, m.Groups)
	assert.Equal(t, 0, m.Candidate)
}

func TestFindCandidate_LiteralNotPresent(t *testing.T) {
	c := Candidate{Pattern: "    // missing\n", Literal: true}

	m := findCandidate("class A {\n    // marker\n}\n", &c, 0)

	assert.Nil(t, m)
}

func TestFindCandidate_RegexCaptures(t *testing.T) {
	r := compileRule(t, Rule{
		ID:         "r",
		Signature:  "nope",
		Mode:       ModeReplace,
		Candidates: []Candidate{{Pattern: `func (\w+)\((\w*)\)`}},
		Template:   "x",
	})

	m := findCandidate("    func load(path) {\n", &r.Candidates[0], 0)

	require.NotNil(t, m)
	assert.Equal(t, []string{"func load(path)", "load", "path"}, m.Groups)
	assert.Equal(t, 4, m.Start)
}

func TestFindCandidate_OptionalGroupAbsent(t *testing.T) {
	r := compileRule(t, Rule{
		ID:         "r",
		Signature:  "nope",
		Mode:       ModeReplace,
		Candidates: []Candidate{{Pattern: `a(x)?b`}},
		Template:   "x",
	})

	m := findCandidate("ab", &r.Candidates[0], 0)

	require.NotNil(t, m)
	assert.Equal(t, []string{"ab", ""}, m.Groups)
}

func TestFindCandidate_FirstOccurrenceByDocumentOrder(t *testing.T) {
	// The engine's documented policy: an ambiguous pattern resolves to
	// the first occurrence, never to a guessed intent.
	text := "call()\nother\ncall()\n"
	c := Candidate{Pattern: "call()", Literal: true}

	m := findCandidate(text, &c, 0)

	require.NotNil(t, m)
	assert.Equal(t, 0, m.Start)
}

func TestFindFirst_FallbackOrder(t *testing.T) {
	// Only the second of three candidates matches: the match must
	// report candidate index 1, and candidate 0 is never "found".
	r := compileRule(t, Rule{
		ID:        "fallback",
		Signature: "nope",
		Mode:      ModeReplace,
		Candidates: []Candidate{
			{Pattern: "newest shape", Literal: true},
			{Pattern: "older shape", Literal: true},
			{Pattern: "oldest shape", Literal: true},
		},
		Template: "x",
	})
	text := "prefix older shape suffix oldest shape"

	m := findFirst(text, r)

	require.NotNil(t, m)
	assert.Equal(t, 1, m.Candidate)
	assert.Equal(t, "older shape", m.Groups[0])
}

func TestFindFirst_DeclaredOrderWinsOverDocumentOrder(t *testing.T) {
	// Candidate priority is declaration order, not position in the
	// artifact: an earlier candidate matching later in the document
	// still wins over a later candidate matching earlier.
	r := compileRule(t, Rule{
		ID:        "priority",
		Signature: "nope",
		Mode:      ModeReplace,
		Candidates: []Candidate{
			{Pattern: "specific", Literal: true},
			{Pattern: "generic", Literal: true},
		},
		Template: "x",
	})
	text := "generic first, specific later"

	m := findFirst(text, r)

	require.NotNil(t, m)
	assert.Equal(t, 0, m.Candidate)
	assert.Equal(t, "specific", m.Groups[0])
}

func TestFindFirst_Exhausted(t *testing.T) {
	r := compileRule(t, Rule{
		ID:         "none",
		Signature:  "nope",
		Mode:       ModeReplace,
		Candidates: []Candidate{{Pattern: "absent", Literal: true}},
		Template:   "x",
	})

	assert.Nil(t, findFirst("nothing here", r))
}

func TestMatching_IsWhitespaceSignificant(t *testing.T) {
	// Indentation is part of the anchor; a tab does not match spaces.
	c := Candidate{Pattern: "    // marker", Literal: true}

	assert.Nil(t, findCandidate("\t// marker\n", &c, 0))
}
