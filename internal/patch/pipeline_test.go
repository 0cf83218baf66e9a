package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokens struct{ token string }

func (s stubTokens) Generate() string { return s.token }

func TestNewPipeline_CompilesRulesUpFront(t *testing.T) {
	_, err := NewPipeline([]Rule{{
		ID:         "bad",
		Signature:  "x",
		Mode:       ModeReplace,
		Candidates: []Candidate{{Pattern: "(unclosed"}},
		Template:   "y",
	}}, nil)

	require.Error(t, err)
	assert.True(t, IsInvalidRuleError(err))
}

func TestNewPipeline_RejectsDuplicateIDs(t *testing.T) {
	rule := markerRule()
	_, err := NewPipeline([]Rule{rule, rule}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate rule id")
}

func TestPipeline_RunSequencesRules(t *testing.T) {
	rules := []Rule{
		{
			ID:         "add-marker-func",
			Signature:  "func f()",
			Mode:       ModeInsertAfter,
			Candidates: []Candidate{{Pattern: "    // marker\n", Literal: true}},
			Template:   "    func f() {}\n",
		},
		{
			// Anchors on the output of the previous rule: the buffer
			// flows rule to rule within one run.
			ID:         "annotate-func",
			Signature:  "@discardableResult",
			Mode:       ModeInsertBefore,
			Candidates: []Candidate{{Pattern: "    func f() {}\n", Literal: true}},
			Template:   "    @discardableResult\n",
		},
	}
	p, err := NewPipeline(rules, stubTokens{"run-1"})
	require.NoError(t, err)

	result, err := p.Run(classA)

	require.NoError(t, err)
	assert.Equal(t, "run-1", result.RunToken)
	assert.True(t, result.Changed)
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, StatusApplied, result.Outcomes[0].Status)
	assert.Equal(t, StatusApplied, result.Outcomes[1].Status)
	assert.Equal(t, "class A {\n    // marker\n    @discardableResult\n    func f() {}\n}\n", result.Text)
}

func TestPipeline_Idempotence(t *testing.T) {
	// Applying the same pipeline twice: applied then skipped, and the
	// text after the second run equals the text after the first.
	p, err := NewPipeline([]Rule{markerRule()}, stubTokens{"run"})
	require.NoError(t, err)

	first, err := p.Run(classA)
	require.NoError(t, err)
	require.Equal(t, StatusApplied, first.Outcomes[0].Status)

	second, err := p.Run(first.Text)
	require.NoError(t, err)

	assert.Equal(t, StatusSkipped, second.Outcomes[0].Status)
	assert.False(t, second.Changed)
	assert.Equal(t, first.Text, second.Text)
}

func TestPipeline_NotFoundContinuesToNextRule(t *testing.T) {
	rules := []Rule{
		{
			ID:         "no-anchor",
			Signature:  "zzz",
			Mode:       ModeReplace,
			Candidates: []Candidate{{Pattern: "absent", Literal: true}},
			Template:   "x",
		},
		markerRule(),
	}
	p, err := NewPipeline(rules, stubTokens{"run"})
	require.NoError(t, err)

	result, err := p.Run(classA)

	require.NoError(t, err)
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, StatusNotFound, result.Outcomes[0].Status)
	assert.Equal(t, StatusApplied, result.Outcomes[1].Status)
	assert.True(t, result.Changed)
}

func TestPipeline_NoOpRunReportsUnchanged(t *testing.T) {
	p, err := NewPipeline([]Rule{{
		ID:         "no-anchor",
		Signature:  "zzz",
		Mode:       ModeReplace,
		Candidates: []Candidate{{Pattern: "absent", Literal: true}},
		Template:   "x",
	}}, stubTokens{"run"})
	require.NoError(t, err)

	result, err := p.Run(classA)

	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, classA, result.Text)
}

func TestPipeline_TemplateErrorAborts(t *testing.T) {
	rules := []Rule{
		{
			ID:         "bad-template",
			Signature:  "zzz",
			Mode:       ModeReplace,
			Candidates: []Candidate{{Pattern: "class", Literal: true}},
			Template:   "$4",
		},
		markerRule(),
	}
	p, err := NewPipeline(rules, stubTokens{"run"})
	require.NoError(t, err)

	result, err := p.Run(classA)

	require.Error(t, err)
	assert.True(t, IsTemplateError(err))
	assert.Nil(t, result, "a fatal error must not leak a partially transformed buffer")
}

func TestPipeline_DefaultTokensAreUUIDs(t *testing.T) {
	p, err := NewPipeline([]Rule{markerRule()}, nil)
	require.NoError(t, err)

	result, err := p.Run(classA)

	require.NoError(t, err)
	assert.Len(t, result.RunToken, 36)
}

func TestUUIDv7Generator_TokensAreUnique(t *testing.T) {
	gen := UUIDv7Generator{}

	a := gen.Generate()
	b := gen.Generate()

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
