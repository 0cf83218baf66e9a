// Package testutil provides deterministic helpers for engine and CLI tests.
package testutil

import "sync"

// FixedTokenGenerator generates the same run token every time.
//
// This enables deterministic test execution and golden snapshot
// comparison: the same scenario with the same FixedTokenGenerator
// produces byte-identical reports.
//
// Thread-safety: FixedTokenGenerator is stateless and safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a generator that always returns token.
// If token is empty, Generate() returns "test-run-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-run-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed run token.
//
// Implements patch.RunTokenGenerator.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}

// SequenceTokenGenerator returns predetermined run tokens in order.
//
// Tests can provide a known sequence of tokens and verify exact report
// output across successive corrective runs.
//
// Thread-safety: SequenceTokenGenerator is safe for concurrent use via
// internal mutex.
type SequenceTokenGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewSequenceTokenGenerator creates a generator that returns tokens in order.
//
// Example:
//
//	gen := testutil.NewSequenceTokenGenerator("run-1", "run-2")
//	gen.Generate() // "run-1"
//	gen.Generate() // "run-2"
//	gen.Generate() // panic: all tokens exhausted
func NewSequenceTokenGenerator(tokens ...string) *SequenceTokenGenerator {
	return &SequenceTokenGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
//
// Panics if all tokens have been consumed. This is a fail-fast approach
// to catch test misconfiguration (test ran more pipelines than expected).
func (g *SequenceTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("SequenceTokenGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
