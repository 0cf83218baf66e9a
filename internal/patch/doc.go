// Package patch implements the idempotent, pattern-guarded patch engine.
//
// The engine mutates a single in-memory text buffer (the artifact) by
// applying declarative rules in sequence. Each rule follows the same
// contract: match, guard, replace, verify.
//
// Rule Evaluation:
//  1. Idempotency guard: if the rule's signature substring is already
//     present anywhere in the artifact, the rule is skipped before any
//     candidate pattern is considered.
//  2. Candidate matching: candidate patterns are tried strictly in the
//     order declared. The first candidate that matches wins; later
//     candidates are never evaluated. This encodes "the artifact may be
//     in any of N known prior states", most recent expected state first.
//  3. Application: the rendered template replaces the matched span, or is
//     inserted immediately before or after it, leaving every byte outside
//     the span untouched.
//
// Outcomes:
// Every rule application yields exactly one tri-state Outcome: applied,
// skipped, or not-found. Neither skipped nor not-found is an error; both
// leave the artifact byte-identical and let the pipeline continue. The
// only fatal conditions are a malformed rule and a template referencing a
// capture group the match did not produce.
//
// The engine is single-threaded by design: ownership of the text buffer
// transfers linearly from one rule to the next, and there is exactly one
// buffer per pipeline run. Concurrent pipelines over the same artifact
// are undefined.
package patch
