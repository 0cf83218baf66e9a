package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graftkit/graft/internal/testutil"
)

const classAFixture = "class A {\n    // marker\n}\n"

func writeTarget(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.swift")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// applyDirect runs the apply command body with an injected token
// generator, bypassing flag parsing.
func applyDirect(t *testing.T, format, rulesPath, target string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)

	opts := &ApplyOptions{
		RootOptions: &RootOptions{Format: format},
		RulesPath:   rulesPath,
		Tokens:      testutil.NewFixedTokenGenerator("test-run-apply"),
	}
	return buf, runApply(opts, target, cmd)
}

func TestApply_PatchesTarget(t *testing.T) {
	rules := writeRulesFile(t, markerRulesCUE)
	target := writeTarget(t, classAFixture)

	out, err := applyDirect(t, "text", rules, target)

	require.NoError(t, err)
	assert.Equal(t, "class A {\n    // marker\n    func f() {}\n}\n", readFile(t, target))
	assert.Contains(t, out.String(), "applied")
	assert.Contains(t, out.String(), "add-func")
	assert.Contains(t, out.String(), "wrote "+target)
}

func TestApply_SecondRunIsNoOp(t *testing.T) {
	rules := writeRulesFile(t, markerRulesCUE)
	target := writeTarget(t, classAFixture)

	_, err := applyDirect(t, "text", rules, target)
	require.NoError(t, err)
	patched := readFile(t, target)

	out, err := applyDirect(t, "text", rules, target)
	require.NoError(t, err)

	assert.Equal(t, patched, readFile(t, target), "re-run must be byte-for-byte no-op")
	assert.Contains(t, out.String(), "skipped")
	assert.Contains(t, out.String(), "unchanged")
}

func TestApply_NotFoundLeavesFileUntouched(t *testing.T) {
	rules := writeRulesFile(t, `rules: [{
	id:        "add-func"
	signature: "func f()"
	mode:      "insert-after"
	candidates: [{pattern: "    // missing\n", literal: true}]
	template: "    func f() {}\n"
}]
`)
	target := writeTarget(t, classAFixture)

	out, err := applyDirect(t, "text", rules, target)

	require.NoError(t, err, "not-found is a normal outcome, not a failure")
	assert.Equal(t, classAFixture, readFile(t, target))
	assert.Contains(t, out.String(), "not-found")
}

func TestApply_JSONReport(t *testing.T) {
	rules := writeRulesFile(t, markerRulesCUE)
	target := writeTarget(t, classAFixture)

	out, err := applyDirect(t, "json", rules, target)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test-run-apply", resp.TraceID)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var report ApplyReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.True(t, report.Changed)
	assert.True(t, report.Written)
	assert.NotEqual(t, report.ChecksumBefore, report.ChecksumAfter)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, "add-func", report.Outcomes[0].RuleID)
}

func TestApply_MissingArtifactIsCommandError(t *testing.T) {
	rules := writeRulesFile(t, markerRulesCUE)

	_, err := applyDirect(t, "text", rules, filepath.Join(t.TempDir(), "absent.swift"))

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestApply_BadRulesIsCommandError(t *testing.T) {
	rules := writeRulesFile(t, "rules: \"not a list\"")
	target := writeTarget(t, classAFixture)

	_, err := applyDirect(t, "text", rules, target)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, classAFixture, readFile(t, target))
}

func TestApply_TemplateErrorIsFailureAndNoWrite(t *testing.T) {
	rules := writeRulesFile(t, `rules: [{
	id:        "bad-template"
	signature: "zzz"
	candidates: [{pattern: "class", literal: true}]
	template: "$3"
}]
`)
	target := writeTarget(t, classAFixture)

	_, err := applyDirect(t, "text", rules, target)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, classAFixture, readFile(t, target), "a failed pipeline must never write")
}

func TestApplyCommand_ViaRoot(t *testing.T) {
	rules := writeRulesFile(t, markerRulesCUE)
	target := writeTarget(t, classAFixture)

	buf := &bytes.Buffer{}
	root := NewRootCommand()
	root.SetOut(buf)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"apply", "--rules", rules, target})

	err := root.Execute()

	require.NoError(t, err)
	assert.Contains(t, readFile(t, target), "func f()")
}

func TestApplyCommand_RequiresRulesFlag(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"apply", "some-target"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rules")
}

func TestRootCommand_RejectsInvalidFormat(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"apply", "--format", "xml", "--rules", "r.cue", "t"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
