package cli

import (
	"fmt"
	"log/slog"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/graftkit/graft/internal/artifact"
	"github.com/graftkit/graft/internal/patch"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	RulesPath string
	Context   int

	// Tokens allows overriding the run token generator (for testing).
	Tokens patch.RunTokenGenerator
}

// PlanReport is the dry-run counterpart of ApplyReport: the same
// outcomes plus a unified diff of what apply would write.
type PlanReport struct {
	Artifact string          `json:"artifact"`
	Outcomes []patch.Outcome `json:"outcomes"`
	Changed  bool            `json:"changed"`
	Diff     string          `json:"diff,omitempty"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <target-file>",
		Short: "Preview what apply would change, without writing",
		Long: `Run the patch pipeline against an in-memory copy of the target and
show per-rule outcomes plus a unified diff of the would-be result.
The target file is never written.

Example:
  graft plan --rules rules.cue Services/Client.swift`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RulesPath, "rules", "", "path to CUE rule file or directory (required)")
	cmd.Flags().IntVar(&opts.Context, "context", 3, "unified diff context lines")
	_ = cmd.MarkFlagRequired("rules")

	return cmd
}

func runPlan(opts *PlanOptions, target string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	pipeline, err := buildPipeline(opts.RulesPath, opts.Tokens, logger)
	if err != nil {
		return err
	}

	art, err := artifact.Load(target)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load artifact", err)
	}

	result, err := pipeline.Run(art.Text)
	if err != nil {
		return WrapExitError(ExitFailure, "pipeline aborted", err)
	}
	logOutcomes(logger, result)

	report := &PlanReport{
		Artifact: target,
		Outcomes: result.Outcomes,
		Changed:  result.Changed,
	}

	if result.Changed {
		diff, err := renderDiff(target, art.Text, result.Text, opts.Context)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to render diff", err)
		}
		report.Diff = diff
	}

	return outputPlanResult(formatter, report, result)
}

// renderDiff produces a unified diff between the current artifact text
// and the planned result.
func renderDiff(path, before, after string, context int) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path + " (planned)",
		Context:  context,
	})
}

func outputPlanResult(f *OutputFormatter, report *PlanReport, result *patch.Result) error {
	if f.Format == "json" {
		return f.Success(report, result.RunToken)
	}

	for _, o := range report.Outcomes {
		fmt.Fprintf(f.Writer, "%-10s %-30s %s\n", o.Status, o.RuleID, o.Diagnostic)
	}
	if !report.Changed {
		fmt.Fprintf(f.Writer, "%s unchanged, nothing to apply\n", report.Artifact)
		return nil
	}
	fmt.Fprintln(f.Writer)
	fmt.Fprint(f.Writer, report.Diff)
	return nil
}
