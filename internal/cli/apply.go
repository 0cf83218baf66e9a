package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/graftkit/graft/internal/artifact"
	"github.com/graftkit/graft/internal/patch"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	RulesPath string

	// Tokens allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Tokens patch.RunTokenGenerator
}

// ApplyReport is the operator-facing result of one apply run.
type ApplyReport struct {
	Artifact       string          `json:"artifact"`
	ChecksumBefore string          `json:"checksum_before"`
	ChecksumAfter  string          `json:"checksum_after"`
	Outcomes       []patch.Outcome `json:"outcomes"`
	Changed        bool            `json:"changed"`
	Written        bool            `json:"written"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <target-file>",
		Short: "Apply patch rules to a target file",
		Long: `Apply a rule file's patch pipeline to one target file.

Rules run strictly in declaration order over an in-memory copy of the
target. The file is rewritten (atomically) only when at least one rule
applied; skipped and not-found outcomes leave it untouched. Re-running
the same rules against an already-patched file is a safe no-op.

Example:
  graft apply --rules rules.cue Services/Client.swift
  graft apply --rules ./rules Services/Client.swift --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RulesPath, "rules", "", "path to CUE rule file or directory (required)")
	_ = cmd.MarkFlagRequired("rules")

	return cmd
}

func runApply(opts *ApplyOptions, target string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)

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

	logger.Debug("loading artifact", "path", target)
	art, err := artifact.Load(target)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load artifact", err)
	}
	before := art.Checksum()

	result, err := pipeline.Run(art.Text)
	if err != nil {
		// Fatal rule error: the in-memory result is discarded, the file
		// is never written.
		return WrapExitError(ExitFailure, "pipeline aborted", err)
	}
	logOutcomes(logger, result)

	report := &ApplyReport{
		Artifact:       target,
		ChecksumBefore: before,
		Outcomes:       result.Outcomes,
		Changed:        result.Changed,
	}

	if result.Changed {
		art.Text = result.Text
		if err := art.Save(); err != nil {
			return WrapExitError(ExitFailure, "failed to write artifact", err)
		}
		report.Written = true
		logger.Info("artifact written", "path", target, "run", result.RunToken)
	} else {
		logger.Info("no changes, artifact untouched", "path", target, "run", result.RunToken)
	}
	report.ChecksumAfter = art.Checksum()

	return outputRunResult(formatter, report, result)
}

// buildPipeline loads the rule file and constructs the pipeline.
func buildPipeline(rulesPath string, tokens patch.RunTokenGenerator, logger *slog.Logger) (*patch.Pipeline, error) {
	logger.Debug("loading rules", "path", rulesPath)
	loadResult, loadErrors := LoadRules(rulesPath, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return nil, WrapExitError(ExitCommandError, "failed to load rules", loadErrors[0])
	}
	logger.Debug("rules loaded", "count", len(loadResult.Rules), "files", loadResult.FileCount)

	pipeline, err := patch.NewPipeline(loadResult.Rules, tokens)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build pipeline", err)
	}
	return pipeline, nil
}

func logOutcomes(logger *slog.Logger, result *patch.Result) {
	for _, o := range result.Outcomes {
		logger.Debug("rule finished",
			"rule", o.RuleID,
			"status", o.Status,
			"candidate", o.Candidate,
			"run", result.RunToken,
		)
	}
}

// outputRunResult renders the per-rule outcome report.
func outputRunResult(f *OutputFormatter, report *ApplyReport, result *patch.Result) error {
	if f.Format == "json" {
		return f.Success(report, result.RunToken)
	}

	for _, o := range report.Outcomes {
		fmt.Fprintf(f.Writer, "%-10s %-30s %s\n", o.Status, o.RuleID, o.Diagnostic)
	}
	if report.Written {
		fmt.Fprintf(f.Writer, "wrote %s\n", report.Artifact)
	} else {
		fmt.Fprintf(f.Writer, "%s unchanged\n", report.Artifact)
	}
	return nil
}
