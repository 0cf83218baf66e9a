package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graftkit/graft/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Rules  int                        `json:"rules"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	allErrors := false

	cmd := &cobra.Command{
		Use:   "validate <rules-path>",
		Short: "Validate rule files without touching any artifact",
		Long: `Validate CUE patch rule files: syntax, required fields, candidate
pattern compilation, template references, and rule id uniqueness.
No artifact is read or written.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := LoadModeFailFast
			if allErrors {
				mode = LoadModeCollectAll
			}
			return runValidate(rootOpts, args[0], mode, cmd)
		},
	}

	cmd.Flags().BoolVar(&allErrors, "all-errors", false, "report every problem instead of stopping at the first")

	return cmd
}

func runValidate(opts *RootOptions, rulesPath string, mode LoadMode, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadRules(rulesPath, mode)

	// A path that cannot be loaded at all is a command error, distinct
	// from a rule file that loads but fails validation.
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s), %d rule(s)", loadResult.FileCount, len(loadResult.Rules))

	if len(loadErrors) > 0 {
		validationErrors := make([]compiler.ValidationError, 0, len(loadErrors))
		for _, err := range loadErrors {
			var loadErr *LoadError
			if errors.As(err, &loadErr) {
				validationErrors = append(validationErrors, compiler.ValidationError{
					Field:   "load",
					Message: loadErr.Message,
					Code:    loadErr.Code,
				})
				continue
			}
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "load",
				Message: err.Error(),
				Code:    ErrCodeGeneric,
			})
		}
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, len(loadResult.Rules))
}

func outputValidateError(f *OutputFormatter, code, message string) error {
	if err := f.Error(code, message, nil); err != nil {
		return err
	}
	// Load errors are command-level errors (exit code 2).
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

func outputValidationErrors(f *OutputFormatter, errs []compiler.ValidationError) error {
	if f.Format == "json" {
		if err := f.Success(ValidationResult{Valid: false, Errors: errs}, ""); err != nil {
			return err
		}
	} else {
		for _, e := range errs {
			fmt.Fprintf(f.Writer, "invalid [%s] %s: %s\n", e.Code, e.Field, e.Message)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(errs)))
}

func outputValidateSuccess(f *OutputFormatter, ruleCount int) error {
	if f.Format == "json" {
		return f.Success(ValidationResult{Valid: true, Rules: ruleCount}, "")
	}
	fmt.Fprintf(f.Writer, "valid: %d rule(s)\n", ruleCount)
	return nil
}
