package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/graftkit/graft/internal/compiler"
	"github.com/graftkit/graft/internal/patch"
)

// LoadMode controls how errors are handled during rule loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading rule files.
type LoadResult struct {
	Rules     []patch.Rule
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during rule loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadRules loads and compiles patch rules from a CUE file or a
// directory of CUE files. Declaration order in the file is pipeline
// execution order.
func LoadRules(path string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rules path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing rules path: %v", err)}}
	}

	if info.IsDir() {
		return loadRulesDir(path, mode)
	}
	return loadRulesFile(path, mode)
}

// loadRulesFile compiles a single standalone CUE rule file.
func loadRulesFile(path string, mode LoadMode) (*LoadResult, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading rules file: %v", err)}}
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	return compileLoaded(value, 1, mode)
}

// loadRulesDir compiles all CUE files in a directory as one instance,
// the way a rule set split across files is meant to be authored.
func loadRulesDir(dir string, mode LoadMode) (*LoadResult, []error) {
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	ctx := cuecontext.New()
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	return compileLoaded(value, len(cueFiles), mode)
}

// compileLoaded compiles each rule in the built CUE value, honoring the
// load mode: fail-fast stops at the first bad rule, collect-all keeps
// going so an operator sees every problem in one run.
func compileLoaded(value cue.Value, fileCount int, mode LoadMode) (*LoadResult, []error) {
	var errs []error
	result := &LoadResult{
		CUEValue:  value,
		FileCount: fileCount,
	}

	rulesVal := value.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return result, []error{&LoadError{Code: ErrCodeCompileFailed, Message: "rules list is required"}}
	}
	iter, err := rulesVal.List()
	if err != nil {
		return result, []error{&LoadError{Code: ErrCodeCompileFailed, Message: fmt.Sprintf("rules must be a list: %v", err)}}
	}

	for i := 0; iter.Next(); i++ {
		rule, compileErr := compiler.CompileRule(iter.Value(), i)
		if compileErr != nil {
			errs = append(errs, convertCompileError(compileErr))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Rules = append(result.Rules, *rule)
	}

	if len(result.Rules) == 0 && len(errs) == 0 {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: "rules list is empty"}}
	}

	// Cross-rule validation only makes sense over a fully parsed list.
	if len(errs) == 0 {
		if valErr := compiler.ValidateRules(result.Rules); valErr != nil {
			errs = append(errs, convertCompileError(valErr))
		}
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompileFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	var valErr *compiler.ValidationError
	if errors.As(err, &valErr) {
		return &LoadError{
			Code:    valErr.Code,
			Message: fmt.Sprintf("%s: %s", valErr.Field, valErr.Message),
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: err.Error(),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeWriteFailed   = "E007" // Artifact write error
	ErrCodeCompileFailed = "E008" // Rule compilation failed
	ErrCodeArtifact      = "E009" // Artifact unavailable
)
