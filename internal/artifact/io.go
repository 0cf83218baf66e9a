package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// UnavailableError means the artifact could not be read (missing file,
// permission denied). Fatal for the artifact's pipeline; never retried
// automatically.
type UnavailableError struct {
	Path string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("artifact unavailable: %s: %v", e.Path, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// WriteError means the rewrite failed after a successful in-memory
// transform. The original file is untouched; the in-memory result is
// discarded by the caller.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("artifact write failed: %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsUnavailable returns true if the error is an UnavailableError.
// Uses errors.As to handle wrapped errors.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// Load reads the whole file into memory. The file handle is released
// before Load returns; the only handle the engine ever holds after this
// point is the short-lived one inside Save.
func Load(path string) (*Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &UnavailableError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &UnavailableError{Path: path, Err: fmt.Errorf("is a directory")}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &UnavailableError{Path: path, Err: err}
	}
	return &Artifact{
		Path: path,
		Text: string(data),
		mode: info.Mode().Perm(),
	}, nil
}

// Save rewrites the artifact all-or-nothing: the new content goes to a
// temp file in the target directory, is synced, then renamed over the
// original. A failure at any step leaves the original file byte-for-byte
// intact and removes the temp file.
func (a *Artifact) Save() error {
	dir := filepath.Dir(a.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(a.Path)+".tmp-*")
	if err != nil {
		return &WriteError{Path: a.Path, Err: err}
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Path: a.Path, Err: cause}
	}

	if _, err := tmp.WriteString(a.Text); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(a.mode); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: a.Path, Err: err}
	}
	if err := os.Rename(tmpName, a.Path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: a.Path, Err: err}
	}
	return nil
}
