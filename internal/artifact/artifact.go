// Package artifact is the engine's only side-effecting boundary: scoped
// read, in-memory mutation, and all-or-nothing write-back of one target
// file.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
)

// Artifact is the full text content of one target file, loaded once per
// invocation and mutated only in memory.
type Artifact struct {
	// Path identifies the artifact on disk.
	Path string

	// Text is the current in-memory content.
	Text string

	// mode is the file mode observed at load time, preserved on save.
	mode fs.FileMode
}

// Checksum returns the sha256 hex digest of the raw text bytes.
// Used to verify no-op preservation: skipped and not-found outcomes must
// leave the checksum unchanged. The digest is over raw bytes with no
// normalization of any kind.
func (a *Artifact) Checksum() string {
	sum := sha256.Sum256([]byte(a.Text))
	return hex.EncodeToString(sum[:])
}
