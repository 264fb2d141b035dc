// Package fileid derives the key shared by a source's manifest record and its index document.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "src:"

// FileDocID returns a stable ID for the source at path. Relative paths are resolved
// against the working directory first, so the same file always yields the same ID;
// a moved or renamed source gets a new one.
func FileDocID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	hash := sha256.Sum256([]byte(filepath.Clean(path)))
	return prefix + hex.EncodeToString(hash[:16])
}
