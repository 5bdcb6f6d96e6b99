// Package checksum fingerprints snapshot contents so that unchanged files can
// be recognised without comparing them byte by byte.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Changed reports whether data differs from the content fingerprinted as prev.
// An empty prev always counts as changed.
func Changed(prev string, data []byte) bool {
	return prev == "" || prev != Sum(data)
}
