// Package storage defines the whole-file snapshot abstraction used by the
// note store.
package storage

// Provider reads and replaces a single snapshot file.
type Provider interface {
	// Read returns the full snapshot. A missing file yields an error
	// matching os.ErrNotExist.
	Read() ([]byte, error)
	// Write atomically replaces the snapshot with content.
	Write(content []byte) error
	// Path returns the absolute path of the snapshot file.
	Path() string
}
