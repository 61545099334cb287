// Package storage defines the FileStore interface used to persist exported
// slideshow archives. The terminal surface writes slideshow.zip through it,
// either to a local directory or to an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
)

// FileStore is a minimal interface for file-oriented storage.
//
// Paths are forward-slash separated and relative to the store root.
// Implementations must be safe for concurrent use.
type FileStore interface {
	// Read opens the named file for reading.
	// If the file does not exist, an error wrapping os.ErrNotExist is returned.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing. Content becomes visible only
	// after Close returns nil; a failed or abandoned write leaves any
	// previous file untouched.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Missing files are not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)

	// Location returns a human-readable location for path, such as an
	// absolute filesystem path or an s3:// URL.
	Location(path string) string
}

// WriteFile writes the output of fn to path. If fn fails the partial file
// is discarded.
func WriteFile(ctx context.Context, fs FileStore, path string, fn func(io.Writer) error) error {
	w, err := fs.Write(ctx, path)
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", path, err)
	}
	if err := fn(w); err != nil {
		if a, ok := w.(interface{ Abort() }); ok {
			a.Abort()
		} else {
			w.Close()
		}
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: commit %s: %w", path, err)
	}
	return nil
}
