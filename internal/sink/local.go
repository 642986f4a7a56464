package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"
)

// Local writes files under Dir. Each file is written to a temporary file
// first and renamed into place.
type Local struct {
	Dir string
}

var _ Destination = (*Local)(nil)

func (l *Local) path(name string) string {
	return filepath.Join(l.Dir, filepath.FromSlash(name))
}

// URL returns the file path of name.
func (l *Local) URL(name string) string { return l.path(name) }

// Close is a no-op.
func (l *Local) Close() error { return nil }

// Write creates or replaces name.
func (l *Local) Write(ctx context.Context, name string, data []byte) error {
	log := klog.FromContext(ctx)
	dest := l.path(name)

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}
	tempFile, err := os.CreateTemp(dir, ".onnxtrace-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	shouldDeleteTempFile := true
	defer func() {
		if shouldDeleteTempFile {
			if err := os.Remove(tempFile.Name()); err != nil {
				log.Error(err, "removing temp file", "path", tempFile.Name())
			}
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("writing %q: %w", dest, err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempFile.Name(), dest); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	shouldDeleteTempFile = false

	log.V(1).Info("wrote file", "path", dest, "bytes", len(data))
	return nil
}
