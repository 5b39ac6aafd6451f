package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileDestination writes the export to a local file, replacing it
// atomically.
type FileDestination struct {
	path string
}

func NewFileDestination(path string) *FileDestination {
	return &FileDestination{path: path}
}

func (d *FileDestination) String() string { return d.path }

func (d *FileDestination) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".sitekeep-backup-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), d.path); err != nil {
		return fmt.Errorf("rename to %s: %w", d.path, err)
	}
	return nil
}
