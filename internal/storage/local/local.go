// Package local implements storage.Storage on the operating system filesystem.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shineum/mailsink-lite/internal/storage"
)

var _ storage.Storage = (*Storage)(nil)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Storage writes directly to the OS filesystem. Relative paths resolve
// against the process working directory.
type Storage struct{}

// New creates a local filesystem storage.
func New() *Storage {
	return &Storage{}
}

// MkdirAll creates dir recursively.
func (s *Storage) MkdirAll(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir == "" {
		return fmt.Errorf("%w: empty directory", storage.ErrInvalidPath)
	}
	return os.MkdirAll(filepath.FromSlash(dir), dirPerm)
}

// WriteFile creates or truncates name. The parent directory must exist.
func (s *Storage) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: empty file name", storage.ErrInvalidPath)
	}
	return os.WriteFile(filepath.FromSlash(name), data, filePerm)
}

// Name returns the backend name.
func (s *Storage) Name() string {
	return "local"
}
