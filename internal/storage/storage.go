// Package storage defines the filesystem primitives the mail sink writes through.
package storage

import (
	"context"
	"errors"
)

var (
	ErrInvalidPath   = errors.New("storage: invalid path")
	ErrInvalidConfig = errors.New("storage: invalid config")
	ErrAccessDenied  = errors.New("storage: access denied")
	ErrNotFound      = errors.New("storage: bucket or directory not found")
)

// Storage is the minimal filesystem surface the sink needs. Paths are
// slash-separated and relative to the backend's root.
type Storage interface {
	// MkdirAll ensures dir and all of its parents exist. It is not an error
	// for dir to exist already.
	MkdirAll(ctx context.Context, dir string) error

	// WriteFile creates or truncates name and writes data to it.
	WriteFile(ctx context.Context, name string, data []byte) error

	// Name returns the backend name for logging.
	Name() string
}
