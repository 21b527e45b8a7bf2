// Package blob defines the attachment archive: binary files keyed by name,
// independent of ledger identity.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Driver identifies a concrete archive backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
)

var (
	// ErrExists is returned when a name is already taken.
	ErrExists = errors.New("attachment already exists")
	// ErrNotFound is returned when a name does not exist.
	ErrNotFound = errors.New("attachment not found")
	// ErrInvalidName is returned for empty or path-escaping names.
	ErrInvalidName = errors.New("invalid attachment name")
)

// Info describes an archived file.
type Info struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the archive surface used by the HTTP layer and the workflow.
type Store interface {
	// Put stores r under name and returns the reference to embed in a record.
	Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, name string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Rename(ctx context.Context, from, to string) error
	Driver() Driver
}

// CleanName rejects names that are empty, absolute or escape the archive root.
func CleanName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	clean := path.Clean(name)
	if clean == "." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return clean, nil
}
