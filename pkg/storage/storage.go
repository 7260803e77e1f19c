// Package storage provides file storage for uploaded reports and
// generated output, backed by the local filesystem.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for file storage operations
type Storage interface {
	// Save stores a file and returns its metadata
	Save(ctx context.Context, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Open returns a reader and metadata for a stored file
	Open(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes a file by its ID
	Delete(ctx context.Context, fileID uuid.UUID) error

	// List returns metadata for every stored file
	List(ctx context.Context) ([]*FileInfo, error)

	// RemoveOlderThan deletes files created before the cutoff and
	// returns how many were removed
	RemoveOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
