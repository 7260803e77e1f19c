package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage implements Storage using the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	// Ensure base path exists
	if err := os.MkdirAll(filepath.Join(basePath, ".meta"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: basePath}, nil
}

// Save stores a file and returns its metadata
func (s *LocalStorage) Save(ctx context.Context, filename string, contentType string, r io.Reader) (*FileInfo, error) {
	fileID := uuid.New()

	// Sanitize filename and add UUID prefix for uniqueness
	safeFilename := sanitizeFilename(filename)
	storedFilename := fmt.Sprintf("%s_%s", fileID.String()[:8], safeFilename)
	filePath := filepath.Join(s.basePath, storedFilename)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	info := &FileInfo{
		ID:          fileID,
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		Path:        storedFilename,
		CreatedAt:   time.Now(),
	}

	if err := s.saveMetadata(fileID, info); err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, err
	}

	return info, nil
}

// Open returns a reader and metadata for a stored file
func (s *LocalStorage) Open(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	info, err := s.getInfo(fileID)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.basePath, info.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	return f, info, nil
}

// Delete removes a file by its ID
func (s *LocalStorage) Delete(ctx context.Context, fileID uuid.UUID) error {
	info, err := s.getInfo(fileID)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.basePath, info.Path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	os.Remove(s.metaPath(fileID))
	return nil
}

// List returns metadata for every stored file
func (s *LocalStorage) List(ctx context.Context) ([]*FileInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, ".meta"))
	if err != nil {
		if os.IsNotExist(err) {
			return []*FileInfo{}, nil
		}
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	infos := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		info, err := s.getInfo(id)
		if err != nil {
			continue
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// RemoveOlderThan deletes files created before the cutoff
func (s *LocalStorage) RemoveOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	infos, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, info := range infos {
		if !info.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.Delete(ctx, info.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *LocalStorage) metaPath(fileID uuid.UUID) string {
	return filepath.Join(s.basePath, ".meta", fileID.String()+".json")
}

func (s *LocalStorage) saveMetadata(fileID uuid.UUID, info *FileInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(fileID), data, 0644); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}
	return nil
}

func (s *LocalStorage) getInfo(fileID uuid.UUID) (*FileInfo, error) {
	data, err := os.ReadFile(s.metaPath(fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", fileID)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &info, nil
}

// sanitizeFilename strips path separators and keeps the base name safe
// to store on disk.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "file"
	}
	return name
}
