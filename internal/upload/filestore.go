// Package upload implements file uploads: validation, disk storage, and the
// metadata rows that track them.
package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FileStore writes upload bytes somewhere durable and returns the storage
// path recorded in the metadata row.
type FileStore interface {
	Save(category, fileName string, data []byte) (string, error)
	Remove(path string) error
}

// DiskStore keeps uploads on the local filesystem under a base directory,
// one subdirectory per category. File names are randomized; the original
// name survives only in the metadata row.
type DiskStore struct {
	baseDir string
}

// NewDiskStore creates the base directory if needed.
func NewDiskStore(baseDir string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{baseDir: baseDir}, nil
}

func (s *DiskStore) Save(category, fileName string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create category dir: %w", err)
	}
	name := uuid.NewString() + sanitizeExt(fileName)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// Remove deletes a stored file. A missing file is not an error; the
// metadata row is the source of truth and may outlive a pruned disk.
func (s *DiskStore) Remove(path string) error {
	if path == "" {
		return nil
	}
	clean := filepath.Clean(path)
	if !strings.HasPrefix(clean, filepath.Clean(s.baseDir)+string(filepath.Separator)) {
		return fmt.Errorf("path %q is outside the upload dir", path)
	}
	if err := os.Remove(clean); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// sanitizeExt keeps only a plain extension from a client file name.
func sanitizeExt(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
