// Package storage is the file-object store the day-log pipeline uploads
// screenshots and documents into. Paths are always scoped under the owning
// user's id; anything resembling directory traversal is rejected before it
// reaches disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidPath = errors.New("invalid storage path")

type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// ObjectPath builds the store-relative path for a user-owned object and
// rejects names that could escape the user's directory.
func ObjectPath(userID uuid.UUID, kind, name string) (string, error) {
	if err := checkName(kind); err != nil {
		return "", err
	}
	if err := checkName(name); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join(userID.String(), kind, name)), nil
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty segment", ErrInvalidPath)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: traversal sequence in %q", ErrInvalidPath, name)
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("%w: separator in %q", ErrInvalidPath, name)
	}
	return nil
}

// Upload writes the object and returns its store-relative path. path must
// come from ObjectPath.
func (s *FileStore) Upload(path string, r io.Reader) (string, error) {
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("%w: traversal sequence in %q", ErrInvalidPath, path)
	}
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(full)
		return "", err
	}
	return path, nil
}

// Open retrieves a previously uploaded object by its store-relative path.
func (s *FileStore) Open(path string) (io.ReadCloser, error) {
	if strings.Contains(path, "..") {
		return nil, fmt.Errorf("%w: traversal sequence in %q", ErrInvalidPath, path)
	}
	return os.Open(filepath.Join(s.root, filepath.FromSlash(path)))
}
