package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/providers"
)

// LocalStorage keeps uploaded documents under a root directory, one
// subdirectory per visit
type LocalStorage struct {
	root string
}

var _ providers.DocumentStorage = (*LocalStorage)(nil)

// NewLocalStorage creates the root directory if needed
func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

// Save writes content to a fresh file and returns its path relative to root.
// The stored name never reuses the client's filename beyond its extension.
func (s *LocalStorage) Save(ctx context.Context, visitID, filename string, content io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	if visitID == "" || strings.ContainsAny(visitID, `/\`) || visitID == "." || visitID == ".." {
		return "", 0, fmt.Errorf("invalid visit id %q", visitID)
	}

	dir := filepath.Join(s.root, visitID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", 0, fmt.Errorf("failed to create visit directory: %w", err)
	}

	rel := filepath.Join(visitID, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
	f, err := os.OpenFile(filepath.Join(s.root, rel), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create document file: %w", err)
	}

	n, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.root, rel))
		return "", 0, fmt.Errorf("failed to write document: %w", err)
	}

	return filepath.ToSlash(rel), n, nil
}

// Open opens a stored document. Paths outside the root are rejected.
func (s *LocalStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return f, nil
}

// Delete removes a stored document
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// resolve maps a stored path to a file under root
func (s *LocalStorage) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid document path %q", path)
	}
	return filepath.Join(s.root, clean), nil
}
