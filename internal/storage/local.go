// Package storage persists rendered report artifacts.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/agridane/erp_backend/internal/apperrors"
	portsrepo "github.com/agridane/erp_backend/internal/core/ports/repositories"
)

// LocalArtifactStore stores artifacts on the local filesystem under a single
// base directory. Paths handed to it are relative and ticket scoped.
type LocalArtifactStore struct {
	baseDir string
}

// NewLocalArtifactStore creates the store rooted at baseDir, creating the
// directory if needed.
func NewLocalArtifactStore(baseDir string) (*LocalArtifactStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory %s: %w", baseDir, err)
	}
	return &LocalArtifactStore{baseDir: baseDir}, nil
}

var _ portsrepo.ArtifactStore = (*LocalArtifactStore)(nil)

// resolve joins and confines the relative path to the base directory.
func (s *LocalArtifactStore) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean(relPath)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid artifact path %q", relPath)
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

// Save writes the artifact, creating intermediate directories.
func (s *LocalArtifactStore) Save(_ context.Context, relPath string, data []byte) error {
	path, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", relPath, err)
	}
	return nil
}

// Open reads the artifact back. A missing file maps to apperrors.ErrGone:
// the job state said the file exists, so absence means eviction.
func (s *LocalArtifactStore) Open(_ context.Context, relPath string) ([]byte, error) {
	path, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.ErrGone
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", relPath, err)
	}
	return data, nil
}

// Remove deletes the artifact. Removing a missing file is not an error.
func (s *LocalArtifactStore) Remove(_ context.Context, relPath string) error {
	path, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove artifact %s: %w", relPath, err)
	}
	return nil
}
