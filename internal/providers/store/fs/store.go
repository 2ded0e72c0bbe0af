// Package fs provides a cache store backed by a directory of flat files,
// one file per key. Writes go through a temporary file and a rename so a
// crash never leaves a half-written entry behind.
package fs

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"

	"github.com/crmarques/restmodel/cache"
	"github.com/crmarques/restmodel/faults"
)

var _ cache.Store = (*Store)(nil)

type Store struct {
	baseDir string
}

func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, validationError("cache store base directory must not be empty", nil)
	}
	cleaned := filepath.Clean(baseDir)
	if err := os.MkdirAll(cleaned, 0o755); err != nil {
		return nil, internalError("failed to initialize cache store directory", err)
	}
	return &Store{baseDir: cleaned}, nil
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, internalError("failed to read cache entry", err)
	}
	return string(data), true, nil
}

func (s *Store) Set(_ context.Context, key string, value string) error {
	targetPath := s.entryPath(key)

	tempFile, err := os.CreateTemp(s.baseDir, ".restmodel-tmp-*")
	if err != nil {
		return internalError("failed to create temporary cache entry", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.WriteString(value); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return internalError("failed to write temporary cache entry", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to finalize temporary cache entry", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to replace cache entry", err)
	}
	return nil
}

func (s *Store) Remove(_ context.Context, key string) error {
	if err := os.Remove(s.entryPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return internalError("failed to remove cache entry", err)
	}
	return nil
}

// entryPath escapes the key into a single flat file name so keys holding
// path separators cannot reach outside the base directory.
func (s *Store) entryPath(key string) string {
	return filepath.Join(s.baseDir, url.PathEscape(key))
}

func validationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

func internalError(message string, cause error) error {
	return faults.NewTypedError(faults.InternalError, message, cause)
}
