// Package uploads keeps the original bytes of uploaded documents on disk
// as {id}{ext} inside one directory.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Arlieeee/StudyBuddy-AI/internal/core/domain"
	"github.com/Arlieeee/StudyBuddy-AI/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.UploadStore = (*Store)(nil)

// Store writes uploads to a directory.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed.
// If dir is empty, defaults to data/uploads.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = domain.DefaultUploadDir
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes content as {id}{ext} and returns its path.
func (s *Store) Save(_ context.Context, id, ext string, content []byte) (string, error) {
	if err := validID(id); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, id+strings.ToLower(ext))
	if err := os.WriteFile(path, content, 0600); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}
	return path, nil
}

// Remove deletes every {id}.* file. Missing files are not an error.
func (s *Store) Remove(_ context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, id+".*"))
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dir returns the directory uploads are written to.
func (s *Store) Dir() string {
	return s.dir
}

// validID rejects ids that could escape the upload directory or match
// other documents' files.
func validID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\*?[`) || id == "." || id == ".." {
		return fmt.Errorf("%w: invalid document id %q", domain.ErrInvalidInput, id)
	}
	return nil
}
