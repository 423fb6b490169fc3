// Package filestore keeps session tokens as one file per session id.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/caronte/pkg/credstore"
)

// Store writes tokens to <dir>/tokens/<id>. Writes go through a temporary
// file and a rename, so readers never see a partial token.
type Store struct {
	dir string
}

// New creates the token directory under dir if needed.
func New(dir string) (*Store, error) {
	tokens := filepath.Join(dir, "tokens")
	if err := os.MkdirAll(tokens, 0o700); err != nil {
		return nil, fmt.Errorf("filestore: create %s: %w", tokens, err)
	}
	return &Store{dir: tokens}, nil
}

func (s *Store) path(id string) (string, error) {
	if !credstore.ValidID(id) {
		return "", fmt.Errorf("filestore: invalid session id")
	}
	return filepath.Join(s.dir, id), nil
}

func (s *Store) Get(_ context.Context, id string) (string, error) {
	p, err := s.path(id)
	if err != nil {
		return "", credstore.ErrNotFound
	}

	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", credstore.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("filestore: read: %w", err)
	}
	return string(b), nil
}

func (s *Store) Put(_ context.Context, id, raw string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+id+"-*")
	if err != nil {
		return fmt.Errorf("filestore: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.WriteString(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("filestore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore: close: %w", err)
	}

	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("filestore: rename: %w", err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return nil
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("filestore: delete: %w", err)
	}
	return nil
}

// Ping checks that the token directory is still there.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("filestore: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("filestore: %s is not a directory", s.dir)
	}
	return nil
}
