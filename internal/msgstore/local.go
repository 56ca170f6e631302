package msgstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalFileStore keeps one .eml file per job under a base directory.
type LocalFileStore struct {
	basePath string
}

// NewLocalFileStore creates basePath if needed.
func NewLocalFileStore(basePath string) (*LocalFileStore, error) {
	if basePath == "" {
		return nil, errors.New("msgstore: path is required")
	}
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, fmt.Errorf("msgstore: create base directory: %w", err)
	}
	return &LocalFileStore{basePath: basePath}, nil
}

// Put writes to a temp file and renames it into place.
func (s *LocalFileStore) Put(_ context.Context, jobID string, raw []byte) error {
	name, err := objectName(jobID)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.basePath, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("msgstore: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("msgstore: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("msgstore: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.basePath, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("msgstore: rename temp file: %w", err)
	}
	return nil
}

// Get returns ErrNotFound when nothing is archived for jobID.
func (s *LocalFileStore) Get(_ context.Context, jobID string) ([]byte, error) {
	name, err := objectName(jobID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.basePath, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("msgstore: read file: %w", err)
	}
	return data, nil
}
