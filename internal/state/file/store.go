// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package file stores the sync state as a JSON file on the local filesystem.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mia-platform/zohosync/internal/state"
)

var _ state.Store = &Store{}

// Store keeps the state in the file at path. The file is replaced atomically on every save.
type Store struct {
	path string
}

// New returns a Store for the file at path. The file is not required to exist.
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load(_ context.Context) (*state.SyncState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return state.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: reading %q: %w", s.path, err)
	}

	return state.Unmarshal(data)
}

func (s *Store) Save(_ context.Context, syncState *state.SyncState) error {
	data, err := syncState.Marshal()
	if err != nil {
		return fmt.Errorf("state: encoding: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return fmt.Errorf("state: writing %q: %w", s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("state: writing %q: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("state: writing %q: %w", s.path, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("state: writing %q: %w", s.path, err)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
