// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package fake provides an in memory state store recording every saved state.
package fake

import (
	"context"
	"sync"
	"testing"

	"github.com/mia-platform/zohosync/internal/state"
)

var _ state.Store = &Store{}

type Store struct {
	tb testing.TB
	mu sync.Mutex

	current *state.SyncState

	// Snapshots holds a copy of every saved state, in order.
	Snapshots []*state.SyncState
	// LoadErr and SaveErr, when set, are returned by Load and Save.
	LoadErr error
	SaveErr error
	Closed  bool
}

// NewStore returns a store whose first Load returns a copy of initial. A nil initial
// state is an empty state.
func NewStore(tb testing.TB, initial *state.SyncState) *Store {
	tb.Helper()

	if initial == nil {
		initial = state.New()
	}
	return &Store{tb: tb, current: initial.Clone()}
}

func (s *Store) Load(context.Context) (*state.SyncState, error) {
	s.tb.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	return s.current.Clone(), nil
}

func (s *Store) Save(_ context.Context, syncState *state.SyncState) error {
	s.tb.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.current = syncState.Clone()
	s.Snapshots = append(s.Snapshots, syncState.Clone())
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// Current returns a copy of the last saved state.
func (s *Store) Current() *state.SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}
