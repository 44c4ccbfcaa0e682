// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package singer delivers the sync state as Singer STATE messages written in band with
// the records, leaving to the caller the job of keeping the last one.
package singer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mia-platform/zohosync/internal/destination"
	"github.com/mia-platform/zohosync/internal/state"
)

var _ state.Store = &Store{}

// Store saves the state through a destination.StateEmitter and loads it from another
// store, usually the file holding the last STATE message of a previous run.
type Store struct {
	emitter destination.StateEmitter
	loader  state.Store
}

// New returns a Store emitting states on emitter and loading them from loader.
func New(emitter destination.StateEmitter, loader state.Store) *Store {
	return &Store{
		emitter: emitter,
		loader:  loader,
	}
}

func (s *Store) Load(ctx context.Context) (*state.SyncState, error) {
	return s.loader.Load(ctx)
}

func (s *Store) Save(ctx context.Context, syncState *state.SyncState) error {
	value, err := json.Marshal(syncState)
	if err != nil {
		return fmt.Errorf("state: encoding: %w", err)
	}

	if err := s.emitter.EmitState(ctx, value); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.loader.Close()
}
