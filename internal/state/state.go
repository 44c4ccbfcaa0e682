// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package state

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"
)

var cursorLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// Store persists the sync state between runs. Save always overwrites the whole state.
type Store interface {
	Load(ctx context.Context) (*SyncState, error)
	Save(ctx context.Context, state *SyncState) error
	Close() error
}

// SyncState is the persisted progress of the connector, in the Singer state layout.
type SyncState struct {
	Bookmarks        map[string]string `json:"bookmarks"`
	CurrentlySyncing string            `json:"currently_syncing,omitempty"`
}

// New returns an empty state.
func New() *SyncState {
	return &SyncState{Bookmarks: make(map[string]string)}
}

// Bookmark returns the cursor stored for stream.
func (s *SyncState) Bookmark(stream string) (string, bool) {
	value, ok := s.Bookmarks[stream]
	return value, ok
}

// SetBookmark stores value as the cursor of stream.
func (s *SyncState) SetBookmark(stream, value string) {
	s.Bookmarks[stream] = value
}

// AdvanceBookmark stores value as the cursor of stream if it is after the current one and
// reports whether the bookmark changed.
func (s *SyncState) AdvanceBookmark(stream, value string) bool {
	if current, ok := s.Bookmarks[stream]; ok && CompareCursors(value, current) <= 0 {
		return false
	}

	s.Bookmarks[stream] = value
	return true
}

// Clone returns a deep copy of the state.
func (s *SyncState) Clone() *SyncState {
	return &SyncState{
		Bookmarks:        maps.Clone(s.Bookmarks),
		CurrentlySyncing: s.CurrentlySyncing,
	}
}

// Marshal encodes the state as indented JSON.
func (s *SyncState) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Unmarshal decodes a JSON state. Empty data is an empty state.
func Unmarshal(data []byte) (*SyncState, error) {
	state := New()
	if len(strings.TrimSpace(string(data))) == 0 {
		return state, nil
	}

	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("state: decoding: %w", err)
	}
	if state.Bookmarks == nil {
		state.Bookmarks = make(map[string]string)
	}
	return state, nil
}

// CompareCursors orders two bookmark values, returning -1, 0 or 1. Values are compared as
// instants when both parse as timestamps; timestamps without a zone are in UTC.
// Otherwise they are compared as strings.
func CompareCursors(a, b string) int {
	timeA, okA := parseCursor(a)
	timeB, okB := parseCursor(b)
	if okA && okB {
		return timeA.Compare(timeB)
	}

	return strings.Compare(a, b)
}

func parseCursor(value string) (time.Time, bool) {
	for _, layout := range cursorLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
