// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package singer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/zohosync/internal/destination"
	"github.com/mia-platform/zohosync/internal/destination/writer"
	"github.com/mia-platform/zohosync/internal/state"
	"github.com/mia-platform/zohosync/internal/state/file"
)

func TestStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	initial := `{"type":"ignored","bookmarks":{"leads":"2020-01-01T00:00:00Z"}}`
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))

	buffer := new(bytes.Buffer)
	emitter, ok := writer.NewSink(buffer).(destination.StateEmitter)
	require.True(t, ok)
	store := New(emitter, file.New(path))
	defer store.Close()

	loaded, err := store.Load(t.Context())
	require.NoError(t, err)
	bookmark, _ := loaded.Bookmark("leads")
	assert.Equal(t, "2020-01-01T00:00:00Z", bookmark)

	loaded.CurrentlySyncing = "leads"
	require.NoError(t, store.Save(t.Context(), loaded))
	loaded.SetBookmark("leads", "2020-01-02T00:00:00Z")
	loaded.CurrentlySyncing = ""
	require.NoError(t, store.Save(t.Context(), loaded))

	expectedOutput := `{"type":"STATE","value":{"bookmarks":{"leads":"2020-01-01T00:00:00Z"},"currently_syncing":"leads"}}
{"type":"STATE","value":{"bookmarks":{"leads":"2020-01-02T00:00:00Z"}}}
`
	assert.Equal(t, expectedOutput, buffer.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, initial, string(data))
}

type failingEmitter struct{}

func (failingEmitter) EmitState(context.Context, json.RawMessage) error {
	return errors.New("broken pipe")
}

func TestStoreSaveError(t *testing.T) {
	t.Parallel()

	store := New(failingEmitter{}, file.New(filepath.Join(t.TempDir(), "state.json")))
	err := store.Save(t.Context(), state.New())
	assert.EqualError(t, err, "state: broken pipe")
}
