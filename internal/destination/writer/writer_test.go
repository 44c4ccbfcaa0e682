// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package writer

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mia-platform/zohosync/internal/destination"
)

func TestWriterSink(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	sink := NewSink(buffer)
	extracted := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, sink.Emit(t.Context(), &destination.Record{
		Stream:        "leads",
		Record:        json.RawMessage(`{"id":"1"}`),
		TimeExtracted: extracted,
	}))
	require.NoError(t, sink.Emit(t.Context(), &destination.Record{
		Stream:        "deals_stage_history",
		Record:        json.RawMessage(`{"id":"2","parent_id":"9"}`),
		TimeExtracted: extracted,
	}))
	require.NoError(t, sink.Close(t.Context()))

	expectedOutput := `{"type":"RECORD","stream":"leads","record":{"id":"1"},"time_extracted":"2020-01-01T00:00:00.000000Z"}
{"type":"RECORD","stream":"deals_stage_history","record":{"id":"2","parent_id":"9"},"time_extracted":"2020-01-01T00:00:00.000000Z"}
`
	assert.Equal(t, expectedOutput, buffer.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestWriterSinkError(t *testing.T) {
	t.Parallel()

	sink := NewSink(failingWriter{})
	err := sink.Emit(t.Context(), &destination.Record{Stream: "leads", Record: json.RawMessage(`{}`)})
	assert.EqualError(t, err, "destination: writing leads record: broken pipe")
}

func TestWriterSinkState(t *testing.T) {
	t.Parallel()

	buffer := new(bytes.Buffer)
	sink := NewSink(buffer)
	emitter, ok := sink.(destination.StateEmitter)
	require.True(t, ok)

	require.NoError(t, emitter.EmitState(t.Context(), json.RawMessage(`{"bookmarks":{},"currently_syncing":"leads"}`)))
	require.NoError(t, sink.Emit(t.Context(), &destination.Record{
		Stream:        "leads",
		Record:        json.RawMessage(`{"id":"1"}`),
		TimeExtracted: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, emitter.EmitState(t.Context(), json.RawMessage(`{"bookmarks":{"leads":"2020-01-01T00:00:00Z"}}`)))

	expectedOutput := `{"type":"STATE","value":{"bookmarks":{},"currently_syncing":"leads"}}
{"type":"RECORD","stream":"leads","record":{"id":"1"},"time_extracted":"2020-01-01T00:00:00.000000Z"}
{"type":"STATE","value":{"bookmarks":{"leads":"2020-01-01T00:00:00Z"}}}
`
	assert.Equal(t, expectedOutput, buffer.String())

	err := NewSink(failingWriter{}).(destination.StateEmitter).EmitState(t.Context(), json.RawMessage(`{}`))
	assert.EqualError(t, err, "destination: writing state: broken pipe")
}
