// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mia-platform/zohosync/internal/destination"
)

func TestFakeSink(t *testing.T) {
	t.Parallel()

	fakeSink := NewFakeSink(t)
	assert.Empty(t, fakeSink.Records)

	leads := &destination.Record{Stream: "leads", Record: json.RawMessage(`{"id":"1"}`)}
	deals := &destination.Record{Stream: "deals", Record: json.RawMessage(`{"id":"2"}`)}
	assert.NoError(t, fakeSink.Emit(t.Context(), leads))
	assert.NoError(t, fakeSink.Emit(t.Context(), deals))
	assert.Equal(t, []*destination.Record{leads, deals}, fakeSink.Records)
	assert.Equal(t, []*destination.Record{deals}, fakeSink.Stream("deals"))

	fakeSink.EmitErr = errors.New("sink unavailable")
	assert.EqualError(t, fakeSink.Emit(t.Context(), leads), "sink unavailable")
	assert.Len(t, fakeSink.Records, 2)

	assert.NoError(t, fakeSink.Close(t.Context()))
	assert.True(t, fakeSink.Closed)
}
