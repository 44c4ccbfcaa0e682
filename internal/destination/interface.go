// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package destination

import (
	"context"
	"encoding/json"
	"time"
)

// TimeFormat is the layout of the extraction time of a record.
const TimeFormat = "2006-01-02T15:04:05.000000Z07:00"

// Sink delivers extracted records. Emit errors are fatal for the sync run.
type Sink interface {
	Emit(ctx context.Context, record *Record) error
	Close(ctx context.Context) error
}

// Record is a single record extracted from a stream.
type Record struct {
	Stream        string          `json:"stream"`
	Record        json.RawMessage `json:"record"`
	TimeExtracted time.Time       `json:"-"`
}

// FormattedTime returns the extraction time in UTC using TimeFormat.
func (r Record) FormattedTime() string {
	return r.TimeExtracted.UTC().Format(TimeFormat)
}

// internalRecord breaks the recursion when customizing JSON marshaling.
type internalRecord Record

// MarshalJSON encodes the record as a Singer RECORD message.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		internalRecord

		TimeExtracted string `json:"time_extracted"`
	}{
		Type:           "RECORD",
		internalRecord: internalRecord(r),
		TimeExtracted:  r.FormattedTime(),
	})
}

// StateEmitter is implemented by sinks that deliver the sync state in band with the
// records, as Singer STATE messages.
type StateEmitter interface {
	EmitState(ctx context.Context, value json.RawMessage) error
}

// State is a Singer STATE message carrying value.
type State struct {
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the state as a Singer STATE message.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}{
		Type:  "STATE",
		Value: s.Value,
	})
}
