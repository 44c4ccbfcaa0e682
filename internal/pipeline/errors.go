// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"errors"
	"fmt"
)

// ErrMissingCursor is returned when a record of a bookmarked stream has no bookmark value.
var ErrMissingCursor = errors.New("record without bookmark value")

// OutOfOrderError reports a record whose cursor is before the cursor of a record already
// emitted in the same run. The API promised ascending order, so the stream is aborted.
type OutOfOrderError struct {
	Stream   string
	RecordID string
	Previous string
	Cursor   string
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("out of order record %s in stream %s: cursor %s is before %s", e.RecordID, e.Stream, e.Cursor, e.Previous)
}

// StreamError is the fatal error that aborted the sync of Stream.
type StreamError struct {
	Stream string
	Err    error
}

func (e *StreamError) Error() string {
	return "stream " + e.Stream + ": " + e.Err.Error()
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
