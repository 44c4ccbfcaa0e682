// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package fake

import (
	"context"
	"sync"
	"testing"

	"github.com/mia-platform/zohosync/internal/destination"
)

var _ destination.Sink = &FakeSink{}

type FakeSink struct {
	tb testing.TB
	mu sync.Mutex

	Records []*destination.Record
	// EmitErr, when set, is returned by Emit without recording the record.
	EmitErr error
	// StreamErrs holds errors returned by Emit only for the records of a stream.
	StreamErrs map[string]error
	Closed     bool
}

func NewFakeSink(tb testing.TB) *FakeSink {
	tb.Helper()
	return &FakeSink{tb: tb}
}

func (f *FakeSink) Emit(_ context.Context, record *destination.Record) error {
	f.tb.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.EmitErr != nil {
		return f.EmitErr
	}
	if err := f.StreamErrs[record.Stream]; err != nil {
		return err
	}
	f.Records = append(f.Records, record)
	return nil
}

func (f *FakeSink) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Stream returns the records emitted for stream, in order.
func (f *FakeSink) Stream(stream string) []*destination.Record {
	f.mu.Lock()
	defer f.mu.Unlock()

	records := make([]*destination.Record, 0)
	for _, record := range f.Records {
		if record.Stream == stream {
			records = append(records, record)
		}
	}
	return records
}
