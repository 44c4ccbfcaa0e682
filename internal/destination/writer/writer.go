// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package writer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/mia-platform/zohosync/internal/destination"
)

var (
	_ destination.Sink         = &writerSink{}
	_ destination.StateEmitter = &writerSink{}
)

type writerSink struct {
	writer *bufio.Writer

	lock sync.Mutex
}

// NewSink returns a sink writing to w. Records are flushed after every message.
func NewSink(w io.Writer) destination.Sink {
	return &writerSink{
		writer: bufio.NewWriter(w),
	}
}

func (s *writerSink) Emit(_ context.Context, record *destination.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("destination: encoding %s record: %w", record.Stream, err)
	}

	if err := s.writeLine(data); err != nil {
		return fmt.Errorf("destination: writing %s record: %w", record.Stream, err)
	}
	return nil
}

// EmitState writes value as a STATE message between the records already written.
func (s *writerSink) EmitState(_ context.Context, value json.RawMessage) error {
	data, err := json.Marshal(destination.State{Value: value})
	if err != nil {
		return fmt.Errorf("destination: encoding state: %w", err)
	}

	if err := s.writeLine(data); err != nil {
		return fmt.Errorf("destination: writing state: %w", err)
	}
	return nil
}

func (s *writerSink) writeLine(data []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, err := s.writer.Write(append(data, '\n')); err != nil {
		return err
	}
	return s.writer.Flush()
}

func (s *writerSink) Close(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.writer.Flush()
}
