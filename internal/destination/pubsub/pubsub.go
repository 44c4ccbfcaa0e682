// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package pubsub implements a sink publishing every record to a Google Cloud Pub/Sub topic.
// Messages carry the raw record as data and the stream name and extraction time as attributes;
// the stream name is also the ordering key, so records of a stream keep their sync order.
package pubsub

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"

	"github.com/mia-platform/zohosync/internal/destination"
)

const (
	StreamAttribute        = "stream"
	TimeExtractedAttribute = "time_extracted"
)

var (
	_ destination.Sink = &Sink{}

	// ErrMissingConfig is returned when the project or the topic are not set.
	ErrMissingConfig = errors.New("destination: pubsub project and topic are required")
)

// Sink publishes records and waits for the server acknowledgement of each one.
type Sink struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
}

// New connects to projectID and returns a sink publishing to topic, either a topic id or a
// fully qualified topic name.
func New(ctx context.Context, projectID, topic string, opts ...option.ClientOption) (*Sink, error) {
	if projectID == "" || topic == "" {
		return nil, ErrMissingConfig
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("destination: pubsub client: %w", err)
	}

	publisher := client.Publisher(topic)
	publisher.EnableMessageOrdering = true
	return &Sink{
		client:    client,
		publisher: publisher,
	}, nil
}

func (s *Sink) Emit(ctx context.Context, record *destination.Record) error {
	result := s.publisher.Publish(ctx, &pubsub.Message{
		Data: record.Record,
		Attributes: map[string]string{
			StreamAttribute:        record.Stream,
			TimeExtractedAttribute: record.FormattedTime(),
		},
		OrderingKey: record.Stream,
	})

	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("destination: publishing %s record: %w", record.Stream, err)
	}
	return nil
}

func (s *Sink) Close(_ context.Context) error {
	s.publisher.Stop()
	return s.client.Close()
}
