// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import "time"

// Status is the final state of a stream in a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// StreamReport summarizes the sync of one stream.
type StreamReport struct {
	Stream   string `json:"stream"`
	Status   Status `json:"status"`
	Records  int    `json:"records"`
	Bookmark string `json:"bookmark,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Report summarizes a sync run. Streams are listed in sync order, each parent stream
// followed by its sub streams.
type Report struct {
	RunID      string         `json:"runId"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Streams    []StreamReport `json:"streams"`
}

// Records returns the number of records emitted in the run.
func (r Report) Records() int {
	total := 0
	for _, stream := range r.Streams {
		total += stream.Records
	}
	return total
}

// Stream returns the report of stream.
func (r Report) Stream(stream string) (StreamReport, bool) {
	for _, report := range r.Streams {
		if report.Stream == stream {
			return report, true
		}
	}
	return StreamReport{}, false
}
