// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"sync"

	"github.com/mia-platform/zohosync/internal/pipeline"
)

// runStatus tracks the sync runs made by the command.
type runStatus struct {
	mu sync.Mutex

	running   bool
	runs      int
	lastRun   *pipeline.Report
	lastError string
}

type statusDocument struct {
	Running   bool             `json:"running"`
	Runs      int              `json:"runs"`
	LastRun   *pipeline.Report `json:"lastRun,omitempty"`
	LastError string           `json:"lastError,omitempty"`
}

func (s *runStatus) started() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
}

func (s *runStatus) finished(report pipeline.Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.runs++
	s.lastRun = &report
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
}

// snapshot returns the document served on the status route.
func (s *runStatus) snapshot() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return statusDocument{
		Running:   s.running,
		Runs:      s.runs,
		LastRun:   s.lastRun,
		LastError: s.lastError,
	}
}
