// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/mia-platform/zohosync/internal/catalog"
	"github.com/mia-platform/zohosync/internal/destination"
	"github.com/mia-platform/zohosync/internal/logger"
	"github.com/mia-platform/zohosync/internal/state"
	"github.com/mia-platform/zohosync/internal/zoho"
)

const (
	loggerName = "zohosync:pipeline"

	// DefaultStartDate is the first bookmark of a stream when none is configured.
	DefaultStartDate = "2010-01-01T00:00:00"

	parentIDKey = "parent_id"
)

// Client is the Zoho API used by the pipeline.
type Client interface {
	ListModules(ctx context.Context) ([]zoho.ModuleInfo, error)
	Paginate(ctx context.Context, resource string, query zoho.Query) iter.Seq2[zoho.Record, error]
	SinglePage(ctx context.Context, resource, key string, params url.Values) iter.Seq2[zoho.Record, error]
}

var _ Client = &zoho.Client{}

// Options customizes a sync run.
type Options struct {
	// StartDate is the first bookmark of streams without a saved one.
	StartDate string
	Catalog   catalog.Options
}

// Pipeline syncs the CRM modules to a sink, keeping bookmarks in a state store.
type Pipeline struct {
	client  Client
	store   state.Store
	sink    destination.Sink
	options Options

	now func() time.Time
}

func New(client Client, store state.Store, sink destination.Sink, options Options) *Pipeline {
	if options.StartDate == "" {
		options.StartDate = DefaultStartDate
	}

	return &Pipeline{
		client:  client,
		store:   store,
		sink:    sink,
		options: options,
		now:     time.Now,
	}
}

// Sync runs a full pass over the resolved catalog. Streams are synced one after the other;
// a stream whose feature is not enabled is skipped, any other error aborts the run and is
// returned as a *StreamError. The returned report is filled also when an error is returned.
func (p *Pipeline) Sync(ctx context.Context) (report Report, err error) {
	runID := newRunID()
	ctx = logger.ContextWithValues(ctx, "runId", runID)
	log := logger.FromContext(ctx).WithName(loggerName)

	report = Report{RunID: runID, StartedAt: p.now()}
	defer func() { report.FinishedAt = p.now() }()

	log.Info("sync started")
	syncState, err := p.store.Load(ctx)
	if err != nil {
		return report, err
	}

	live, err := p.client.ListModules(ctx)
	if err != nil {
		return report, fmt.Errorf("listing modules: %w", err)
	}

	run := &run{
		Pipeline: p,
		state:    syncState,
		disabled: make(map[string]bool),
	}
	for _, module := range catalog.Resolve(ctx, live, p.options.Catalog) {
		streams, err := run.syncModule(ctx, module)
		report.Streams = append(report.Streams, streams...)
		if err != nil {
			return report, err
		}
	}

	log.Info("sync completed", "streams", len(report.Streams), "records", report.Records())
	return report, nil
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// run holds the state shared by the streams of a single sync.
type run struct {
	*Pipeline

	state *state.SyncState
	// disabled tracks the sub streams whose feature is not enabled.
	disabled map[string]bool
}

// streamSync is the progress of the stream being synced.
type streamSync struct {
	module catalog.Module
	start  string

	emitted    bool
	lastCursor string
	records    int
	subRecords map[string]int
	// subErrors holds the error that stopped a sub stream.
	subErrors map[string]error
}

func (s *streamSync) subFailed(stream string, err error) error {
	s.subErrors[stream] = err
	return err
}

func (r *run) startBookmark(stream string) string {
	if bookmark, ok := r.state.Bookmark(stream); ok && bookmark != "" {
		return bookmark
	}
	return r.options.StartDate
}

func (r *run) save(ctx context.Context) error {
	return r.store.Save(ctx, r.state)
}

func (r *run) syncModule(ctx context.Context, module catalog.Module) ([]StreamReport, error) {
	log := logger.FromContext(ctx).WithName(loggerName).With("stream", module.StreamName)
	stream := &streamSync{
		module:     module,
		start:      r.startBookmark(module.StreamName),
		subRecords: make(map[string]int),
		subErrors:  make(map[string]error),
	}

	r.state.CurrentlySyncing = module.StreamName
	if err := r.save(ctx); err != nil {
		r.state.CurrentlySyncing = ""
		return r.reports(stream, StatusFailed, err), &StreamError{Stream: module.StreamName, Err: err}
	}

	log.Info("stream sync started", "bookmark", stream.start)
	err := r.syncRecords(ctx, stream)

	status := StatusCompleted
	switch {
	case err == nil:
	case zoho.IsFeatureNotEnabled(err):
		log.Warn("feature not enabled, skipping stream", "error", err.Error())
		status = StatusSkipped
		err = nil
	default:
		status = StatusFailed
	}

	// the cleanup must be saved even when the run has been canceled
	r.state.CurrentlySyncing = ""
	if saveErr := r.save(context.WithoutCancel(ctx)); saveErr != nil {
		status = StatusFailed
		err = errors.Join(err, saveErr)
	}

	reports := r.reports(stream, status, err)
	if err != nil {
		log.Error("stream sync failed", "records", stream.records, "error", err.Error())
		return reports, &StreamError{Stream: module.StreamName, Err: err}
	}

	log.Info("stream sync finished", "status", string(status), "records", stream.records)
	return reports, nil
}

func (r *run) reports(stream *streamSync, status Status, err error) []StreamReport {
	parent := StreamReport{
		Stream:  stream.module.StreamName,
		Status:  status,
		Records: stream.records,
	}
	parent.Bookmark, _ = r.state.Bookmark(stream.module.StreamName)
	if err != nil {
		parent.Error = err.Error()
	}

	reports := []StreamReport{parent}
	for _, sub := range stream.module.SubModules {
		subReport := StreamReport{
			Stream:  sub.StreamName,
			Status:  StatusCompleted,
			Records: stream.subRecords[sub.StreamName],
		}
		subErr, failed := stream.subErrors[sub.StreamName]
		switch {
		case r.disabled[sub.StreamName], status == StatusSkipped:
			subReport.Status = StatusSkipped
		case failed:
			subReport.Status = StatusFailed
			subReport.Error = subErr.Error()
		}
		subReport.Bookmark, _ = r.state.Bookmark(sub.StreamName)
		reports = append(reports, subReport)
	}
	return reports
}

func (r *run) syncRecords(ctx context.Context, stream *streamSync) error {
	module := stream.module

	var records iter.Seq2[zoho.Record, error]
	switch {
	case module.Paginated && module.Bookmarked():
		records = r.client.Paginate(ctx, module.APIName, module.Query(stream.start))
	case module.Paginated:
		records = r.client.Paginate(ctx, module.APIName, module.Query(""))
	default:
		records = r.client.SinglePage(ctx, module.APIName, module.DataKey, module.Params)
	}

	for record, err := range records {
		if err != nil {
			return err
		}
		if err := r.syncRecord(ctx, stream, record); err != nil {
			return err
		}
	}
	return nil
}

// syncRecord validates the record cursor, syncs the record sub modules, then emits the
// record and saves its cursor as the stream bookmark.
func (r *run) syncRecord(ctx context.Context, stream *streamSync, record zoho.Record) error {
	module := stream.module

	var cursor string
	if module.Bookmarked() {
		cursor = record.Get(module.BookmarkKey).String()
		if cursor == "" {
			return fmt.Errorf("%w: record %s has no %s", ErrMissingCursor, record.ID(), module.BookmarkKey)
		}

		switch {
		case stream.emitted && state.CompareCursors(cursor, stream.lastCursor) < 0:
			return &OutOfOrderError{
				Stream:   module.StreamName,
				RecordID: record.ID(),
				Previous: stream.lastCursor,
				Cursor:   cursor,
			}
		case !stream.emitted && state.CompareCursors(cursor, stream.start) < 0:
			logger.FromContext(ctx).WithName(loggerName).Debug("record before the bookmark, skipping",
				"stream", module.StreamName,
				"recordId", record.ID(),
				"cursor", cursor,
			)
			return nil
		}
	}

	for _, sub := range module.SubModules {
		if err := r.syncSubModule(ctx, stream, sub, record); err != nil {
			return err
		}
	}

	if err := r.emit(ctx, module.StreamName, record, r.now()); err != nil {
		return err
	}
	stream.records++

	if !module.Bookmarked() {
		return nil
	}

	stream.emitted = true
	stream.lastCursor = cursor
	r.state.SetBookmark(module.StreamName, cursor)
	return r.save(ctx)
}

// syncSubModule emits every sub record of parent tagged with the parent id. The sub stream
// bookmark is updated in memory and saved together with the parent bookmark.
func (r *run) syncSubModule(ctx context.Context, stream *streamSync, sub catalog.SubModule, parent zoho.Record) error {
	if r.disabled[sub.StreamName] {
		return nil
	}

	log := logger.FromContext(ctx).WithName(loggerName).With("stream", sub.StreamName)
	parentID := parent.ID()
	resource := sub.Resource(stream.module.APIName, parentID)

	for record, err := range r.client.Paginate(ctx, resource, zoho.Query{}) {
		if zoho.IsFeatureNotEnabled(err) {
			log.Warn("feature not enabled, skipping sub stream for this run", "error", err.Error())
			r.disabled[sub.StreamName] = true
			return nil
		}
		if err != nil {
			return stream.subFailed(sub.StreamName, err)
		}

		tagged, err := record.With(parentIDKey, parentID)
		if err != nil {
			return stream.subFailed(sub.StreamName, fmt.Errorf("tagging %s record %s: %w", sub.StreamName, record.ID(), err))
		}

		extracted := r.now()
		if err := r.emit(ctx, sub.StreamName, tagged, extracted); err != nil {
			return stream.subFailed(sub.StreamName, err)
		}
		stream.subRecords[sub.StreamName]++

		cursor := extracted.UTC().Format(time.RFC3339)
		if sub.BookmarkKey != "" {
			cursor = tagged.Get(sub.BookmarkKey).String()
		}
		if cursor == "" {
			log.Debug("sub record without cursor, bookmark not advanced", "recordId", record.ID(), "parentId", parentID)
			continue
		}
		r.state.AdvanceBookmark(sub.StreamName, cursor)
	}
	return nil
}

func (r *run) emit(ctx context.Context, stream string, record zoho.Record, extracted time.Time) error {
	return r.sink.Emit(ctx, &destination.Record{
		Stream:        stream,
		Record:        json.RawMessage(record),
		TimeExtracted: extracted,
	})
}
