// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/mia-platform/zohosync/internal/catalog"
	"github.com/mia-platform/zohosync/internal/config"
	"github.com/mia-platform/zohosync/internal/logger"
	"github.com/mia-platform/zohosync/internal/pipeline"
)

// syncOptions holds the options set for the current sync command.
type syncOptions struct {
	config       *config.Config
	schedule     string
	statusServer bool
	out          io.Writer
	status       *runStatus

	lock sync.Mutex
}

// validate validates the sync options and returns an error if something is wrong.
func (o *syncOptions) validate() error {
	if err := o.config.Validate(); err != nil {
		return err
	}

	if o.schedule != "" {
		if _, err := cron.ParseStandard(o.schedule); err != nil {
			return fmt.Errorf("%w %q: %w", errInvalidSchedule, o.schedule, err)
		}
	}

	return nil
}

// execute runs a single sync, or keeps syncing on schedule until ctx is done.
func (o *syncOptions) execute(ctx context.Context) error {
	client := newClient(o.config)
	run := func(ctx context.Context) error {
		return o.sync(ctx, client)
	}

	if o.schedule == "" {
		return run(ctx)
	}

	return o.executeScheduled(ctx, run)
}

// sync runs the pipeline once, opening a new sink and state store for the run.
func (o *syncOptions) sync(ctx context.Context, client pipeline.Client) (err error) {
	if !o.lock.TryLock() {
		return nil
	}
	defer o.lock.Unlock()

	log := logger.FromContext(ctx).WithName(loggerName)

	sink, err := newSink(ctx, o.config, o.out)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sink.Close(context.WithoutCancel(ctx)))
	}()

	store, err := newStore(ctx, o.config, sink)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Warn("closing state store", "error", closeErr.Error())
		}
	}()

	p := pipeline.New(client, store, sink, pipeline.Options{
		StartDate: o.config.StartDate,
		Catalog: catalog.Options{
			CustomModules: o.config.CustomModules,
			Streams:       o.config.Streams,
		},
	})

	o.status.started()
	report, err := p.Sync(ctx)
	o.status.finished(report, err)
	return err
}
