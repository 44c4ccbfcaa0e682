// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/mia-platform/zohosync/internal/logger"
	"github.com/mia-platform/zohosync/internal/server"
)

// cronLogger adapts a Logger to the cron logging interface.
type cronLogger struct {
	log logger.Logger
}

var _ cron.Logger = cronLogger{}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err.Error())...)
}

// executeScheduled starts run at every tick of the schedule until ctx is done. A tick
// arriving while the previous run is still going is skipped. Failed runs are logged and
// do not stop the schedule.
func (o *syncOptions) executeScheduled(ctx context.Context, run func(context.Context) error) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	if o.statusServer {
		serverConfig, err := server.LoadServerConfig()
		if err != nil {
			return err
		}

		srv := server.NewServer(ctx, serverConfig, o.status.snapshot)
		srv.StartAsync(ctx)
		defer func() {
			if err := srv.Stop(); err != nil {
				log.Warn("stopping status server", "error", err.Error())
			}
		}()
	}

	cronLog := cronLogger{log: log.WithName(loggerName + ":cron")}
	scheduler := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	_, err := scheduler.AddFunc(o.schedule, func() {
		if err := run(ctx); err != nil {
			log.Error("scheduled sync failed", "error", err.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("%w %q: %w", errInvalidSchedule, o.schedule, err)
	}

	scheduler.Start()
	log.Info("scheduled sync started", "schedule", o.schedule)

	<-ctx.Done()
	<-scheduler.Stop().Done()
	log.Info("scheduled sync stopped")
	return nil
}
