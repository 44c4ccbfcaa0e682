// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mia-platform/zohosync/internal/config"
	"github.com/mia-platform/zohosync/internal/destination"
	"github.com/mia-platform/zohosync/internal/destination/pubsub"
	"github.com/mia-platform/zohosync/internal/destination/writer"
	"github.com/mia-platform/zohosync/internal/state"
	"github.com/mia-platform/zohosync/internal/state/azblob"
	"github.com/mia-platform/zohosync/internal/state/file"
	"github.com/mia-platform/zohosync/internal/state/singer"
	"github.com/mia-platform/zohosync/internal/state/sqlite"
	"github.com/mia-platform/zohosync/internal/zoho"
)

const (
	loggerName = "zohosync:cmd"
)

var (
	errMissingCode     = errors.New("no grant code provided")
	errInvalidSchedule = errors.New("invalid schedule")
)

// handleError will do custom print error handling based on the type of error received.
// it will return nil if the command must return 0 exit code, otherwise it will return
// the original error.
func handleError(cmd *cobra.Command, err error) error {
	switch {
	case errors.Is(err, errMissingCode), errors.Is(err, errInvalidSchedule):
		cmd.PrintErrln(err)
		_ = cmd.Usage() // do not check error as we cannot do much about it
		return err
	default:
		cmd.PrintErrln(err)
		return err
	}
}

// newClient returns a Zoho client using the credentials and endpoints of cfg.
func newClient(cfg *config.Config) *zoho.Client {
	return zoho.NewClient(
		zoho.Credentials{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RefreshToken: cfg.RefreshToken,
			AccessToken:  cfg.AccessToken,
			APIDomain:    cfg.APIDomain,
		},
		zoho.WithRequestTimeout(cfg.RequestTimeout),
		zoho.WithTokenURL(cfg.AccountsURL),
		zoho.WithRedirectURI(cfg.RedirectURI),
	)
}

// newStore opens the state store backend selected in cfg. The stdout backend emits the
// state through sink.
func newStore(ctx context.Context, cfg *config.Config, sink destination.Sink) (state.Store, error) {
	switch cfg.State.Backend {
	case config.StateBackendFile:
		return file.New(cfg.State.Path), nil
	case config.StateBackendStdout:
		emitter, ok := sink.(destination.StateEmitter)
		if !ok {
			return nil, fmt.Errorf("%w: sink %q cannot carry the state", config.ErrInvalidConfig, cfg.Sink.Type)
		}
		return singer.New(emitter, file.New(cfg.State.Path)), nil
	case config.StateBackendSQLite:
		store, err := sqlite.Open(ctx, cfg.StateDSN())
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StateBackendAzBlob:
		store, err := azblob.New(azblob.Config{
			ConnectionString: cfg.State.AzureConnectionString,
			AccountName:      cfg.State.AzureAccountName,
			ContainerName:    cfg.State.AzureContainerName,
			BlobName:         cfg.State.AzureBlobName,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown state backend %q", config.ErrInvalidConfig, cfg.State.Backend)
	}
}

// newSink returns the record sink selected in cfg; the stdout sink writes on out.
func newSink(ctx context.Context, cfg *config.Config, out io.Writer) (destination.Sink, error) {
	switch cfg.Sink.Type {
	case config.SinkStdout:
		return writer.NewSink(out), nil
	case config.SinkPubSub:
		sink, err := pubsub.New(ctx, cfg.Sink.PubSubProject, cfg.Sink.PubSubTopic)
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("%w: unknown sink %q", config.ErrInvalidConfig, cfg.Sink.Type)
	}
}
