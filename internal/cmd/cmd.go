// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

const (
	syncCmdUsage = "sync"
	syncCmdShort = "sync the Zoho CRM modules to the configured sink"
	syncCmdLong  = `Sync the Zoho CRM modules to the configured sink.
	Every module is read incrementally starting from the bookmark saved in the
	state store, or from the configured start date on the first run. Records are
	written as Singer RECORD messages on stdout or published on a Pub/Sub topic.

	Configuration is read from the optional env file, the optional config file and
	the process environment, in this order. With --schedule the command keeps running
	and starts a new sync at every tick of the cron expression.`

	syncCmdExample = `# Run a single sync reading a Singer tap config file
	zohosync sync --config config.json

	# Run a sync every hour and expose the status of the last run
	zohosync sync --config config.yaml --schedule "@hourly" --status-server`

	authCmdUsage = "auth"
	authCmdShort = "exchange a Zoho grant code for a refresh token"
	authCmdLong  = `Exchange a Zoho grant code for a refresh token.
	The grant code is generated in the Zoho API console for the self client or
	returned to the redirect uri of a server based client. The command prints the
	resulting credentials as JSON; the refresh token must be stored in the sync
	configuration.`

	authCmdExample = `# Exchange a grant code generated for a self client
	zohosync auth --config config.yaml --code 1000.abc.def`
)

// SyncCmd returns the "sync" cli command.
func SyncCmd() *cobra.Command {
	flags := &syncFlags{}
	cmd := &cobra.Command{
		Use:     syncCmdUsage,
		Short:   heredoc.Doc(syncCmdShort),
		Long:    heredoc.Doc(syncCmdLong),
		Example: heredoc.Doc(syncCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}

// AuthCmd returns the "auth" cli command.
func AuthCmd() *cobra.Command {
	flags := &authFlags{}
	cmd := &cobra.Command{
		Use:     authCmdUsage,
		Short:   heredoc.Doc(authCmdShort),
		Long:    heredoc.Doc(authCmdLong),
		Example: heredoc.Doc(authCmdExample),

		SilenceErrors: true,
		SilenceUsage:  true,

		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.toOptions(cmd)
			if err != nil {
				return handleError(cmd, err)
			}

			if err := opts.validate(); err != nil {
				return handleError(cmd, err)
			}

			if err := opts.execute(cmd.Context()); err != nil {
				return handleError(cmd, err)
			}

			return nil
		},
	}

	flags.addFlags(cmd)
	return cmd
}
