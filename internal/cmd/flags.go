// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mia-platform/zohosync/internal/config"
)

const (
	configFlagName  = "config"
	configFlagShort = "c"
	configFlagUsage = "Path to a YAML or JSON configuration file, Singer tap config files are supported"

	envFileFlagName  = "env-file"
	envFileFlagUsage = "Path to a .env file loaded before reading the configuration"

	scheduleFlagName  = "schedule"
	scheduleFlagUsage = "Cron expression; if set, a new sync starts at every tick until the process is stopped"

	statusServerFlagName  = "status-server"
	statusServerFlagUsage = "If set together with --schedule, serves the status of the last run on HTTP_PORT"

	codeFlagName  = "code"
	codeFlagUsage = "Grant code generated in the Zoho API console"
)

// configFlags holds the flags shared by every command reading the configuration.
type configFlags struct {
	configPath string
	envFile    string
}

func (f *configFlags) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, configFlagName, configFlagShort, "", configFlagUsage)
	cmd.Flags().StringVar(&f.envFile, envFileFlagName, "", envFileFlagUsage)
}

func (f *configFlags) load() (*config.Config, error) {
	return config.Load(f.configPath, f.envFile)
}

// syncFlags holds the flags for the "sync" command.
type syncFlags struct {
	configFlags

	schedule     string
	statusServer bool
}

// addFlags adds the cli flags to the cobra command.
func (f *syncFlags) addFlags(cmd *cobra.Command) {
	f.configFlags.addFlags(cmd)
	cmd.Flags().StringVar(&f.schedule, scheduleFlagName, "", scheduleFlagUsage)
	cmd.Flags().BoolVar(&f.statusServer, statusServerFlagName, false, statusServerFlagUsage)
}

// toOptions converts the sync flags to syncOptions loading the configuration.
func (f *syncFlags) toOptions(cmd *cobra.Command) (*syncOptions, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, err
	}

	return &syncOptions{
		config:       cfg,
		schedule:     f.schedule,
		statusServer: f.statusServer,
		out:          cmd.OutOrStdout(),
		status:       new(runStatus),
	}, nil
}

// authFlags holds the flags for the "auth" command.
type authFlags struct {
	configFlags

	code string
}

// addFlags adds the cli flags to the cobra command.
func (f *authFlags) addFlags(cmd *cobra.Command) {
	f.configFlags.addFlags(cmd)
	cmd.Flags().StringVar(&f.code, codeFlagName, "", codeFlagUsage)
}

// toOptions converts the auth flags to authOptions loading the configuration.
func (f *authFlags) toOptions(cmd *cobra.Command) (*authOptions, error) {
	cfg, err := f.load()
	if err != nil {
		return nil, err
	}

	return &authOptions{
		config: cfg,
		code:   f.code,
		out:    cmd.OutOrStdout(),
	}, nil
}
