// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/mia-platform/zohosync/internal/config"
	"github.com/mia-platform/zohosync/internal/logger"
)

// authOptions holds the options set for the current auth command.
type authOptions struct {
	config *config.Config
	code   string
	out    io.Writer
}

// authOutput is the document printed by the auth command, keys match the config file ones.
type authOutput struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	APIDomain    string `json:"api_domain,omitempty"`
}

// validate validates the auth options and returns an error if something is wrong.
func (o *authOptions) validate() error {
	if o.code == "" {
		return errMissingCode
	}

	return o.config.ValidateClient()
}

// execute exchanges the grant code and prints the obtained credentials.
func (o *authOptions) execute(ctx context.Context) error {
	log := logger.FromContext(ctx).WithName(loggerName)

	credentials, err := newClient(o.config).ExchangeCode(ctx, o.code)
	if err != nil {
		return err
	}
	log.Debug("grant code exchanged", "apiDomain", credentials.APIDomain)

	encoder := json.NewEncoder(o.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(authOutput{
		AccessToken:  credentials.AccessToken,
		RefreshToken: credentials.RefreshToken,
		ExpiresIn:    credentials.ExpiresIn,
		APIDomain:    credentials.APIDomain,
	})
}
