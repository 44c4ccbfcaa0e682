// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package zoho

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/mia-platform/zohosync/internal/logger"
)

// Credentials are the OAuth client and token values used to call the API.
// A Client never mutates a Credentials value in place: a refresh stores a new copy.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccessToken  string
	ExpiresIn    int64
	Expiry       time.Time
	APIDomain    string
}

// withToken returns a copy of c updated with the values of a token endpoint answer.
func (c Credentials) withToken(ctx context.Context, token *oauth2.Token) Credentials {
	updated := c
	updated.AccessToken = token.AccessToken
	updated.Expiry = token.Expiry
	if token.RefreshToken != "" {
		updated.RefreshToken = token.RefreshToken
	}
	if apiDomain, ok := token.Extra("api_domain").(string); ok && apiDomain != "" {
		updated.APIDomain = apiDomain
	}

	// Expiry is computed by oauth2, ExpiresIn only mirrors the raw answer
	seconds, err := expiresIn(token)
	if err != nil {
		logger.FromContext(ctx).WithName(loggerName).Debug("token lifetime not available", "error", err.Error())
	}
	updated.ExpiresIn = seconds

	return updated
}

// expiresIn reads the lifetime in seconds sent by the token endpoint. A missing value
// is reported as zero without error.
func expiresIn(token *oauth2.Token) (int64, error) {
	switch value := token.Extra("expires_in").(type) {
	case nil:
		return 0, nil
	case float64:
		return int64(value), nil
	case string:
		seconds, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing expires_in %q: %w", value, err)
		}
		return seconds, nil
	default:
		return 0, fmt.Errorf("unexpected expires_in type %T", value)
	}
}

// Credentials returns a copy of the credentials currently in use.
func (c *Client) Credentials() Credentials {
	return *c.credentials.Load()
}

// RefreshAccessToken exchanges the refresh token for a new access token.
// The new token replaces the current one only when the exchange succeeds.
func (c *Client) RefreshAccessToken(ctx context.Context) error {
	log := logger.FromContext(ctx).WithName(loggerName)
	current := c.credentials.Load()

	log.Debug("refreshing access token")
	source := c.oauthConfig(*current).TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: current.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return &AuthenticationError{err: err}
	}

	updated := current.withToken(ctx, token)
	c.credentials.Store(&updated)
	log.Info("access token refreshed", "expiresIn", updated.ExpiresIn)
	return nil
}

// ExchangeCode trades a grant code for a refresh and access token pair and stores them.
func (c *Client) ExchangeCode(ctx context.Context, code string) (Credentials, error) {
	current := c.credentials.Load()

	token, err := c.oauthConfig(*current).Exchange(c.oauthContext(ctx), code, oauth2.AccessTypeOffline)
	if err != nil {
		return Credentials{}, &AuthenticationError{err: err}
	}

	updated := current.withToken(ctx, token)
	c.credentials.Store(&updated)
	return updated, nil
}

func (c *Client) oauthConfig(credentials Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     credentials.ClientID,
		ClientSecret: credentials.ClientSecret,
		RedirectURL:  c.redirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// oauthContext makes the token exchange use the same http client as the API calls.
func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// ensureAccessToken returns the current credentials, refreshing them first when no
// access token has been obtained yet.
func (c *Client) ensureAccessToken(ctx context.Context) (Credentials, error) {
	if current := c.credentials.Load(); current.AccessToken != "" {
		return *current, nil
	}

	if err := c.RefreshAccessToken(ctx); err != nil {
		return Credentials{}, err
	}
	return *c.credentials.Load(), nil
}
