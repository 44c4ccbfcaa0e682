// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package zoho

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/cenkalti/backoff/v4"
	"github.com/tidwall/gjson"

	"github.com/mia-platform/zohosync/internal/info"
	"github.com/mia-platform/zohosync/internal/logger"
)

const (
	loggerName = "zohosync:zoho"

	apiPath             = "/crm/v2/"
	authorizationPrefix = "Zoho-oauthtoken "

	// DefaultTokenURL is the accounts endpoint used when none is configured.
	DefaultTokenURL = "https://accounts.zoho.eu/oauth/v2/token"

	defaultMaxAttempts     = 5
	defaultInitialInterval = time.Second
	defaultRequestTimeout  = 60 * time.Second
)

// Client performs authenticated GET requests against the Zoho CRM v2 API.
// It is safe for concurrent use.
type Client struct {
	credentials atomic.Pointer[Credentials]

	httpClient      *http.Client
	tokenURL        string
	redirectURI     string
	userAgent       string
	maxAttempts     uint64
	initialInterval time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the http client used for both API and token requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRequestTimeout bounds every single request made by the client. The http client set
// by WithHTTPClient is kept and copied, never modified.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		httpClient := *c.httpClient
		httpClient.Timeout = timeout
		c.httpClient = &httpClient
	}
}

// WithTokenURL sets the OAuth token endpoint.
func WithTokenURL(tokenURL string) Option {
	return func(c *Client) {
		if tokenURL != "" {
			c.tokenURL = tokenURL
		}
	}
}

// WithRedirectURI sets the redirect uri sent when exchanging a grant code.
func WithRedirectURI(redirectURI string) Option {
	return func(c *Client) {
		c.redirectURI = redirectURI
	}
}

// WithRetry sets the number of attempts made for a request and the wait before the first
// retry. The wait doubles on every following attempt.
func WithRetry(maxAttempts int, initialInterval time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = uint64(max(maxAttempts, 1))
		c.initialInterval = initialInterval
	}
}

// NewClient returns a Client using credentials. When credentials carry no access token the
// first request triggers a refresh.
func NewClient(credentials Credentials, options ...Option) *Client {
	client := &Client{
		httpClient:      &http.Client{Timeout: defaultRequestTimeout},
		tokenURL:        DefaultTokenURL,
		userAgent:       info.UserAgent(),
		maxAttempts:     defaultMaxAttempts,
		initialInterval: defaultInitialInterval,
	}
	for _, option := range options {
		option(client)
	}

	client.credentials.Store(&credentials)
	return client
}

// Get requests resource under the API root and returns the raw response body.
// A non empty modifiedSince is sent as If-Modified-Since; a 304 answer is reported as
// ErrNotModified. A 204 answer returns an empty body and no error.
// Rate limits, server errors and network failures are retried with exponential backoff;
// authorization failures trigger a token refresh before the retry.
func (c *Client) Get(ctx context.Context, resource string, params url.Values, modifiedSince string) ([]byte, error) {
	log := logger.FromContext(ctx).WithName(loggerName)

	var body []byte
	operation := func() error {
		var err error
		body, err = c.get(ctx, resource, params, modifiedSince)
		return err
	}

	attempt := 1
	notify := func(err error, wait time.Duration) {
		log.Warn("request failed, retrying",
			"resource", resource,
			"attempt", attempt,
			"wait", wait.String(),
			"error", err.Error(),
		)
		attempt++
	}

	if err := backoff.RetryNotify(operation, c.backOff(ctx), notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = c.initialInterval
	exponential.Multiplier = 2
	exponential.RandomizationFactor = 0
	exponential.MaxElapsedTime = 0
	exponential.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(exponential, c.maxAttempts-1), ctx)
}

// get performs a single attempt. Errors wrapped with backoff.Permanent stop the retries.
func (c *Client) get(ctx context.Context, resource string, params url.Values, modifiedSince string) ([]byte, error) {
	credentials, err := c.ensureAccessToken(ctx)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	var status int
	buffer := new(bytes.Buffer)
	builder := requests.
		URL(credentials.APIDomain).
		Path(apiPath+resource).
		Client(c.httpClient).
		UserAgent(c.userAgent).
		Accept("application/json").
		Header("Authorization", authorizationPrefix+credentials.AccessToken).
		AddValidator(func(res *http.Response) error {
			status = res.StatusCode
			return nil
		}).
		ToBytesBuffer(buffer)
	for key, values := range params {
		builder.Param(key, values...)
	}
	if modifiedSince != "" {
		builder.Header("If-Modified-Since", modifiedSince)
	}

	if err := builder.Fetch(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, backoff.Permanent(ctxErr)
		}
		return nil, fmt.Errorf("zoho: GET %s: %w", resource, err)
	}

	return c.handleResponse(ctx, resource, status, buffer.Bytes())
}

func (c *Client) handleResponse(ctx context.Context, resource string, status int, body []byte) ([]byte, error) {
	log := logger.FromContext(ctx).WithName(loggerName)

	switch {
	case status == http.StatusNotModified:
		return nil, backoff.Permanent(ErrNotModified)
	case status == http.StatusNoContent:
		return nil, nil
	case status >= 200 && status < 300:
		if !gjson.ValidBytes(body) {
			return nil, backoff.Permanent(fmt.Errorf("zoho: GET %s: invalid JSON response", resource))
		}
		return body, nil
	}

	httpErr := newHTTPError(resource, status, body)
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		if httpErr.featureNotEnabled() {
			return nil, backoff.Permanent(&FeatureNotEnabledError{
				Resource: resource,
				Code:     httpErr.Code,
				Message:  httpErr.Message,
			})
		}

		log.Warn("request rejected, refreshing access token", "resource", resource, "statusCode", status)
		if err := c.RefreshAccessToken(ctx); err != nil {
			return nil, backoff.Permanent(errors.Join(httpErr, err))
		}
	case http.StatusTooManyRequests:
		log.Warn("rate limit reached", "resource", resource)
	case http.StatusInternalServerError:
		log.Warn("internal server error", "resource", resource)
	}

	return nil, httpErr
}
