// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package zoho

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tidwall/gjson"
)

var (
	// ErrNotModified is returned when the API answers 304 to a conditional request: there is
	// no new data after the requested modification time.
	ErrNotModified = errors.New("zoho: not modified")

	featureNotEnabledCodes = []string{
		"FEATURE_NOT_ENABLED",
		"FEATURE_NOT_SUPPORTED",
		"FEATURE_NOT_AVAILABLE",
	}
)

// AuthenticationError reports a failed token exchange against the accounts endpoint.
// It is never retried.
type AuthenticationError struct {
	err error
}

func (e *AuthenticationError) Error() string {
	return "zoho authentication: " + e.err.Error()
}

func (e *AuthenticationError) Unwrap() error {
	return e.err
}

// HTTPError is a non successful answer from the CRM API.
type HTTPError struct {
	Resource   string
	StatusCode int
	Code       string
	Message    string
}

func newHTTPError(resource string, statusCode int, body []byte) *HTTPError {
	httpErr := &HTTPError{
		Resource:   resource,
		StatusCode: statusCode,
	}

	if !gjson.ValidBytes(body) {
		return httpErr
	}

	details := gjson.ParseBytes(body)
	if !details.Get("code").Exists() {
		details = details.Get("data.0")
	}

	httpErr.Code = details.Get("code").String()
	httpErr.Message = details.Get("message").String()
	return httpErr
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("zoho: GET %s: status %d", e.Resource, e.StatusCode)
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	return msg
}

func (e *HTTPError) featureNotEnabled() bool {
	return slices.Contains(featureNotEnabledCodes, e.Code)
}

// FeatureNotEnabledError reports a module or feature that is not available for the
// authenticated account. Callers skip the resource instead of failing.
type FeatureNotEnabledError struct {
	Resource string
	Code     string
	Message  string
}

func (e *FeatureNotEnabledError) Error() string {
	return fmt.Sprintf("zoho: %s not enabled for this account: %s", e.Resource, e.Message)
}

// IsFeatureNotEnabled reports whether err, or any error it wraps, is a FeatureNotEnabledError.
func IsFeatureNotEnabled(err error) bool {
	var notEnabled *FeatureNotEnabledError
	return errors.As(err, &notEnabled)
}
