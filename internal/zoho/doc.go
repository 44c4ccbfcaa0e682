// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package zoho is the Zoho CRM API client used by the sync engine.
// It owns the OAuth credentials, refreshing them when the API rejects the access token,
// retries transient failures with exponential backoff and exposes the paginated module
// endpoints as lazy record sequences.
package zoho
