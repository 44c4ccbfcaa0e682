// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package server contains the status server started by scheduled sync runs.
// It sets up the HTTP server using the Fiber framework, configures middleware for logging,
// and defines routes for health checks and the report of the last sync run.
package server
