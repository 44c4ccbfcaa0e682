// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package logger wraps hclog behind the Logger interface used across zohosync.
// It centralizes configuration and makes loggers available through context helpers.
package logger
