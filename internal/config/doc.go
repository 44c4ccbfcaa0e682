// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package config loads the connector configuration from an optional .env file, an optional
// YAML or JSON file using the Singer tap keys, and ZOHO_* environment variables.
package config
