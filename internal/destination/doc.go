// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package destination defines the Sink receiving the records extracted by a sync run.
package destination
