// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package state holds the bookmarks saved between sync runs and the Store interface
// implemented by the file, sqlite, Azure Blob and stdout backends.
package state
