// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

// Package sqlite stores the sync state in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mia-platform/zohosync/internal/state"
)

const currentlySyncingKey = "currently_syncing"

var (
	_ state.Store = &Store{}

	pragmas = []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}

	schema = []string{
		`CREATE TABLE IF NOT EXISTS bookmarks (
			stream TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sync_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
)

// Store keeps one row per bookmark and the sync marker in a metadata table.
type Store struct {
	db *sql.DB
}

// Open opens the database at dsn and creates the state tables when missing.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("state: open database: %w", err)
	}

	// a single connection avoids SQLITE_BUSY between writers of the same process
	db.SetMaxOpenConns(1)

	for _, statement := range append(pragmas, schema...) {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("state: exec %q: %w", statement, err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Load(ctx context.Context) (*state.SyncState, error) {
	syncState := state.New()

	rows, err := s.db.QueryContext(ctx, "SELECT stream, value FROM bookmarks")
	if err != nil {
		return nil, fmt.Errorf("state: query bookmarks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stream, value string
		if err := rows.Scan(&stream, &value); err != nil {
			return nil, fmt.Errorf("state: scan bookmark: %w", err)
		}
		syncState.SetBookmark(stream, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("state: query bookmarks: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT value FROM sync_meta WHERE key = ?", currentlySyncingKey).Scan(&syncState.CurrentlySyncing)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("state: query sync marker: %w", err)
	}

	return syncState, nil
}

func (s *Store) Save(ctx context.Context, syncState *state.SyncState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("state: begin transaction: %w", err)
	}

	if err := replace(ctx, tx, syncState); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("state: commit: %w", err)
	}
	return nil
}

func replace(ctx context.Context, tx *sql.Tx, syncState *state.SyncState) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM bookmarks"); err != nil {
		return fmt.Errorf("state: clear bookmarks: %w", err)
	}
	for stream, value := range syncState.Bookmarks {
		if _, err := tx.ExecContext(ctx, "INSERT INTO bookmarks (stream, value) VALUES (?, ?)", stream, value); err != nil {
			return fmt.Errorf("state: save bookmark %q: %w", stream, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM sync_meta WHERE key = ?", currentlySyncingKey); err != nil {
		return fmt.Errorf("state: clear sync marker: %w", err)
	}
	if syncState.CurrentlySyncing != "" {
		if _, err := tx.ExecContext(ctx, "INSERT INTO sync_meta (key, value) VALUES (?, ?)", currentlySyncingKey, syncState.CurrentlySyncing); err != nil {
			return fmt.Errorf("state: save sync marker: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
