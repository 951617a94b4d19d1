/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/carverauto/lanwatch/pkg/logger"
	"github.com/carverauto/lanwatch/pkg/metrics"
	"github.com/carverauto/lanwatch/pkg/models"
)

const defaultBusyTimeout = 5 * time.Second

// Options controls how the store file is opened.
type Options struct {
	// ResetOnStart drops every table except agent_data before the schema
	// is created.
	ResetOnStart bool
	BusyTimeout  time.Duration
}

// DB is the SQLite implementation of Service.
type DB struct {
	conn   *sql.DB
	logger logger.Logger
}

var _ Service = (*DB)(nil)

// New opens (creating if needed) the SQLite file at path and bootstraps the
// schema. Transactions take the write lock on BEGIN so concurrent writers
// queue on the busy timeout instead of failing on lock upgrade.
func New(ctx context.Context, path string, opts Options, log logger.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create store directory: %w", ErrFailedOpenDB, err)
	}

	busy := opts.BusyTimeout
	if busy <= 0 {
		busy = defaultBusyTimeout
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_txlock=immediate",
		path, busy.Milliseconds())

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	db := &DB{conn: conn, logger: log}

	if err := db.initSchema(ctx, opts.ResetOnStart); err != nil {
		_ = conn.Close()

		return nil, err
	}

	log.Info().Str("path", path).Bool("reset", opts.ResetOnStart).Msg("State store opened")

	return db, nil
}

func (db *DB) initSchema(ctx context.Context, reset bool) error {
	if reset {
		for _, table := range volatileTables {
			if _, err := db.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return fmt.Errorf("%w: drop %s: %w", ErrFailedToInit, table, err)
			}
		}
	}

	for _, stmt := range schema {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %w", ErrFailedToInit, err)
		}
	}

	return nil
}

// Close closes the underlying database handle.
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}

	return db.conn.Close()
}

// withTx runs fn inside a write-locking transaction.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()

		return err
	}

	return tx.Commit()
}

// storeError records the failure and wraps it as a models.ErrStore.
func storeError(op string, err error) error {
	metrics.StoreErrorsTotal.WithLabelValues(op).Inc()

	return fmt.Errorf("%w: %s: %w", models.ErrStore, op, err)
}
