// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sigil-dev/redvec/internal/store"
	sigilerr "github.com/sigil-dev/redvec/pkg/errors"
)

// BackendName is the registry name of this backend.
const BackendName = "sqlite"

func init() {
	sqlite_vec.Auto()
}

// Compile-time interface check.
var _ store.Backend = (*Store)(nil)

// Store implements store.Backend on a local SQLite database. Records are
// kept as hash rows; an index is a prefix registration over those rows and
// KNN distances are computed by the sqlite-vec extension.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, sigilerr.New(sigilerr.CodeConfigValidateInvalidValue, "sqlite backend requires a database path")
	}

	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	if dbPath == ":memory:" {
		dsn = dbPath
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreConnectionFailure, "opening sqlite db")
	}
	if dbPath == ":memory:" {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreConnectionFailure, "pinging sqlite db")
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "migrating sqlite db")
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS hashes (
	key   TEXT NOT NULL,
	field TEXT NOT NULL,
	value BLOB,
	PRIMARY KEY (key, field)
);
CREATE TABLE IF NOT EXISTS search_indexes (
	name   TEXT PRIMARY KEY,
	prefix TEXT NOT NULL,
	spec   TEXT NOT NULL
);`
	_, err := db.Exec(ddl)
	return err
}

// VecVersion reports the loaded sqlite-vec extension version.
func (s *Store) VecVersion(ctx context.Context) (string, error) {
	var v string
	if err := s.db.QueryRowContext(ctx, `SELECT vec_version()`).Scan(&v); err != nil {
		return "", sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "reading sqlite-vec version")
	}
	return v, nil
}

func (s *Store) Name() string { return BackendName }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreConnectionFailure, "pinging sqlite db")
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	const q = `INSERT INTO kv(key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, q, key, value); err != nil {
		return sigilerr.Wrap(err, sigilerr.CodeStoreWriteFailure, "setting key", sigilerr.FieldKey(key))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.KeyNotFound(key)
	}
	if err != nil {
		return "", sigilerr.Wrap(err, sigilerr.CodeStoreDatabaseFailure, "getting key", sigilerr.FieldKey(key))
	}
	return v, nil
}
