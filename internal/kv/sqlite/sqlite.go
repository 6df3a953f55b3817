// Package sqlite implements the key/value backend on a single SQLite file.
//
// WHY SQLITE?
// The journal is a handful of JSON blobs owned by one person. SQLite keeps
// them in one file next to the binary, survives crashes, and lets the CLI
// and the server open the same journal at the same time (WAL mode).
//
// modernc.org/sqlite is the pure Go translation of SQLite, so there is no
// CGo and no C compiler involved in the build.
//
// SCHEMA:
// One table, kv(key, value, updated_at). The schema lives in migrations/
// and is applied by goose at open time, so a journal created by an older
// binary is brought up to date automatically.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/sakif/vininote/internal/kv/sqlite/migrations"
)

const table = "kv"

// Store is a kv backend over a sql.DB connection pool.
type Store struct {
	conn *sql.DB
	path string
}

// New opens (or creates) the database at path and runs pending migrations.
//
// path examples:
//   - "data/vininote.db" → file-based journal, parent directory created
//   - ":memory:"         → in-memory journal, gone on Close (tests)
func New(ctx context.Context, path string) (*Store, error) {
	inMemory := path == ":memory:"
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: creating directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate empty database, so the
	// pool must never grow past one.
	if inMemory {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers (the server) carry on while a writer (the CLI)
	// commits. busy_timeout makes the second writer wait instead of failing.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	s := &Store{conn: conn, path: path}
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.conn, migrations.FS)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path is the database file this store was opened on.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args, err := sq.Select("value").
		From(table).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: building get query: %w", err)
	}

	var value string
	err = s.conn.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: getting %q: %w", key, err)
	}

	return []byte(value), true, nil
}

// Set upserts key. A single INSERT ... ON CONFLICT statement is atomic, so
// a concurrent reader never observes a half-written value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := sq.Insert(table).
		Columns("key", "value", "updated_at").
		Values(key, string(value), sq.Expr("CURRENT_TIMESTAMP")).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building set query: %w", err)
	}

	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: setting %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key affects zero rows and is fine.
func (s *Store) Delete(ctx context.Context, key string) error {
	query, args, err := sq.Delete(table).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: building delete query: %w", err)
	}

	if _, err := s.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: deleting %q: %w", key, err)
	}
	return nil
}

// Keys lists keys starting with prefix, sorted.
//
// LIKE is case-insensitive in SQLite and treats "_" as a wildcard, and our
// keys are full of underscores, so the prefix is compared with substr.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	b := sq.Select("key").From(table).OrderBy("key")
	if prefix != "" {
		b = b.Where(sq.Expr("substr(key, 1, ?) = ?", utf8.RuneCountInString(prefix), prefix))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: building keys query: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("sqlite: scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating keys: %w", err)
	}

	return keys, nil
}
