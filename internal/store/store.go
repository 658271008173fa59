// Package store owns the output database: a self-contained SQLite file
// opened (or truncated and recreated) once per run, to which the
// Ingest Driver writes the event-type dictionary and then, per file, a
// transactional batch of file and line rows.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/cbl-diagnostics/logscope/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Store owns the single output database connection for a run. No other
// component writes to it; the Ingest Driver is its exclusive owner.
type Store struct {
	db *sql.DB
}

// Open truncates (or creates) the SQLite file at path and applies the
// schema fresh. Schema evolution between runs is out of scope: every
// run starts from an empty database.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("store: removing existing database at %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}

	db.SetMaxOpenConns(config.GetEnvInt("LOGSCOPE_STORE_MAX_OPEN_CONNS", 1))
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying *sql.DB for read-only diagnostic queries
// (e.g. the uninserted-revs query in queries.go).
func (s *Store) DB() *sql.DB { return s.db }
