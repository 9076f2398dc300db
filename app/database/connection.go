package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the embedded SQLite store with separate read-optimized and
// write-optimized handles. All writers serialize through the single-
// connection write handle; readers share a pool against the WAL snapshot.
type DB struct {
	ro *sql.DB
	rw *sql.DB
}

// Open opens (creating if needed) the store at path. ":memory:" opens a
// shared-cache in-memory database, which tests use.
func Open(path string) (*DB, error) {
	connStr := path
	if path == ":memory:" {
		// shared cache so both handles see the same in-memory database
		connStr = "file::memory:?cache=shared"
	}

	rw, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite permits one writer at a time; a single connection avoids
	// SQLITE_BUSY churn on the write path
	rw.SetMaxOpenConns(1)

	if err := rw.Ping(); err != nil {
		rw.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := rw.Exec(pragma); err != nil {
			rw.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	ro, err := sql.Open("sqlite", connStr)
	if err != nil {
		rw.Close()
		return nil, fmt.Errorf("failed to open read handle: %w", err)
	}
	if path == ":memory:" {
		ro.SetMaxOpenConns(1)
	}
	if _, err := ro.Exec("PRAGMA busy_timeout=5000"); err != nil {
		ro.Close()
		rw.Close()
		return nil, fmt.Errorf("failed to configure read handle: %w", err)
	}

	return &DB{ro: ro, rw: rw}, nil
}

// Close closes both handles.
func (db *DB) Close() error {
	roErr := db.ro.Close()
	rwErr := db.rw.Close()
	if rwErr != nil {
		return rwErr
	}
	return roErr
}
