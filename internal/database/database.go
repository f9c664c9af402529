// Package database provides SQLite persistence for players, games and
// match state.
package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection.
type DB struct {
	conn *sql.DB
}

// pragmas are applied to every connection through the DSN.
var pragmas = []string{
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"busy_timeout(5000)",
}

// New opens the database at path, creating the file and its directory if
// needed, and brings the schema up to date.
func New(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer; a single connection keeps writes ordered.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database %s: %w", path, err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return path + "?" + q.Encode()
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// SchemaVersion returns the number of applied migrations.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	err := db.conn.QueryRow(`PRAGMA user_version`).Scan(&v)
	return v, err
}

// migrate applies every migration above the stored schema version, each in
// its own transaction together with the version bump.
func (db *DB) migrate() error {
	current, err := db.SchemaVersion()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > len(migrations) {
		return fmt.Errorf("schema version %d is newer than this build (%d)", current, len(migrations))
	}

	for i := current; i < len(migrations); i++ {
		m := migrations[i]
		version := i + 1
		if err := db.apply(version, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", version, m.name, err)
		}
		log.Info().Int("version", version).Str("name", m.name).Msg("Applied migration")
	}
	return nil
}

func (db *DB) apply(version int, m migration) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	// PRAGMA does not take bound parameters.
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, version)); err != nil {
		return err
	}
	return tx.Commit()
}
