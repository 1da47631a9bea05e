// Package notestore provides SQLite-backed persistence for user notes and
// upload history.
package notestore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/previewdeck/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS user_notes (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	project_name TEXT NOT NULL UNIQUE,
	content      TEXT NOT NULL DEFAULT '',
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS uploads (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	project_name TEXT NOT NULL,
	filename     TEXT NOT NULL,
	timestamp    TEXT NOT NULL,
	url          TEXT NOT NULL,
	metadata     TEXT NOT NULL DEFAULT '',
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_uploads_project ON uploads(project_name);
`

// Store defines the persistence operations used by the API and MCP layers.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Store interface {
	GetNote(ctx context.Context, projectName string) (*models.UserNote, error)
	SaveNote(ctx context.Context, projectName, content string) (*models.UserNote, error)
	CreateUpload(ctx context.Context, up models.Upload) (*models.Upload, error)
	ListUploads(ctx context.Context) ([]models.Upload, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// DB wraps a sql.DB with note-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("notestore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notestore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notestore: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
