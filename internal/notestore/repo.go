package notestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/previewdeck/internal/models"
)

// GetNote returns the note for a project, or nil when none exists.
func (db *DB) GetNote(ctx context.Context, projectName string) (*models.UserNote, error) {
	var n models.UserNote
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, project_name, content, updated_at
		FROM user_notes
		WHERE project_name = ?
	`, projectName).Scan(&n.ID, &n.ProjectName, &n.Content, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("notestore: get note: %w", err)
	}
	return &n, nil
}

// SaveNote creates the first note for a project or overwrites the existing
// one in place. The row id is stable across saves; only content and
// updated_at change.
func (db *DB) SaveNote(ctx context.Context, projectName, content string) (*models.UserNote, error) {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO user_notes (project_name, content, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(project_name) DO UPDATE SET
			content    = excluded.content,
			updated_at = excluded.updated_at
	`, projectName, content, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("notestore: save note: %w", err)
	}
	return db.GetNote(ctx, projectName)
}

// CreateUpload appends an upload record and returns it with its assigned id.
func (db *DB) CreateUpload(ctx context.Context, up models.Upload) (*models.Upload, error) {
	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO uploads (project_name, filename, timestamp, url, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, up.ProjectName, up.Filename, up.Timestamp, up.URL, up.Metadata, now)
	if err != nil {
		return nil, fmt.Errorf("notestore: create upload: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("notestore: upload id: %w", err)
	}
	up.ID = id
	up.CreatedAt = now
	return &up, nil
}

// ListUploads returns the upload history, newest first.
func (db *DB) ListUploads(ctx context.Context) ([]models.Upload, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, project_name, filename, timestamp, url, metadata, created_at
		FROM uploads
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("notestore: list uploads: %w", err)
	}
	defer rows.Close()

	var out []models.Upload
	for rows.Next() {
		var u models.Upload
		if err := rows.Scan(&u.ID, &u.ProjectName, &u.Filename, &u.Timestamp, &u.URL, &u.Metadata, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
