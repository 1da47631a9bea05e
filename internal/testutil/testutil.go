// Package testutil provides shared test helpers for setting up buckets and
// databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/previewdeck/internal/notestore"
	"github.com/starford/previewdeck/internal/storage"
)

// TestStore creates a temporary SQLite note store that is automatically
// cleaned up.
func TestStore(t *testing.T) *notestore.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "previewdeck-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := notestore.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestBucket creates a temporary filesystem bucket.
func TestBucket(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	bucket, err := storage.NewFS(dir, "/previews")
	if err != nil {
		t.Fatal(err)
	}
	return dir, bucket
}
