// Package testutil provides shared test helpers for setting up stores and databases.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/mkarlsen/notat/internal/index"
	"github.com/mkarlsen/notat/internal/store"
)

// TestDB creates a temporary SQLite index that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestStore creates a file-backed note store in a temp directory and returns
// its path alongside the store.
func TestStore(t *testing.T) (string, *store.Local) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.json")
	return path, store.NewLocal(path)
}
