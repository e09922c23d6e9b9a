package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"accessapi/internal/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// NewDB returns a migrated sqlite database in a per-test temp directory.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(context.Background(), sqlite.Open(database.SQLiteDSN(path)))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
