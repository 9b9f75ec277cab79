package database

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"
)

// OpenTestDB returns a migrated sqlite database in a temp directory that is
// removed when the test ends.
func OpenTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
