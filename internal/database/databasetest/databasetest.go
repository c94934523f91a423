// Package databasetest provides a migrated in-memory SQLite database for tests.
package databasetest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/config"
	"github.com/Mahdi-Talal-01/next-step-assistant-sub001/internal/database"
)

// Open returns a fresh database private to the calling test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
