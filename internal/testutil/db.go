// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDB returns a migrated-by-caller SQLite database in t.TempDir(). One
// connection keeps transactions and background writers serialised.
func OpenDB(t *testing.T, migrate ...func(*gorm.DB) error) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "inventory.db")
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on&_busy_timeout=5000"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, m := range migrate {
		require.NoError(t, m(db))
	}
	return db
}
