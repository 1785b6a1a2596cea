// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GoAgora/go-agora/internal/db/models"
)

// Open creates an in-memory SQLite database with every model migrated.
// The pool is limited to one connection, each sqlite memory connection is its own database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate test database")

	return db
}

// Seed inserts rows and fails the test on error.
func Seed[T any](t *testing.T, db *gorm.DB, rows ...T) {
	t.Helper()

	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error, "failed to seed test data")
	}
}
