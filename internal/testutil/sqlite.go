// Package testutil provides database helpers shared by package tests:
// SQLite-backed stores with the swap schema and seed fixtures for the
// catalog, customer and sales tables the swap flow reads.
package testutil

import (
	"testing"

	"github.com/phoneshop/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a private in-memory SQLite database with every swap table.
// The pool is pinned to one connection so that concurrent callers serialize
// the way row locks would serialize them on PostgreSQL.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to open SQLite database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate swap models")
	return db
}
