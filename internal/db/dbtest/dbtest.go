// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/PontoAdmin/ponto-admin/internal/db/models"
)

// Open creates an in-memory SQLite database with every model migrated.
// The pool is limited to one connection so all queries see the same database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "failed to migrate test database")

	return db
}

// Mutations counts create, update and delete statements issued through a gorm.DB.
type Mutations struct {
	n atomic.Int64
}

// Count returns the number of mutating statements seen so far.
func (m *Mutations) Count() int64 {
	return m.n.Load()
}

// CountMutations registers callbacks on db that count every create, update and
// delete statement, raw ones excluded.
func CountMutations(t *testing.T, db *gorm.DB) *Mutations {
	t.Helper()

	m := &Mutations{}
	inc := func(*gorm.DB) { m.n.Add(1) }

	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("dbtest:count_create", inc))
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("dbtest:count_update", inc))
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("dbtest:count_delete", inc))

	return m
}
