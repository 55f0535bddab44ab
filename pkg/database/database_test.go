package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pastelaria-service/pkg/config"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := &config.DBConfig{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "db.sqlite"), LogLevel: "silent"}

	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))

	for _, table := range []string{"customers", "product_types", "products"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasColumn("products", "deleted_at"))
}
