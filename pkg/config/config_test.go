package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, time.Hour, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, "fs", cfg.Storage.Backend)
	assert.Equal(t, "keep", cfg.Storage.OrphanPolicy)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/x.db")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("IMAGE_ORPHAN_POLICY", "remove")
	t.Setenv("JWT_SIGNING_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.DB.SQLitePath)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "remove", cfg.Storage.OrphanPolicy)
	assert.True(t, cfg.AuthEnabled())
}

func TestLoad_RejectsUnknownValues(t *testing.T) {
	cases := map[string][2]string{
		"driver":       {"DB_DRIVER", "mysql"},
		"backend":      {"STORAGE_BACKEND", "ftp"},
		"orphanPolicy": {"IMAGE_ORPHAN_POLICY", "archive"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "s3")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_BUCKET")
}

func TestDBConfig_GetDSNAndLogLevel(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable", LogLevel: "warn"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", c.GetDSN())
	assert.Equal(t, logger.Warn, c.GormLogLevel())

	c.LogLevel = "bogus"
	assert.Equal(t, logger.Info, c.GormLogLevel())
}
