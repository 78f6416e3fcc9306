package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "lists", cfg.Storage.Bucket)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.True(t, cfg.Catalog.Enabled)
	assert.False(t, cfg.Catalog.Validate)
	assert.Equal(t, 60, cfg.Catalog.ReleaseIntervalSeconds)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CATALOG_VALIDATE", "true")
	t.Setenv("CATALOG_PREFIXES", "inbox/,outbox/")
	t.Setenv("DATABASE_DRIVER", "sqlite")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Catalog.Validate)
	assert.Equal(t, []string{"inbox/", "outbox/"}, cfg.Catalog.PrefixList())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	// Registered so the values loaded from .env are restored afterwards.
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CATALOG_TABLES", "")

	dir := t.TempDir()
	content := "LOG_LEVEL=debug\nCATALOG_TABLES=todo\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"todo"}, cfg.Catalog.TableList())
}
