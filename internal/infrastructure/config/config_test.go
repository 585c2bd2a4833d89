package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
promotion:
  catalog_path: catalog.yaml
  item_data_path: items.yaml
storage:
  database_path: /tmp/party.db
api:
  port: 9090
  allowed_origins:
    - http://example.com
observability:
  logging:
    level: debug
    format: text
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "catalog.yaml", cfg.Promotion.CatalogPath)
	assert.Equal(t, "items.yaml", cfg.Promotion.ItemDataPath)
	assert.Equal(t, "/tmp/party.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, []string{"http://example.com"}, cfg.API.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_PARTY_DB", "/data/expanded.db")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "storage:\n  database_path: ${TEST_PARTY_DB}\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/expanded.db", cfg.Storage.DatabasePath)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "party_orders.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.NotEmpty(t, cfg.API.AllowedOrigins)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, "text", cfg.Observability.Logging.Format)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PARTY_CATALOG_PATH", "/etc/party/catalog.yaml")
	t.Setenv("PARTY_DB_PATH", "/data/party.db")
	t.Setenv("PARTY_API_PORT", "9191")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadFromEnv()

	assert.Equal(t, "/etc/party/catalog.yaml", cfg.Promotion.CatalogPath)
	assert.Equal(t, "/data/party.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 9191, cfg.API.Port)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
}

func TestLoadFromEnv_InvalidPortFallsBack(t *testing.T) {
	t.Setenv("PARTY_API_PORT", "not-a-number")

	cfg := LoadFromEnv()
	assert.Equal(t, 8080, cfg.API.Port)
}

func TestLoadOrEnvWithPath_MissingFileFallsBack(t *testing.T) {
	t.Setenv("PARTY_DB_PATH", "/data/fallback.db")

	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, "/data/fallback.db", cfg.Storage.DatabasePath)
}
