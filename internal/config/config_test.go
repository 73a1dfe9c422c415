package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, "COWIN", cfg.Engine.FallbackTruckAgent)
	assert.Equal(t, "ko", cfg.Engine.Locale)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "file", cfg.Storage.Backend)
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"engine":{"fallback_truck_agent":"TRUCKCO"},"server":{"addr":":9000"}}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "TRUCKCO", cfg.Engine.FallbackTruckAgent)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "ko", cfg.Engine.Locale, "unset fields keep their defaults")
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"engine":`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Catalog.Path = "/srv/catalog.hcl"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/catalog.hcl", loaded.Catalog.Path)
}

func TestLoadEnvOverrides(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FREIGHT_COST_LOCALE=en\nFREIGHT_COST_STORAGE_BACKEND=memory\n"), 0644))

	t.Setenv("FREIGHT_COST_CATALOG", "/data/catalog.json")
	t.Setenv("FREIGHT_COST_METRICS_ENABLED", "false")
	t.Cleanup(func() {
		os.Unsetenv("FREIGHT_COST_LOCALE")
		os.Unsetenv("FREIGHT_COST_STORAGE_BACKEND")
	})

	cfg := Default()
	cfg.LoadEnv(envFile, filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "en", cfg.Engine.Locale)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "/data/catalog.json", cfg.Catalog.Path)
	assert.False(t, cfg.Server.MetricsEnabled)
	assert.Equal(t, "COWIN", cfg.Engine.FallbackTruckAgent)
}

func TestLoadEnvNumericOverrides(t *testing.T) {
	t.Setenv("FREIGHT_COST_RATE_LIMIT", "2.5")
	t.Setenv("FREIGHT_COST_RATE_BURST", "nope")
	t.Setenv("FREIGHT_COST_REDIS_DB", "3")
	t.Setenv("FREIGHT_COST_CATALOG_RELOAD", "@every 5m")

	cfg := Default()
	cfg.LoadEnv()

	assert.Equal(t, 2.5, cfg.Server.RateLimit)
	assert.Equal(t, 40, cfg.Server.RateBurst, "unparseable values keep the default")
	assert.Equal(t, 3, cfg.Storage.RedisDB)
	assert.Equal(t, "@every 5m", cfg.Catalog.ReloadSchedule)
}

func TestStorageOptions(t *testing.T) {
	opts := StorageConfig{Directory: "/q", PostgresURL: "postgres://db/quotes", RedisAddr: "cache:6379", RedisDB: 2}.Options()
	assert.Equal(t, "/q", opts["path"])
	assert.Equal(t, "postgres://db/quotes", opts["url"])
	assert.Equal(t, "cache:6379", opts["addr"])
	assert.Equal(t, "2", opts["db"])
}
