package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "sandfs", cfg.App.Name)

	// Storage config
	assert.Equal(t, 65536, cfg.Storage.ChunkSize)
	assert.Equal(t, "sha256", cfg.Storage.HashAlgorithm)
	assert.Equal(t, 0, cfg.Storage.WalkWorkers)

	// Archive config
	assert.Equal(t, "aes256", cfg.Archive.Encryption)
	assert.Equal(t, "default", cfg.Archive.TarLevel)

	// Logging config
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.App, cfg.App)
	assert.Equal(t, def.Storage, cfg.Storage)
	assert.Equal(t, def.Archive, cfg.Archive)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"SANDFS_APP":            "notes",
		"SANDFS_HOME":           "/data/notes",
		"SANDFS_CACHES":         "/cache/notes",
		"SANDFS_TMP":            "/tmp/notes",
		"SANDFS_CHUNK_SIZE":     "4096",
		"SANDFS_HASH":           "md5",
		"SANDFS_WALK_WORKERS":   "2",
		"SANDFS_ZIP_ENCRYPTION": "zipcrypto",
		"SANDFS_TAR_LEVEL":      "best",
		"LOG_LEVEL":             "debug",
		"LOG_DEV":               "true",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "notes", cfg.App.Name)
	assert.Equal(t, "/data/notes", cfg.Roots.Home)
	assert.Equal(t, "/cache/notes", cfg.Roots.Caches)
	assert.Equal(t, "/tmp/notes", cfg.TempDir())
	assert.Equal(t, 4096, cfg.Storage.ChunkSize)
	assert.Equal(t, "md5", cfg.Storage.HashAlgorithm)
	assert.Equal(t, 2, cfg.Storage.WalkWorkers)
	assert.Equal(t, "zipcrypto", cfg.Archive.Encryption)
	assert.Equal(t, "best", cfg.Archive.TarLevel)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	home, err := cfg.HomeDir()
	require.NoError(t, err)
	assert.Equal(t, "/data/notes", home)

	caches, err := cfg.CachesDir()
	require.NoError(t, err)
	assert.Equal(t, "/cache/notes", caches)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero chunk size", key: "SANDFS_CHUNK_SIZE", value: "0"},
		{name: "non numeric chunk size", key: "SANDFS_CHUNK_SIZE", value: "big"},
		{name: "negative workers", key: "SANDFS_WALK_WORKERS", value: "-1"},
		{name: "nested app name", key: "SANDFS_APP", value: "a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)

			// LoadOrDefault falls back instead of failing
			cfg := LoadOrDefault()
			assert.Equal(t, Default().Storage.ChunkSize, cfg.Storage.ChunkSize)
		})
	}
}

func TestDefaultRootsDeriveFromAppName(t *testing.T) {
	cfg := Default()
	cfg.App.Name = "ledger"

	home, err := cfg.HomeDir()
	if err != nil {
		t.Skipf("no user config dir on this host: %v", err)
	}
	assert.Equal(t, "ledger", filepath.Base(home))

	caches, err := cfg.CachesDir()
	if err != nil {
		t.Skipf("no user cache dir on this host: %v", err)
	}
	assert.Equal(t, "ledger", filepath.Base(caches))
	assert.Empty(t, cfg.TempDir())
}
