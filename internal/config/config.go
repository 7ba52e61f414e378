package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all library configuration.
type Config struct {
	App     AppConfig
	Roots   RootsConfig
	Storage StorageConfig
	Archive ArchiveConfig
	Logging LogConfig
}

// AppConfig names the application whose storage is being sandboxed.
type AppConfig struct {
	Name string `envconfig:"SANDFS_APP" default:"sandfs"`
}

// RootsConfig overrides the host locations of the sandbox roots.
// Empty values fall back to the platform defaults.
type RootsConfig struct {
	Home   string `envconfig:"SANDFS_HOME"`
	Caches string `envconfig:"SANDFS_CACHES"`
	Temp   string `envconfig:"SANDFS_TMP"`
}

// StorageConfig holds node I/O settings.
type StorageConfig struct {
	ChunkSize     int    `envconfig:"SANDFS_CHUNK_SIZE" default:"65536"`
	HashAlgorithm string `envconfig:"SANDFS_HASH" default:"sha256"`
	WalkWorkers   int    `envconfig:"SANDFS_WALK_WORKERS" default:"0"`
}

// ArchiveConfig holds archive codec settings.
type ArchiveConfig struct {
	Encryption string `envconfig:"SANDFS_ZIP_ENCRYPTION" default:"aes256"`
	TarLevel   string `envconfig:"SANDFS_TAR_LEVEL" default:"default"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"warn"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "sandfs",
		},
		Storage: StorageConfig{
			ChunkSize:     64 << 10,
			HashAlgorithm: "sha256",
		},
		Archive: ArchiveConfig{
			Encryption: "aes256",
			TarLevel:   "default",
		},
		Logging: LogConfig{
			Level:       "warn",
			Development: false,
		},
	}
}

// Validate rejects values that would make the library misbehave.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name cannot be empty")
	}
	if filepath.Base(c.App.Name) != c.App.Name {
		return fmt.Errorf("app name %q must be a single path element", c.App.Name)
	}
	if c.Storage.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Storage.ChunkSize)
	}
	if c.Storage.WalkWorkers < 0 {
		return fmt.Errorf("walk workers cannot be negative, got %d", c.Storage.WalkWorkers)
	}
	return nil
}

// HomeDir returns the persistent sandbox root.
func (c *Config) HomeDir() (string, error) {
	if c.Roots.Home != "" {
		return c.Roots.Home, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve home root: %w", err)
	}
	return filepath.Join(base, c.App.Name), nil
}

// CachesDir returns the system-managed cache root.
func (c *Config) CachesDir() (string, error) {
	if c.Roots.Caches != "" {
		return c.Roots.Caches, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve caches root: %w", err)
	}
	return filepath.Join(base, c.App.Name), nil
}

// TempDir returns the configured temporary root, or "" when one should be
// created per process.
func (c *Config) TempDir() string {
	return c.Roots.Temp
}
