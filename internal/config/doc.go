// Package config provides 12-factor configuration management for sandfs.
//
// Configuration is loaded from environment variables with sensible defaults.
//
// Configuration Sections:
//   - App: application name used to derive default root locations
//   - Roots: overrides for the home, caches and temp sandbox roots
//   - Storage: streaming chunk size, hash algorithm, walk parallelism
//   - Archive: zip encryption method and tar compression level
//   - Logging: Log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	home, err := cfg.HomeDir()
//
// Environment Variables:
//   - SANDFS_APP, SANDFS_HOME, SANDFS_CACHES, SANDFS_TMP
//   - SANDFS_CHUNK_SIZE, SANDFS_HASH, SANDFS_WALK_WORKERS
//   - SANDFS_ZIP_ENCRYPTION, SANDFS_TAR_LEVEL
//   - LOG_LEVEL, LOG_DEV
package config
