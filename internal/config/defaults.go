package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Output defaults
	DefaultOutputFile = "merged_altstore.json"
	DefaultRepoName   = "OctoNezd's Merged Repository"
	DefaultPrint      = true

	// Fetch defaults
	DefaultWorkers = 1
	DefaultTimeout = 30 * time.Second

	// Cache defaults
	DefaultCacheEnabled = false
	DefaultCacheTTL     = time.Hour

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".altmerge"
	}
	return filepath.Join(home, ".altmerge")
}

// CacheDir returns the cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			File:  DefaultOutputFile,
			Name:  DefaultRepoName,
			Print: DefaultPrint,
		},
		Fetch: FetchConfig{
			Timeout: DefaultTimeout,
			Workers: DefaultWorkers,
		},
		Cache: CacheConfig{
			Enabled:   DefaultCacheEnabled,
			TTL:       DefaultCacheTTL,
			Directory: CacheDir(),
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
