package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/octonezd/altmerge/internal/domain"
)

// Config represents the application configuration
type Config struct {
	Sources []string      `mapstructure:"sources" yaml:"sources"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Fetch   FetchConfig   `mapstructure:"fetch" yaml:"fetch"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	File    string `mapstructure:"file" yaml:"file"`
	Name    string `mapstructure:"name" yaml:"name"`
	Print   bool   `mapstructure:"print" yaml:"print"`
	Quiet   bool   `mapstructure:"quiet" yaml:"quiet"`
	NoColor bool   `mapstructure:"no_color" yaml:"no_color"`
}

// FetchConfig contains HTTP fetch settings
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Workers   int           `mapstructure:"workers" yaml:"workers"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
	Proxy     string        `mapstructure:"proxy" yaml:"proxy"`
}

// CacheConfig contains cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Directory string        `mapstructure:"directory" yaml:"directory"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration.
// Out-of-range numeric values are replaced with defaults; values that
// cannot be repaired produce a *domain.ValidationError.
func (c *Config) Validate() error {
	if c.Fetch.Workers < 1 {
		c.Fetch.Workers = DefaultWorkers
	}
	if c.Fetch.Timeout < time.Second {
		c.Fetch.Timeout = DefaultTimeout
	}
	if c.Cache.TTL < time.Minute {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Output.File == "" {
		c.Output.File = DefaultOutputFile
	}
	if strings.TrimSpace(c.Output.Name) == "" {
		c.Output.Name = DefaultRepoName
	}

	switch strings.ToLower(c.Logging.Level) {
	case "":
		c.Logging.Level = DefaultLogLevel
	case "debug", "info", "warn", "warning", "error":
	default:
		return domain.NewValidationError("logging.level", "must be one of debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "":
		c.Logging.Format = DefaultLogFormat
	case "pretty", "json":
	default:
		return domain.NewValidationError("logging.format", "must be pretty or json")
	}

	if c.Fetch.Proxy != "" {
		u, err := url.Parse(c.Fetch.Proxy)
		if err != nil || u.Host == "" {
			return domain.NewValidationError("fetch.proxy", "must be an absolute proxy URL")
		}
		switch u.Scheme {
		case "http", "https", "socks5":
		default:
			return domain.NewValidationError("fetch.proxy", "scheme must be http, https or socks5")
		}
	}

	return nil
}
