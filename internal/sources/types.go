package sources

import (
	"fmt"
	"strings"

	"github.com/octonezd/altmerge/internal/utils"
)

// DefaultURLs are merged when no source is configured anywhere.
var DefaultURLs = []string{
	"https://github.com/OctoNezd/oldlander/releases/latest/download/altStoreManifest.json",
	"https://github.com/OctoNezd/VNDS-LOVE-TOUCH/releases/latest/download/altStoreManifest.json",
}

// Config represents a sources file
type Config struct {
	Name    string   `yaml:"name,omitempty" json:"name,omitempty"`
	Output  string   `yaml:"output,omitempty" json:"output,omitempty"`
	Sources []Source `yaml:"sources" json:"sources"`
}

// Source is one AltStore manifest location
type Source struct {
	URL string `yaml:"url" json:"url"`
}

// Validate validates the sources configuration
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	for i, src := range c.Sources {
		if err := ValidateURL(src.URL); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
	}
	return nil
}

// URLs returns the source URLs in file order
func (c *Config) URLs() []string {
	urls := make([]string, 0, len(c.Sources))
	for _, src := range c.Sources {
		urls = append(urls, src.URL)
	}
	return urls
}

// ValidateURL checks a single source URL.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyURL
	}
	if !utils.IsHTTPURL(raw) {
		return fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	return nil
}

// FromURLs builds a Config from plain URLs, trimming surrounding whitespace.
func FromURLs(urls []string) *Config {
	cfg := &Config{Sources: make([]Source, 0, len(urls))}
	for _, u := range urls {
		cfg.Sources = append(cfg.Sources, Source{URL: strings.TrimSpace(u)})
	}
	return cfg
}

// Resolve picks the effective source list: the first non-empty of args,
// the sources file at path, and configured; falling back to DefaultURLs.
// The returned Config is validated.
func Resolve(args []string, path string, configured []string) (*Config, error) {
	if len(args) > 0 {
		cfg := FromURLs(args)
		return cfg, cfg.Validate()
	}
	if path != "" {
		return NewLoader().Load(path)
	}
	if len(configured) > 0 {
		cfg := FromURLs(configured)
		return cfg, cfg.Validate()
	}
	cfg := FromURLs(DefaultURLs)
	return cfg, nil
}
