package app

import (
	"errors"
	"io"
	"time"

	"github.com/octonezd/altmerge/internal/cache"
	"github.com/octonezd/altmerge/internal/domain"
	"github.com/octonezd/altmerge/internal/fetcher"
	"github.com/octonezd/altmerge/internal/output"
	"github.com/octonezd/altmerge/internal/utils"
)

// Dependencies holds the collaborators used by a merge run
type Dependencies struct {
	Fetcher   domain.Fetcher
	Cache     domain.Cache
	Manifests *fetcher.ManifestFetcher
	Writer    *output.Writer
	Console   *output.Console
	Logger    *utils.Logger
}

// DependencyOptions contains options for creating dependencies
type DependencyOptions struct {
	domain.CommonOptions
	Timeout     time.Duration
	EnableCache bool
	CacheTTL    time.Duration
	CacheDir    string
	UserAgent   string
	ProxyURL    string
	OutputPath  string
	Logger      *utils.Logger
	ConsoleOut  io.Writer
	Quiet       bool
	NoColor     bool
	// Fetcher replaces the HTTP client; no cache is opened when set.
	Fetcher domain.Fetcher
}

// NewDependencies creates all dependencies for a run
func NewDependencies(opts DependencyOptions) (*Dependencies, error) {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	deps := &Dependencies{Logger: logger}

	if opts.Fetcher != nil {
		deps.Fetcher = opts.Fetcher
	} else {
		var cacheImpl domain.Cache
		if opts.EnableCache {
			badgerCache, err := cache.NewBadgerCache(cache.Options{
				Directory: opts.CacheDir,
			})
			if err != nil {
				return nil, err
			}
			cacheImpl = badgerCache
		}

		client, err := fetcher.NewClient(fetcher.ClientOptions{
			Timeout:      opts.Timeout,
			EnableCache:  opts.EnableCache,
			CacheTTL:     opts.CacheTTL,
			Cache:        cacheImpl,
			RefreshCache: opts.RefreshCache,
			UserAgent:    opts.UserAgent,
			ProxyURL:     opts.ProxyURL,
		})
		if err != nil {
			if cacheImpl != nil {
				_ = cacheImpl.Close()
			}
			return nil, err
		}

		deps.Fetcher = client
		deps.Cache = cacheImpl
	}

	deps.Manifests = fetcher.NewManifestFetcher(deps.Fetcher, opts.Timeout, logger)
	deps.Writer = output.NewWriter(output.WriterOptions{
		Path:   opts.OutputPath,
		DryRun: opts.DryRun,
	})
	deps.Console = output.NewConsole(output.ConsoleOptions{
		Out:     opts.ConsoleOut,
		Quiet:   opts.Quiet,
		NoColor: opts.NoColor,
	})

	return deps, nil
}

// Close releases the fetcher and cache
func (d *Dependencies) Close() error {
	var errs []error
	if d.Fetcher != nil {
		errs = append(errs, d.Fetcher.Close())
	}
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	return errors.Join(errs...)
}
