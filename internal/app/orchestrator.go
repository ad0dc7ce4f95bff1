package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/octonezd/altmerge/internal/altstore"
	"github.com/octonezd/altmerge/internal/config"
	"github.com/octonezd/altmerge/internal/domain"
	"github.com/octonezd/altmerge/internal/output"
	"github.com/octonezd/altmerge/internal/utils"
	"github.com/schollz/progressbar/v3"
)

// Orchestrator fetches the configured sources, merges them and emits the result
type Orchestrator struct {
	config *config.Config
	deps   *Dependencies
	logger *utils.Logger
	opts   domain.CommonOptions
	stdout io.Writer
	stderr io.Writer
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	domain.CommonOptions
	Config *config.Config
	// Fetcher overrides the HTTP client, mainly for tests.
	Fetcher domain.Fetcher
	// Stdout receives the merged JSON. Defaults to os.Stdout.
	Stdout io.Writer
	// Stderr receives progress lines, the summary and logs. Defaults to os.Stderr.
	Stderr io.Writer
}

// SourceError records a source that could not be used
type SourceError struct {
	URL string
	Err error
}

// Result describes a completed merge
type Result struct {
	Sources    int
	Fetched    int
	Failed     []SourceError
	Apps       int
	News       int
	Duplicates []altstore.Duplicate
	OutputPath string
	Written    bool
	Manifest   *altstore.Manifest
	Duration   time.Duration
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  stderr,
		Verbose: opts.Verbose,
	})

	deps, err := NewDependencies(DependencyOptions{
		CommonOptions: opts.CommonOptions,
		Timeout:       cfg.Fetch.Timeout,
		EnableCache:   cfg.Cache.Enabled,
		CacheTTL:      cfg.Cache.TTL,
		CacheDir:      cfg.Cache.Directory,
		UserAgent:     cfg.Fetch.UserAgent,
		ProxyURL:      cfg.Fetch.Proxy,
		OutputPath:    cfg.Output.File,
		Logger:        logger,
		ConsoleOut:    stderr,
		Quiet:         cfg.Output.Quiet,
		NoColor:       cfg.Output.NoColor,
		Fetcher:       opts.Fetcher,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dependencies: %w", err)
	}

	return &Orchestrator{
		config: cfg,
		deps:   deps,
		logger: logger.WithComponent("orchestrator"),
		opts:   opts.CommonOptions,
		stdout: stdout,
		stderr: stderr,
	}, nil
}

// Run fetches urls, merges them in order and writes the merged manifest.
//
// Sources that fail to fetch or parse are reported and skipped. Run fails
// with domain.ErrEmptyInput when none succeed, and with the underlying
// error when a fetched manifest is malformed or the output cannot be written.
func (o *Orchestrator) Run(ctx context.Context, urls []string) (*Result, error) {
	startTime := time.Now()

	if len(urls) == 0 {
		return nil, fmt.Errorf("no sources configured: %w", domain.ErrEmptyInput)
	}

	o.logger.Debug().
		Int("sources", len(urls)).
		Int("workers", o.config.Fetch.Workers).
		Bool("cache", o.config.Cache.Enabled).
		Msg("Starting merge")

	result := &Result{Sources: len(urls)}
	docs := o.fetchAll(ctx, urls, result)

	if ctx.Err() != nil {
		o.logger.Warn().Msg("Merge cancelled")
		return nil, ctx.Err()
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no manifests could be fetched: %w", domain.ErrEmptyInput)
	}
	result.Fetched = len(docs)

	o.deps.Console.Merging()

	merger := altstore.NewMerger(func(dup altstore.Duplicate) {
		result.Duplicates = append(result.Duplicates, dup)
		o.reportDuplicate(dup)
	})

	manifest, err := merger.Merge(docs, o.config.Output.Name)
	if err != nil {
		return nil, err
	}

	if err := o.deps.Writer.Write(ctx, manifest); err != nil {
		return nil, err
	}

	result.Manifest = manifest
	result.Apps = len(manifest.Apps)
	result.News = len(manifest.News)
	result.OutputPath = o.deps.Writer.Path()
	result.Written = !o.deps.Writer.DryRun()

	o.deps.Console.Summary(result.Fetched, result.Apps, result.OutputPath, !result.Written)

	if o.shouldPrint() {
		o.deps.Console.Banner()
		if err := output.Encode(o.stdout, manifest); err != nil {
			return nil, fmt.Errorf("failed to print merged manifest: %w", err)
		}
	}

	result.Duration = time.Since(startTime)
	o.logger.Debug().
		Int("fetched", result.Fetched).
		Int("failed", len(result.Failed)).
		Int("apps", result.Apps).
		Int("news", result.News).
		Int("duplicates", len(result.Duplicates)).
		Dur("duration", result.Duration).
		Msg("Merge completed")

	return result, nil
}

// fetchAll fetches every url and returns the parsed documents in url order,
// skipping failures. Failures are recorded on result.
func (o *Orchestrator) fetchAll(ctx context.Context, urls []string, result *Result) []*altstore.Document {
	console := o.deps.Console
	console.Start()

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	if o.opts.Progress {
		bar = utils.NewProgressBar(len(urls), utils.DescFetching, o.stderr)
	}

	slots := make([]*altstore.Document, len(urls))
	errs := utils.ParallelForEach(ctx, urls, o.config.Fetch.Workers, func(ctx context.Context, i int, url string) error {
		if bar == nil {
			console.Fetching(url)
		}

		doc, err := o.deps.Manifests.Fetch(ctx, url)

		if bar != nil {
			barMu.Lock()
			_ = bar.Add(1)
			barMu.Unlock()
		}

		if err != nil {
			console.Failed(url, err)
			o.logger.Debug().Err(err).Str("url", url).Msg("Source skipped")
			return err
		}

		slots[i] = doc
		if bar == nil {
			console.Found(url, doc.AppCount())
		}
		return nil
	})

	if bar != nil {
		_ = bar.Finish()
	}

	docs := make([]*altstore.Document, 0, len(urls))
	for i, doc := range slots {
		if errs[i] != nil {
			result.Failed = append(result.Failed, SourceError{URL: urls[i], Err: errs[i]})
			continue
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	return docs
}

func (o *Orchestrator) reportDuplicate(dup altstore.Duplicate) {
	kept, dropped := dup.Kept.Version(), dup.Dropped.Version()

	o.logger.Debug().
		Str("bundle_id", dup.BundleIdentifier).
		Str("kept_source", dup.KeptSource).
		Str("dropped_source", dup.DroppedSource).
		Msg("Dropped duplicate app")

	if altstore.IsNewer(dropped, kept) {
		o.logger.Warn().
			Str("bundle_id", dup.BundleIdentifier).
			Str("kept_version", kept).
			Str("dropped_version", dropped).
			Str("dropped_source", dup.DroppedSource).
			Msg("Kept an older version of a duplicate app; reorder sources to prefer the newer one")
	}
}

func (o *Orchestrator) shouldPrint() bool {
	return o.config.Output.Print && !o.opts.NoPrint
}

// Close releases all resources held by the orchestrator
func (o *Orchestrator) Close() error {
	if o.deps != nil {
		return o.deps.Close()
	}
	return nil
}
