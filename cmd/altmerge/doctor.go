package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/octonezd/altmerge/internal/config"
	"github.com/octonezd/altmerge/internal/fetcher"
	"github.com/octonezd/altmerge/internal/sources"
	"github.com/octonezd/altmerge/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [url...]",
	Short: "Check sources, output location and cache",
	Long: `Verifies that every configured source can be fetched and parsed, that the
output file can be written, and reports on the config file and cache directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		allPassed := true

		cfg, cfgErr := config.Load()
		if cfgErr != nil {
			cfg = config.Default()
		}

		// Check 1: Config file
		fmt.Fprint(out, "Config file: ")
		switch {
		case cfgErr != nil:
			fmt.Fprintf(out, "FAILED (%v)\n", cfgErr)
			allPassed = false
		case viper.ConfigFileUsed() != "":
			fmt.Fprintf(out, "OK (%s)\n", viper.ConfigFileUsed())
		default:
			fmt.Fprintln(out, "OK (none, using defaults)")
		}

		// Check 2: Sources
		srcCfg, err := sources.Resolve(args, sourcesFile, cfg.Sources)
		if err != nil {
			fmt.Fprintf(out, "Sources: FAILED (%v)\n", err)
			allPassed = false
		} else {
			client, err := fetcher.NewClient(fetcher.ClientOptions{
				Timeout:   cfg.Fetch.Timeout,
				UserAgent: cfg.Fetch.UserAgent,
				ProxyURL:  cfg.Fetch.Proxy,
			})
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}
			defer client.Close()

			manifests := fetcher.NewManifestFetcher(client, doctorTimeout, newCLILogger(cfg))
			if !checkSources(cmd.Context(), out, manifests, srcCfg.URLs()) {
				allPassed = false
			}
		}

		// Check 3: Write permissions for the output file
		fmt.Fprint(out, "Write permissions: ")
		if err := checkWritePermissions(cfg.Output.File); err != nil {
			fmt.Fprintf(out, "FAILED (%v)\n", err)
			allPassed = false
		} else {
			fmt.Fprintf(out, "OK (%s)\n", cfg.Output.File)
		}

		// Check 4: Cache directory
		fmt.Fprint(out, "Cache directory: ")
		cacheDir := utils.ExpandPath(cfg.Cache.Directory)
		if checkCacheDir(cacheDir) {
			fmt.Fprintf(out, "OK (%s)\n", cacheDir)
		} else {
			fmt.Fprintln(out, "WARN (will be created on first use)")
		}

		fmt.Fprintln(out)
		if allPassed {
			fmt.Fprintln(out, "All critical checks passed!")
		} else {
			fmt.Fprintln(out, "Some checks failed. Please resolve the issues above.")
		}
		return nil
	},
}

// checkSources fetches every url and prints one line per source. It reports
// whether at least one source could be merged.
func checkSources(ctx context.Context, out io.Writer, manifests *fetcher.ManifestFetcher, urls []string) bool {
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintln(out, "Sources:")
	ok := 0
	for _, url := range urls {
		fmt.Fprintf(out, "  %s: ", url)
		apps, err := checkSource(ctx, manifests, url)
		if err != nil {
			fmt.Fprintf(out, "FAILED (%v)\n", err)
			continue
		}
		ok++
		fmt.Fprintf(out, "OK (%d app(s))\n", apps)
	}
	return ok > 0
}

// checkSource fetches url and validates its apps and news entries
func checkSource(ctx context.Context, manifests *fetcher.ManifestFetcher, url string) (int, error) {
	doc, err := manifests.Fetch(ctx, url)
	if err != nil {
		return 0, err
	}
	apps, err := doc.Apps()
	if err != nil {
		return 0, err
	}
	if _, err := doc.News(); err != nil {
		return 0, err
	}
	return len(apps), nil
}

// checkWritePermissions checks that the output file could be created, using
// the nearest existing ancestor when its directory does not exist yet.
func checkWritePermissions(path string) error {
	dir := filepath.Dir(utils.ExpandPath(path))
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			return utils.IsWritableDir(dir)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return err
		}
		dir = parent
	}
}

// checkCacheDir checks if the cache directory exists
func checkCacheDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
