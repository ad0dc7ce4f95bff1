package main

import (
	"fmt"

	"github.com/octonezd/altmerge/internal/cache"
	"github.com/octonezd/altmerge/internal/config"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the manifest cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, dir, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close()

		stats := c.Stats()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Directory: %s\n", dir)
		fmt.Fprintf(out, "Entries:   %v\n", stats["entries"])
		fmt.Fprintf(out, "LSM size:  %v bytes\n", stats["lsm_size"])
		fmt.Fprintf(out, "Vlog size: %v bytes\n", stats["vlog_size"])
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached manifests",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, dir, err := openCache()
		if err != nil {
			return err
		}
		defer c.Close()

		removed := c.Size()
		if err := c.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached manifest(s) from %s\n", removed, dir)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func openCache() (*cache.BadgerCache, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	c, err := cache.NewBadgerCache(cache.Options{Directory: cfg.Cache.Directory})
	if err != nil {
		return nil, "", fmt.Errorf("failed to open cache: %w", err)
	}
	return c, cfg.Cache.Directory, nil
}
