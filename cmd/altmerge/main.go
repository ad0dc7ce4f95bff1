package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/octonezd/altmerge/internal/app"
	"github.com/octonezd/altmerge/internal/config"
	"github.com/octonezd/altmerge/internal/domain"
	"github.com/octonezd/altmerge/internal/sources"
	"github.com/octonezd/altmerge/internal/utils"
	"github.com/octonezd/altmerge/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	sourcesFile string
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "altmerge [url...]",
	Short: "Merge AltStore source manifests into one repository",
	Long: `altmerge fetches several AltStore source manifests and merges them into a
single repository manifest.

Apps are deduplicated by bundle identifier with earlier sources winning,
identical news items are kept once, and repository metadata is taken from the
first source that could be fetched.

Sources come from the command line, a --sources file, the "sources" config
key, or the built-in defaults, in that order.`,
	Version:       version.Short(),
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.altmerge/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Duration("timeout", config.DefaultTimeout, "Per-source request timeout")
	rootCmd.PersistentFlags().String("user-agent", "", "Custom User-Agent")
	rootCmd.PersistentFlags().String("proxy", "", "Proxy URL (http, https or socks5)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress and summary lines")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")

	// Merge flags
	rootCmd.PersistentFlags().StringVar(&sourcesFile, "sources", "", "YAML or JSON file listing source manifests")
	rootCmd.Flags().StringP("output", "o", config.DefaultOutputFile, "Output file")
	rootCmd.Flags().StringP("name", "n", config.DefaultRepoName, "Name of the merged repository")
	rootCmd.Flags().IntP("concurrency", "j", config.DefaultWorkers, "Number of sources fetched in parallel")
	rootCmd.Flags().Bool("dry-run", false, "Merge without writing the output file")
	rootCmd.Flags().Bool("no-print", false, "Do not print the merged manifest to stdout")
	rootCmd.Flags().Bool("progress", false, "Show a progress bar instead of per-source lines")

	// Cache flags
	rootCmd.PersistentFlags().Bool("cache", config.DefaultCacheEnabled, "Cache fetched manifests")
	rootCmd.PersistentFlags().Duration("cache-ttl", config.DefaultCacheTTL, "Cache TTL")
	rootCmd.Flags().Bool("refresh-cache", false, "Ignore cached manifests but refresh the cache")

	// Bind flags to viper
	_ = viper.BindPFlag("output.file", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.name", rootCmd.Flags().Lookup("name"))
	_ = viper.BindPFlag("fetch.workers", rootCmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("fetch.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("fetch.user_agent", rootCmd.PersistentFlags().Lookup("user-agent"))
	_ = viper.BindPFlag("fetch.proxy", rootCmd.PersistentFlags().Lookup("proxy"))
	_ = viper.BindPFlag("output.quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("output.no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = viper.BindPFlag("cache.enabled", rootCmd.PersistentFlags().Lookup("cache"))
	_ = viper.BindPFlag("cache.ttl", rootCmd.PersistentFlags().Lookup("cache-ttl"))

	// Add subcommands
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	srcCfg, err := sources.Resolve(args, sourcesFile, cfg.Sources)
	if err != nil {
		return err
	}
	applySourcesFile(cmd, cfg, srcCfg)

	ctx, cancel := signalContext()
	defer cancel()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noPrint, _ := cmd.Flags().GetBool("no-print")
	progress, _ := cmd.Flags().GetBool("progress")
	refresh, _ := cmd.Flags().GetBool("refresh-cache")

	orchestrator, err := app.NewOrchestrator(app.OrchestratorOptions{
		CommonOptions: domain.CommonOptions{
			Verbose:      verbose,
			DryRun:       dryRun,
			NoPrint:      noPrint,
			Progress:     progress,
			RefreshCache: refresh,
		},
		Config: cfg,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	defer orchestrator.Close()

	_, err = orchestrator.Run(ctx, srcCfg.URLs())
	return err
}

// applySourcesFile lets name and output from a sources file override the
// config unless the matching flag was given explicitly.
func applySourcesFile(cmd *cobra.Command, cfg *config.Config, srcCfg *sources.Config) {
	if srcCfg.Name != "" && !cmd.Flags().Changed("name") {
		cfg.Output.Name = srcCfg.Name
	}
	if srcCfg.Output != "" && !cmd.Flags().Changed("output") {
		cfg.Output.File = srcCfg.Output
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "Shutting down gracefully...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Full())
	},
}

// newCLILogger builds the logger for subcommands that run outside the orchestrator
func newCLILogger(cfg *config.Config) *utils.Logger {
	return utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Verbose: verbose,
	})
}

const doctorTimeout = 10 * time.Second
