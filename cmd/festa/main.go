package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pevans/festa/config"
	"github.com/pevans/festa/discovery"
	"github.com/pevans/festa/logger"
	"github.com/spf13/cobra"
)

const usage = `Collects news about one regional keyword (default "berau") from
Berau Terkini, Kaltim Post, Detik and Tribun Kaltim, and exports the result.

How to use:
  1. Choose a date range with --start and --end (YYYY-MM-DD).
  2. Choose the news sites with --source (repeatable, or --all).
  3. Run "festa scrape" to start collecting.
  4. Write the results as CSV, JSON or SQLite with --format and --out.
  5. Long ranges can take several minutes, depending on the number of
     articles.

Configuration is read from $FESTA_CONFIG or ~/.festa/config.yaml, and
FESTA_* environment variables override it. A .env file in the working
directory is loaded first.`

// deps is what every subcommand needs.
type deps struct {
	config  *config.FileConfig
	log     logger.Interface
	service *discovery.Service
}

var (
	cfgFile  string
	logLevel string
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "festa",
		Short:         "Regional news collector",
		Long:          usage,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $FESTA_CONFIG or ~/.festa/config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	root.AddCommand(newScrapeCommand())
	root.AddCommand(newSourcesCommand())
	root.AddCommand(newServeCommand())
	return root
}

// resolveConfig loads the configuration and applies flag overrides on top.
func resolveConfig(overrides ...func(*config.FileConfig)) (*config.FileConfig, error) {
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	for _, apply := range overrides {
		apply(cfg)
	}
	return cfg, nil
}

// loadDeps resolves configuration and builds the logger and aggregator.
func loadDeps(overrides ...func(*config.FileConfig)) (*deps, error) {
	cfg, err := resolveConfig(overrides...)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	dcfg, err := cfg.Discovery()
	if err != nil {
		return nil, err
	}

	return &deps{
		config:  cfg,
		log:     log,
		service: discovery.NewService(dcfg, log),
	}, nil
}

func main() {
	// Missing .env is fine; the environment and config file still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
