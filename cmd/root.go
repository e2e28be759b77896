// Package cmd defines the CLI commands for the sitemap-indexer executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/sitemap-indexer/internal/config"
	"github.com/JakeFAU/sitemap-indexer/internal/logging"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile  string
	credentials string
	envFile     string
	verbose     bool
}

// newRootCmd creates the root command and its subcommands.
func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "sitemap-indexer",
		Short: "Submit every URL in a sitemap to the Google Indexing API.",
		Long: `sitemap-indexer walks an XML sitemap, following nested sitemap
indexes, and submits each page URL to the Google Web Search Indexing API
one request at a time with a fixed delay between submissions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&flags.credentials, "credentials", "",
		"service-account JSON key (default service-account.json)")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before config, if present")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newIndexCmd(flags))
	cmd.AddCommand(newCrawlCmd(flags))
	return cmd
}

// load reads the dotenv file, config file and environment, then applies global flags.
func (f *globalFlags) load() (config.Config, error) {
	if f.envFile != "" {
		if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return config.Config{}, fmt.Errorf("load %s: %w", f.envFile, err)
		}
	}
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return config.Config{}, err
	}
	if f.credentials != "" {
		cfg.Indexer.CredentialsFile = f.credentials
	}
	return cfg, nil
}

func (f *globalFlags) logger(cfg config.Config) (*zap.Logger, error) {
	logger, err := logging.NewWithConfig(logging.Config{
		Development: cfg.Logging.Development || f.verbose,
		File:        cfg.Logging.File,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// Execute runs the CLI and returns the process exit code. Only usage errors
// produce a non-zero code; run failures are reported with troubleshooting
// hints and exit 0.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return execute(ctx, newRootCmd(), os.Args[1:], os.Stderr)
}

func execute(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", root.CommandPath())
		return 1
	}
	return 0
}
