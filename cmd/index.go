package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/sitemap-indexer/internal/config"
	"github.com/JakeFAU/sitemap-indexer/internal/indexer"
	"github.com/JakeFAU/sitemap-indexer/internal/server"
)

type indexFlags struct {
	url              string
	batch            int
	delay            float64
	dryRun           bool
	listen           string
	notificationType string
	noProgress       bool
}

// newIndexCmd creates the 'index' subcommand.
func newIndexCmd(global *globalFlags) *cobra.Command {
	flags := &indexFlags{}
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Crawl a sitemap and submit its URLs for indexing",
		Example: `  sitemap-indexer index -u https://example.com/sitemap.xml
  sitemap-indexer index -u https://example.com/sitemap_index.xml --batch 100 --delay 2
  sitemap-indexer index -u https://example.com/sitemap.xml --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd, global, flags)
		},
	}
	cmd.Flags().StringVarP(&flags.url, "url", "u", "", "sitemap URL (required)")
	cmd.Flags().IntVar(&flags.batch, "batch", indexer.DefaultBatchSize,
		"maximum URLs to submit; 0 submits every URL")
	cmd.Flags().Float64Var(&flags.delay, "delay", indexer.DefaultDelay.Seconds(),
		"seconds to wait between submissions")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "crawl and record submissions without calling the API")
	cmd.Flags().StringVar(&flags.listen, "listen", "", "serve /healthz, /metrics and /v1/status on this address")
	cmd.Flags().StringVar(&flags.notificationType, "type", config.NotificationURLUpdated,
		"notification type: URL_UPDATED or URL_DELETED")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "disable the progress bar")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

// apply overrides config values with flags the user set explicitly.
func (f *indexFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("batch") {
		cfg.Indexer.BatchSize = f.batch
	}
	if cmd.Flags().Changed("delay") {
		cfg.Indexer.DelaySeconds = f.delay
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.Indexer.DryRun = f.dryRun
	}
	if cmd.Flags().Changed("listen") {
		cfg.Server.Listen = f.listen
	}
	if cmd.Flags().Changed("type") {
		cfg.Indexer.NotificationType = f.notificationType
	}
}

func runIndex(cmd *cobra.Command, global *globalFlags, flags *indexFlags) error {
	out := cmd.OutOrStdout()
	cfg, err := global.load()
	if err == nil {
		flags.apply(cmd, &cfg)
		err = cfg.Validate()
	}
	if err != nil {
		printDiagnostics(out, cfg, err)
		return nil
	}
	logger, err := global.logger(cfg)
	if err != nil {
		printDiagnostics(out, cfg, err)
		return nil
	}
	defer func() { _ = logger.Sync() }()

	printBanner(out, cfg, flags.url)

	var observer indexer.Observer
	if !flags.noProgress && isTerminal(os.Stderr) {
		observer = newProgressObserver(cmd.ErrOrStderr())
	}

	ctx := cmd.Context()
	app, err := server.NewApp(ctx, cfg, logger, server.Options{Observer: observer})
	if err != nil {
		printDiagnostics(out, cfg, err)
		return nil
	}
	defer func() { _ = app.Close() }()
	logger.Debug("report sinks", zap.Strings("sinks", app.Sinks()))

	res, err := app.Index(ctx, indexer.RunRequest{
		SitemapURL: flags.url,
		BatchSize:  cfg.Indexer.BatchSize,
		Delay:      cfg.Delay(),
	})
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(out, "\nInterrupted; partial results follow.")
	default:
		printDiagnostics(out, cfg, err)
		return nil
	}
	printSummary(out, res)
	return nil
}

func printBanner(w io.Writer, cfg config.Config, sitemapURL string) {
	rule := "============================================================"
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Google Sitemap Indexer")
	fmt.Fprintln(w, rule)
	if cfg.Indexer.DryRun {
		fmt.Fprintln(w, "Service Account: (dry run)")
	} else {
		fmt.Fprintf(w, "Service Account: %s\n", cfg.Indexer.CredentialsFile)
	}
	fmt.Fprintf(w, "Sitemap URL: %s\n", sitemapURL)
	fmt.Fprintf(w, "Batch Size: %d\n", cfg.Indexer.BatchSize)
	fmt.Fprintf(w, "Delay: %gs\n", cfg.Indexer.DelaySeconds)
	fmt.Fprintln(w, rule)
}

func printSummary(w io.Writer, res indexer.Result) {
	rule := "============================================================"
	fmt.Fprintf(w, "\nTotal unique URLs found: %d\n", res.Unique)
	if res.Empty() {
		fmt.Fprintln(w, "No URLs found to index.")
		return
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Indexing Summary:")
	fmt.Fprintf(w, "Total URLs: %d\n", res.Attempted)
	fmt.Fprintf(w, "Successfully indexed: %d\n", res.Succeeded())
	fmt.Fprintf(w, "Failed: %d\n", len(res.Failed))
	fmt.Fprintln(w, rule)
	if len(res.Failed) > 0 {
		fmt.Fprintln(w, "Failed URLs:")
		for _, u := range res.Failed {
			fmt.Fprintf(w, "  - %s\n", u)
		}
	}
}
