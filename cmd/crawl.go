package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/sitemap-indexer/internal/indexer"
	"github.com/JakeFAU/sitemap-indexer/internal/server"
	"github.com/JakeFAU/sitemap-indexer/internal/sitemap"
)

// newCrawlCmd creates the 'crawl' subcommand, which lists discovered URLs
// without submitting them.
func newCrawlCmd(global *globalFlags) *cobra.Command {
	var (
		rawURL string
		unique bool
	)
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "List the page URLs a sitemap tree contains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			cfg, err := global.load()
			if err != nil {
				printDiagnostics(out, cfg, err)
				return nil
			}
			if _, err := sitemap.ValidateRoot(rawURL); err != nil {
				printDiagnostics(out, cfg, err)
				return nil
			}
			logger, err := global.logger(cfg)
			if err != nil {
				printDiagnostics(out, cfg, err)
				return nil
			}
			defer func() { _ = logger.Sync() }()

			res, err := server.NewCrawler(cfg, logger).Crawl(cmd.Context(), rawURL)
			pages := res.Pages
			if unique {
				pages = indexer.Dedupe(pages)
			}
			for _, p := range pages {
				fmt.Fprintln(out, p)
			}
			for _, ve := range res.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %v\n", ve.URL, ve.Err)
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "crawl interrupted: %v\n", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&rawURL, "url", "u", "", "sitemap URL (required)")
	cmd.Flags().BoolVar(&unique, "unique", true, "drop duplicate URLs, keeping first-seen order")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
