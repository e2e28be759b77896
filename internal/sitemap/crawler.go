package sitemap

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/JakeFAU/sitemap-indexer/internal/metrics"
)

// Config bounds a crawl.
type Config struct {
	// MaxSitemaps caps fetched documents per crawl. Zero means unlimited.
	MaxSitemaps int
}

// Crawler walks a sitemap tree one document at a time.
type Crawler struct {
	fetcher Fetcher
	limiter Limiter
	cfg     Config
	logger  *zap.Logger
}

// NewCrawler constructs a Crawler. limiter may be nil.
func NewCrawler(fetcher Fetcher, limiter Limiter, cfg Config, logger *zap.Logger) *Crawler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{
		fetcher: fetcher,
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
	}
}

// Crawl fetches rootURL and every sitemap it transitively references, each at
// most once, and returns the page URLs found in depth-first order. Fetch and
// parse failures are recorded in Result.Errors and never stop the crawl; the
// only returned error is context cancellation.
func (c *Crawler) Crawl(ctx context.Context, rootURL string) (Result, error) {
	var res Result
	visited := make(map[string]struct{})
	stack := []string{rootURL}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("crawl canceled: %w", err)
		}
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[current]; seen {
			continue
		}
		if c.cfg.MaxSitemaps > 0 && len(visited) >= c.cfg.MaxSitemaps {
			c.logger.Warn("sitemap limit reached; dropping remaining sitemaps",
				zap.Int("max_sitemaps", c.cfg.MaxSitemaps),
				zap.Int("dropped", len(stack)+1),
			)
			break
		}
		visited[current] = struct{}{}
		res.Visited = append(res.Visited, current)

		doc, err := c.visit(ctx, current)
		if err != nil {
			if ctx.Err() != nil {
				return res, fmt.Errorf("crawl canceled: %w", ctx.Err())
			}
			res.Errors = append(res.Errors, asVisitError(current, err))
			continue
		}
		res.Pages = append(res.Pages, doc.Pages...)

		// Push in reverse so nested sitemaps pop in document order.
		for i := len(doc.Sitemaps) - 1; i >= 0; i-- {
			if _, seen := visited[doc.Sitemaps[i]]; !seen {
				stack = append(stack, doc.Sitemaps[i])
			}
		}
	}

	c.logger.Info("sitemap crawl finished",
		zap.String("root", rootURL),
		zap.Int("sitemaps", len(res.Visited)),
		zap.Int("pages", len(res.Pages)),
		zap.Int("errors", len(res.Errors)),
	)
	return res, nil
}

func (c *Crawler) visit(ctx context.Context, sitemapURL string) (Document, error) {
	logger := c.logger.With(zap.String("sitemap", sitemapURL))
	logger.Info("processing sitemap")

	base, err := url.Parse(sitemapURL)
	if err != nil {
		metrics.ObserveSitemapFetch(sitemapURL, "fetch_error", 0)
		logger.Warn("invalid sitemap url", zap.Error(err))
		return Document{}, VisitError{URL: sitemapURL, Stage: StageFetch, Err: err}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, sitemapURL); err != nil {
			return Document{}, VisitError{URL: sitemapURL, Stage: StageFetch, Err: err}
		}
	}

	resp, err := c.fetcher.Fetch(ctx, FetchRequest{URL: sitemapURL})
	if err != nil {
		metrics.ObserveSitemapFetch(sitemapURL, "fetch_error", 0)
		logger.Warn("error fetching sitemap", zap.Error(err))
		return Document{}, VisitError{URL: sitemapURL, Stage: StageFetch, Err: err}
	}

	doc, err := Parse(base, resp.Body)
	if err != nil {
		metrics.ObserveSitemapFetch(sitemapURL, "parse_error", len(resp.Body))
		logger.Warn("error parsing sitemap", zap.Error(err))
		return Document{}, VisitError{URL: sitemapURL, Stage: StageParse, Err: err}
	}
	metrics.ObserveSitemapFetch(sitemapURL, "ok", len(resp.Body))
	metrics.ObserveDiscovered(len(doc.Pages))

	if doc.IsIndex() {
		logger.Info("found nested sitemaps", zap.Int("count", len(doc.Sitemaps)))
	}
	if len(doc.Pages) > 0 {
		logger.Info("found urls", zap.Int("count", len(doc.Pages)))
	}
	return doc, nil
}

func asVisitError(sitemapURL string, err error) VisitError {
	var ve VisitError
	if errors.As(err, &ve) {
		return ve
	}
	return VisitError{URL: sitemapURL, Stage: StageFetch, Err: err}
}
