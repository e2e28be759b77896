package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/sitemap-indexer/internal/hash/sha256"
	"github.com/JakeFAU/sitemap-indexer/internal/metrics"
	"github.com/JakeFAU/sitemap-indexer/internal/sitemap"
)

// Driver runs crawl, dedupe and submission. It keeps no state between runs.
type Driver struct {
	crawler  Crawler
	notifier Notifier
	reporter Reporter
	clock    Clock
	ids      IDGenerator
	observer Observer
	cfg      Config
	logger   *zap.Logger
}

// NewDriver constructs a Driver. reporter, observer and logger may be nil.
func NewDriver(
	crawler Crawler,
	notifier Notifier,
	reporter Reporter,
	clock Clock,
	ids IDGenerator,
	observer Observer,
	cfg Config,
	logger *zap.Logger,
) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = NopObserver{}
	}
	if cfg.NotificationType == "" {
		cfg.NotificationType = TypeURLUpdated
	}
	return &Driver{
		crawler:  crawler,
		notifier: notifier,
		reporter: reporter,
		clock:    clock,
		ids:      ids,
		observer: observer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run executes one indexing run. Submission failures are recorded in the
// result and never abort the loop. When ctx is canceled the partial result is
// returned together with the cancellation error.
func (d *Driver) Run(ctx context.Context, req RunRequest) (Result, error) {
	if d.notifier == nil {
		return Result{}, ErrNoNotifier
	}
	if d.crawler == nil || d.clock == nil || d.ids == nil {
		return Result{}, fmt.Errorf("driver is missing crawler, clock or id generator")
	}
	if _, err := sitemap.ValidateRoot(req.SitemapURL); err != nil {
		return Result{}, fmt.Errorf("invalid sitemap url: %w", err)
	}
	runID, err := d.ids.NewID()
	if err != nil {
		return Result{}, fmt.Errorf("allocate run id: %w", err)
	}

	res := Result{
		RunID:      runID,
		SitemapURL: req.SitemapURL,
		StartedAt:  d.clock.Now(),
		Indexed:    []string{},
		Failed:     []string{},
	}
	logger := d.logger.With(zap.String("run_id", runID))
	d.observer.PhaseChanged(runID, PhaseStart)

	d.observer.PhaseChanged(runID, PhaseCrawling)
	logger.Info("crawling sitemap", zap.String("sitemap_url", req.SitemapURL))
	crawled, err := d.crawler.Crawl(ctx, req.SitemapURL)
	res.Discovered = len(crawled.Pages)
	res.SitemapsVisited = len(crawled.Visited)
	for _, ve := range crawled.Errors {
		res.SitemapErrors = append(res.SitemapErrors, SitemapError{
			URL:   ve.URL,
			Stage: ve.Stage,
			Error: errorText(ve.Err),
		})
	}
	if err != nil {
		res.Canceled = true
		return d.finish(ctx, logger, res, false), fmt.Errorf("crawl: %w", err)
	}

	d.observer.PhaseChanged(runID, PhaseDeduping)
	unique := Dedupe(crawled.Pages)
	res.Unique = len(unique)
	res.URLSetDigest = sha256.URLSet(unique)
	logger.Info("crawl complete",
		zap.Int("discovered", res.Discovered),
		zap.Int("unique", res.Unique),
		zap.Int("sitemaps_visited", res.SitemapsVisited),
		zap.Int("sitemap_errors", len(res.SitemapErrors)),
	)
	if len(unique) == 0 {
		logger.Warn("no URLs found in sitemap", zap.String("sitemap_url", req.SitemapURL))
		return d.finish(ctx, logger, res, false), nil
	}

	batch := Truncate(unique, req.BatchSize)
	if len(batch) < len(unique) {
		logger.Info("limiting submissions to batch size",
			zap.Int("batch_size", req.BatchSize),
			zap.Int("skipped", len(unique)-len(batch)),
		)
	}

	d.observer.PhaseChanged(runID, PhaseSubmitting)
	d.observer.BatchStarted(runID, len(batch))
	interrupted := d.submit(ctx, logger, &res, batch, req.Delay)
	res.Canceled = interrupted != nil

	res = d.finish(ctx, logger, res, true)
	if interrupted != nil {
		return res, fmt.Errorf("submission interrupted: %w", interrupted)
	}
	return res, nil
}

// submit notifies each URL in order. It returns a non-nil error only when ctx
// ends before the batch is exhausted.
func (d *Driver) submit(ctx context.Context, logger *zap.Logger, res *Result, batch []string, delay time.Duration) error {
	for i, u := range batch {
		if i > 0 {
			slept := d.clock.Now()
			if err := d.clock.Sleep(ctx, delay); err != nil {
				logger.Warn("run canceled between submissions", zap.Int("remaining", len(batch)-i))
				return err
			}
			metrics.ObserveDelay("submission", d.clock.Now().Sub(slept))
		}
		start := d.clock.Now()
		err := d.notifier.Notify(ctx, u, d.cfg.NotificationType)
		elapsed := d.clock.Now().Sub(start)
		res.Attempted++
		d.observer.Submitted(res.RunID, u, err)

		if err == nil {
			res.Indexed = append(res.Indexed, u)
			metrics.ObserveSubmission("indexed", "", elapsed)
			logger.Info("indexed", zap.String("url", u))
			continue
		}

		reason := reasonOf(err)
		if ctx.Err() != nil {
			reason = ReasonCanceled
		}
		res.Failed = append(res.Failed, u)
		res.Failures = append(res.Failures, Failure{URL: u, Reason: reason, Error: err.Error()})
		metrics.ObserveSubmission("failed", reason, elapsed)
		logger.Warn("submission failed", zap.String("url", u), zap.String("reason", reason), zap.Error(err))

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

// finish stamps the result, hands it to the reporter when submissions were
// attempted, and emits the terminal phase.
func (d *Driver) finish(ctx context.Context, logger *zap.Logger, res Result, report bool) Result {
	res.FinishedAt = d.clock.Now()
	if report && d.reporter != nil {
		d.observer.PhaseChanged(res.RunID, PhaseReporting)
		// Reports go out even when the run was interrupted.
		if err := d.reporter.Report(context.WithoutCancel(ctx), res); err != nil {
			logger.Error("report run", zap.Error(err))
		}
	}
	metrics.ObserveRun(res.Status())
	d.observer.Finished(res)
	d.observer.PhaseChanged(res.RunID, PhaseDone)
	return res
}

func reasonOf(err error) string {
	var classified interface{ Reason() string }
	if errors.As(err, &classified) {
		return classified.Reason()
	}
	return "error"
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
