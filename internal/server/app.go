// Package server assembles the indexer from configuration and owns the
// lifetime of its external clients.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/JakeFAU/sitemap-indexer/internal/api"
	"github.com/JakeFAU/sitemap-indexer/internal/clock/system"
	"github.com/JakeFAU/sitemap-indexer/internal/config"
	collyfetcher "github.com/JakeFAU/sitemap-indexer/internal/fetcher/colly"
	"github.com/JakeFAU/sitemap-indexer/internal/id/uuid"
	"github.com/JakeFAU/sitemap-indexer/internal/indexer"
	"github.com/JakeFAU/sitemap-indexer/internal/metrics"
	googlenotifier "github.com/JakeFAU/sitemap-indexer/internal/notifier/google"
	memorynotifier "github.com/JakeFAU/sitemap-indexer/internal/notifier/memory"
	"github.com/JakeFAU/sitemap-indexer/internal/policy/ratelimit"
	gcppublisher "github.com/JakeFAU/sitemap-indexer/internal/publisher/pubsub"
	"github.com/JakeFAU/sitemap-indexer/internal/report"
	"github.com/JakeFAU/sitemap-indexer/internal/sitemap"
	gcsstorage "github.com/JakeFAU/sitemap-indexer/internal/storage/gcs"
	localstorage "github.com/JakeFAU/sitemap-indexer/internal/storage/local"
	pgstore "github.com/JakeFAU/sitemap-indexer/internal/storage/postgres"
)

// Options carries dependencies that are not expressible in config.
type Options struct {
	// Observer receives run events in addition to the status tracker.
	Observer indexer.Observer
	// Notifier replaces the notifier selected from config.
	Notifier indexer.Notifier
	// GoogleOptions are appended to the Indexing API client options.
	GoogleOptions []option.ClientOption
	// ReportOptions are passed to the GCS and Pub/Sub clients.
	ReportOptions []option.ClientOption
}

// App contains the application's dependencies.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	driver  *indexer.Driver
	tracker *indexer.Tracker
	api     *api.Server
	sinks   []string
	closers []func() error
}

// NewCrawler builds the sitemap crawler described by cfg.
func NewCrawler(cfg config.Config, logger *zap.Logger) *sitemap.Crawler {
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:   cfg.Crawler.UserAgent,
		Timeout:     cfg.FetchTimeout(),
		MaxBodySize: cfg.Crawler.MaxBodyBytes,
	})
	limiter := ratelimit.New(ratelimit.Config{
		RPS:   cfg.Crawler.FetchRPS,
		Burst: cfg.Crawler.FetchBurst,
	})
	return sitemap.NewCrawler(fetcher, limiter, sitemap.Config{MaxSitemaps: cfg.Crawler.MaxSitemaps}, logger)
}

// NewApp wires the crawler, notifier, report sinks and status server. On error
// every client opened so far is closed.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:     cfg,
		logger:  logger,
		tracker: indexer.NewTracker(),
	}

	notifier, err := a.buildNotifier(ctx, opts)
	if err != nil {
		return nil, err
	}
	reporter, err := a.buildReporter(ctx, opts)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.driver = indexer.NewDriver(
		NewCrawler(cfg, logger),
		notifier,
		reporter,
		system.New(),
		uuid.New(),
		indexer.Observers(a.tracker, opts.Observer),
		indexer.Config{NotificationType: cfg.Indexer.NotificationType},
		logger,
	)
	if cfg.Server.Listen != "" {
		a.api = api.NewServer(a.tracker, logger)
	}
	return a, nil
}

func (a *App) buildNotifier(ctx context.Context, opts Options) (indexer.Notifier, error) {
	switch {
	case opts.Notifier != nil:
		return opts.Notifier, nil
	case a.cfg.Indexer.DryRun:
		a.logger.Info("dry run: notifications are recorded, not sent")
		return memorynotifier.New(), nil
	}
	n, err := googlenotifier.New(ctx, googlenotifier.Config{
		CredentialsFile: a.cfg.Indexer.CredentialsFile,
		Endpoint:        a.cfg.Indexer.Endpoint,
		UserAgent:       a.cfg.Crawler.UserAgent,
	}, opts.GoogleOptions...)
	if err != nil {
		return nil, fmt.Errorf("build indexing client: %w", err)
	}
	return n, nil
}

//nolint:gocognit // one branch per optional sink
func (a *App) buildReporter(ctx context.Context, opts Options) (indexer.Reporter, error) {
	rc := a.cfg.Report
	sinks := []report.Sink{report.NewLogSink(a.logger)}

	if rc.Dir != "" {
		store, err := localstorage.New(localstorage.Config{BaseDir: rc.Dir})
		if err != nil {
			return nil, fmt.Errorf("open report dir: %w", err)
		}
		sinks = append(sinks, report.NewBlobSink("file", store, ""))
	}
	if rc.GCSBucket != "" {
		store, err := gcsstorage.Open(ctx, gcsstorage.Config{Bucket: rc.GCSBucket}, opts.ReportOptions...)
		if err != nil {
			return nil, fmt.Errorf("open gcs report bucket: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		sinks = append(sinks, report.NewBlobSink("gcs", store, rc.GCSPrefix))
	}
	if rc.PubSubTopic != "" {
		pub, err := gcppublisher.Open(ctx, rc.PubSubProjectID, rc.PubSubTopic, opts.ReportOptions...)
		if err != nil {
			return nil, fmt.Errorf("open pubsub report topic: %w", err)
		}
		a.closers = append(a.closers, pub.Close)
		sinks = append(sinks, report.NewPublisherSink(pub))
	}
	if rc.DBDSN != "" {
		store, err := pgstore.NewRunStore(ctx, pgstore.RunStoreConfig{DSN: rc.DBDSN, Table: rc.DBTable})
		if err != nil {
			return nil, fmt.Errorf("open report database: %w", err)
		}
		a.closers = append(a.closers, func() error { store.Close(); return nil })
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("prepare report table: %w", err)
		}
		sinks = append(sinks, report.NewPostgresSink(store))
	}

	fan := report.NewFanout(a.logger, sinks...)
	a.sinks = fan.Sinks()
	return fan, nil
}

// Sinks lists the active report sinks.
func (a *App) Sinks() []string {
	return a.sinks
}

// Tracker exposes run progress.
func (a *App) Tracker() *indexer.Tracker {
	return a.tracker
}

// Index runs one indexing pass. The status server, when configured, serves
// for the duration of the run.
func (a *App) Index(ctx context.Context, req indexer.RunRequest) (indexer.Result, error) {
	var wg sync.WaitGroup
	if a.api != nil {
		srvCtx, stop := context.WithCancel(ctx)
		defer func() {
			stop()
			wg.Wait()
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.api.Serve(srvCtx, a.cfg.Server.Listen); err != nil {
				a.logger.Error("status server stopped", zap.Error(err))
			}
		}()
	}

	res, err := a.driver.Run(ctx, req)

	if path := a.cfg.Metrics.Textfile; path != "" {
		if werr := metrics.WriteTextfile(path); werr != nil {
			a.logger.Warn("write metrics textfile", zap.String("path", path), zap.Error(werr))
		}
	}
	return res, err
}

// Close releases every client opened by NewApp.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("close clients", zap.Error(err))
		return err
	}
	return nil
}
