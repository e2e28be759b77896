package indexer

import (
	"context"
	"time"

	"github.com/JakeFAU/sitemap-indexer/internal/sitemap"
)

// Crawler discovers page URLs from a sitemap tree.
type Crawler interface {
	Crawl(ctx context.Context, rootURL string) (sitemap.Result, error)
}

// Notifier submits a single URL notification.
type Notifier interface {
	Notify(ctx context.Context, rawURL, notificationType string) error
}

// Clock abstracts time so the inter-submission delay can be observed in tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// IDGenerator allocates run identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Reporter receives the finished result of a run that submitted at least one URL.
type Reporter interface {
	Report(ctx context.Context, res Result) error
}

// Observer is notified as a run progresses. Implementations must not block.
type Observer interface {
	PhaseChanged(runID string, phase Phase)
	BatchStarted(runID string, total int)
	Submitted(runID, rawURL string, err error)
	Finished(res Result)
}
