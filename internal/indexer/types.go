package indexer

import (
	"errors"
	"time"
)

// ErrNoNotifier is returned by Run when the driver was built without a Notifier.
var ErrNoNotifier = errors.New("no notifier configured")

// Phase names a step of a run.
type Phase string

// Run phases, in order.
const (
	PhaseStart      Phase = "start"
	PhaseCrawling   Phase = "crawling"
	PhaseDeduping   Phase = "deduping"
	PhaseSubmitting Phase = "submitting"
	PhaseReporting  Phase = "reporting"
	PhaseDone       Phase = "done"
)

// Notification types accepted by the Indexing API.
const (
	TypeURLUpdated = "URL_UPDATED"
	TypeURLDeleted = "URL_DELETED"
)

// Defaults applied by NewRunRequest.
const (
	DefaultBatchSize = 200
	DefaultDelay     = time.Second
)

// Run statuses returned by Result.Status.
const (
	StatusEmpty     = "empty"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

// ReasonCanceled labels a submission interrupted by context cancellation.
const ReasonCanceled = "canceled"

// Config holds driver-wide settings.
type Config struct {
	// NotificationType is sent with every URL. Empty means URL_UPDATED.
	NotificationType string
}

// RunRequest describes one run.
type RunRequest struct {
	SitemapURL string
	// BatchSize caps submissions. Zero or negative submits every unique URL.
	BatchSize int
	// Delay is the pause between consecutive submissions.
	Delay time.Duration
}

// NewRunRequest returns a request with the default batch size and delay.
func NewRunRequest(sitemapURL string) RunRequest {
	return RunRequest{
		SitemapURL: sitemapURL,
		BatchSize:  DefaultBatchSize,
		Delay:      DefaultDelay,
	}
}

// Failure records one rejected submission.
type Failure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

// SitemapError records a sitemap that contributed no URLs.
type SitemapError struct {
	URL   string `json:"url"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// Result is the outcome of one run. Every Run call returns a fresh value.
type Result struct {
	RunID           string         `json:"run_id"`
	SitemapURL      string         `json:"sitemap_url"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
	Discovered      int            `json:"discovered"`
	Unique          int            `json:"unique"`
	URLSetDigest    string         `json:"url_set_digest,omitempty"`
	SitemapsVisited int            `json:"sitemaps_visited"`
	SitemapErrors   []SitemapError `json:"sitemap_errors,omitempty"`
	Attempted       int            `json:"attempted"`
	Indexed         []string       `json:"indexed"`
	Failed          []string       `json:"failed"`
	Failures        []Failure      `json:"failures,omitempty"`
	Canceled        bool           `json:"canceled,omitempty"`
}

// Succeeded returns the number of accepted submissions.
func (r Result) Succeeded() int {
	return len(r.Indexed)
}

// Empty reports whether the crawl found no page URLs.
func (r Result) Empty() bool {
	return r.Unique == 0
}

// Duration is the wall time of the run.
func (r Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Status summarizes the run in one word.
func (r Result) Status() string {
	switch {
	case r.Canceled:
		return StatusCanceled
	case r.Empty():
		return StatusEmpty
	case len(r.Failed) == 0:
		return StatusCompleted
	case len(r.Indexed) == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}
