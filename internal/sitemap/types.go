package sitemap

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Fetcher fetches a sitemap URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Limiter throttles fetches. Wait blocks until url may be requested.
type Limiter interface {
	Wait(ctx context.Context, url string) error
}

// FetchRequest captures everything needed to fetch a sitemap.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Document is the parsed content of one sitemap. Both slices hold absolute URLs.
type Document struct {
	Pages    []string
	Sitemaps []string
}

// IsIndex reports whether the document references nested sitemaps.
func (d Document) IsIndex() bool {
	return len(d.Sitemaps) > 0
}

// Result aggregates one crawl.
type Result struct {
	// Pages holds page URLs in depth-first discovery order, duplicates included.
	Pages []string
	// Visited lists every sitemap URL that was fetched, in fetch order.
	Visited []string
	// Errors lists sitemaps that contributed nothing because of a fetch or parse failure.
	Errors []VisitError
}

// VisitError records why one sitemap contributed no URLs.
type VisitError struct {
	URL   string
	Stage string
	Err   error
}

// Error implements error.
func (e VisitError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.URL, e.Err)
}

// Unwrap exposes the underlying error.
func (e VisitError) Unwrap() error {
	return e.Err
}

// Visit stages.
const (
	StageFetch = "fetch"
	StageParse = "parse"
)
