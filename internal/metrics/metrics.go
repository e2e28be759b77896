// Package metrics exposes Prometheus collectors for the sitemap indexer.
package metrics

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sitemapsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitemap_indexer_sitemaps_fetched_total",
			Help: "Total number of sitemap documents processed, labeled by site and status.",
		},
		[]string{"site", "status"},
	)

	sitemapBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitemap_indexer_sitemap_bytes_total",
			Help: "Total number of sitemap bytes fetched, labeled by site.",
		},
		[]string{"site"},
	)

	urlsDiscoveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sitemap_indexer_urls_discovered_total",
			Help: "Total number of page URLs extracted from leaf sitemaps, duplicates included.",
		},
	)

	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitemap_indexer_submissions_total",
			Help: "Total number of Indexing API notifications, labeled by outcome and reason.",
		},
		[]string{"outcome", "reason"},
	)

	submissionDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sitemap_indexer_submission_duration_seconds",
			Help:    "Histogram of Indexing API call latencies.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	delaySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitemap_indexer_delay_seconds",
			Help:    "Histogram of deliberate pauses, by source (submission or ratelimit).",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"source"},
	)

	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitemap_indexer_runs_total",
			Help: "Total number of runs, labeled by final status.",
		},
		[]string{"status"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitemap_indexer_http_requests_total",
			Help: "Total number of status server requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitemap_indexer_http_request_duration_seconds",
			Help:    "Histogram of status server latencies, labeled by method and route.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "route"},
	)
)

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// WriteTextfile dumps the default registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// ObserveSitemapFetch records one processed sitemap document.
func ObserveSitemapFetch(sitemapURL string, status string, bytesFetched int) {
	site := SanitizeSite(sitemapURL)
	sitemapsFetchedTotal.WithLabelValues(site, status).Inc()
	if bytesFetched > 0 {
		sitemapBytesTotal.WithLabelValues(site).Add(float64(bytesFetched))
	}
}

// ObserveDiscovered adds n page URLs to the discovery counter.
func ObserveDiscovered(n int) {
	if n > 0 {
		urlsDiscoveredTotal.Add(float64(n))
	}
}

// ObserveSubmission records one Indexing API call.
func ObserveSubmission(outcome, reason string, duration time.Duration) {
	submissionsTotal.WithLabelValues(outcome, reason).Inc()
	submissionDurationSeconds.Observe(duration.Seconds())
}

// ObserveDelay records a deliberate pause taken by source.
func ObserveDelay(source string, duration time.Duration) {
	delaySeconds.WithLabelValues(source).Observe(duration.Seconds())
}

// ObserveRun increments the run counter for the given status.
func ObserveRun(status string) {
	runsTotal.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
