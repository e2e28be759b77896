package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/JakeFAU/sitemap-indexer/internal/indexer"
)

// Publisher is satisfied by the Pub/Sub publisher.
type Publisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error)
}

// Summary is the compact message published per run.
type Summary struct {
	RunID      string   `json:"run_id"`
	SitemapURL string   `json:"sitemap_url"`
	Status     string   `json:"status"`
	Attempted  int      `json:"attempted"`
	Indexed    int      `json:"indexed"`
	Failed     []string `json:"failed"`
	DurationMS int64    `json:"duration_ms"`
	URLDigest  string   `json:"url_set_digest,omitempty"`
}

// NewSummary condenses a result.
func NewSummary(res indexer.Result) Summary {
	failed := res.Failed
	if failed == nil {
		failed = []string{}
	}
	return Summary{
		RunID:      res.RunID,
		SitemapURL: res.SitemapURL,
		Status:     res.Status(),
		Attempted:  res.Attempted,
		Indexed:    res.Succeeded(),
		Failed:     failed,
		DurationMS: res.Duration().Milliseconds(),
		URLDigest:  res.URLSetDigest,
	}
}

// PublisherSink publishes a Summary per run.
type PublisherSink struct {
	publisher Publisher
}

// NewPublisherSink constructs a PublisherSink.
func NewPublisherSink(publisher Publisher) *PublisherSink {
	return &PublisherSink{publisher: publisher}
}

// Name implements Sink.
func (*PublisherSink) Name() string { return "pubsub" }

// Report implements indexer.Reporter.
func (s *PublisherSink) Report(ctx context.Context, res indexer.Result) error {
	if s.publisher == nil {
		return fmt.Errorf("pubsub sink has no publisher")
	}
	summary := NewSummary(res)
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	attrs := map[string]string{
		"run_id": summary.RunID,
		"status": summary.Status,
		"failed": strconv.Itoa(len(summary.Failed)),
	}
	if _, err := s.publisher.Publish(ctx, data, attrs); err != nil {
		return fmt.Errorf("publish summary: %w", err)
	}
	return nil
}
