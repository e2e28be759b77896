package report

import (
	"context"
	"fmt"

	"github.com/JakeFAU/sitemap-indexer/internal/indexer"
	"github.com/JakeFAU/sitemap-indexer/internal/storage/postgres"
)

// RunWriter is satisfied by postgres.RunStore.
type RunWriter interface {
	InsertRun(ctx context.Context, rec postgres.RunRecord) error
}

// PostgresSink inserts one row per run.
type PostgresSink struct {
	writer RunWriter
}

// NewPostgresSink constructs a PostgresSink.
func NewPostgresSink(writer RunWriter) *PostgresSink {
	return &PostgresSink{writer: writer}
}

// Name implements Sink.
func (*PostgresSink) Name() string { return "postgres" }

// Report implements indexer.Reporter.
func (s *PostgresSink) Report(ctx context.Context, res indexer.Result) error {
	if s.writer == nil {
		return fmt.Errorf("postgres sink has no writer")
	}
	rec := postgres.RunRecord{
		RunID:      res.RunID,
		SitemapURL: res.SitemapURL,
		Status:     res.Status(),
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Discovered: res.Discovered,
		Unique:     res.Unique,
		Attempted:  res.Attempted,
		Indexed:    res.Succeeded(),
		Failed:     len(res.Failed),
	}
	if len(res.Failures) > 0 {
		rec.Failures = res.Failures
	}
	if err := s.writer.InsertRun(ctx, rec); err != nil {
		return fmt.Errorf("archive run: %w", err)
	}
	return nil
}
