package report

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/sitemap-indexer/internal/indexer"
)

// LogSink prints the end-of-run summary through zap.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink constructs a LogSink. A nil logger disables output.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Name implements Sink.
func (*LogSink) Name() string { return "log" }

// Report logs the summary followed by one line per failed URL.
func (s *LogSink) Report(_ context.Context, res indexer.Result) error {
	s.logger.Info("indexing summary",
		zap.String("run_id", res.RunID),
		zap.String("sitemap_url", res.SitemapURL),
		zap.String("status", res.Status()),
		zap.Int("attempted", res.Attempted),
		zap.Int("succeeded", res.Succeeded()),
		zap.Int("failed", len(res.Failed)),
		zap.Duration("duration", res.Duration()),
	)
	for _, f := range res.Failures {
		s.logger.Warn("failed url",
			zap.String("run_id", res.RunID),
			zap.String("url", f.URL),
			zap.String("reason", f.Reason),
		)
	}
	return nil
}
