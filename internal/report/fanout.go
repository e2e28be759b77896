package report

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/sitemap-indexer/internal/indexer"
)

// Sink is a named Reporter.
type Sink interface {
	indexer.Reporter
	Name() string
}

// Fanout delivers a result to every sink in order. A failing sink does not
// stop the others.
type Fanout struct {
	sinks  []Sink
	logger *zap.Logger
}

// NewFanout constructs a Fanout over sinks, skipping nils.
func NewFanout(logger *zap.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fanout{logger: logger}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

// Sinks returns the configured sink names.
func (f *Fanout) Sinks() []string {
	names := make([]string, 0, len(f.sinks))
	for _, s := range f.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Report implements indexer.Reporter. The returned error joins every sink failure.
func (f *Fanout) Report(ctx context.Context, res indexer.Result) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Report(ctx, res); err != nil {
			f.logger.Error("report sink failed", zap.String("sink", s.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
