package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/JakeFAU/sitemap-indexer/internal/indexer"
)

// BlobStore is satisfied by the local, memory and GCS stores.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}

// BlobSink writes the full result as JSON to <prefix>/<run_id>.json.
type BlobSink struct {
	name   string
	store  BlobStore
	prefix string
}

// NewBlobSink constructs a BlobSink. name labels the sink in logs.
func NewBlobSink(name string, store BlobStore, prefix string) *BlobSink {
	return &BlobSink{name: name, store: store, prefix: strings.Trim(prefix, "/")}
}

// Name implements Sink.
func (s *BlobSink) Name() string { return s.name }

// ObjectPath returns the object key for a run.
func (s *BlobSink) ObjectPath(runID string) string {
	if s.prefix == "" {
		return runID + ".json"
	}
	return path.Join(s.prefix, runID+".json")
}

// Report implements indexer.Reporter.
func (s *BlobSink) Report(ctx context.Context, res indexer.Result) error {
	if s.store == nil {
		return fmt.Errorf("%s sink has no store", s.name)
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if _, err := s.store.PutObject(ctx, s.ObjectPath(res.RunID), "application/json", bytes.NewReader(data)); err != nil {
		return fmt.Errorf("put %s: %w", s.ObjectPath(res.RunID), err)
	}
	return nil
}
