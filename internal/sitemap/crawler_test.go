package sitemap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	fail   map[string]error
	calls  map[string]int
	order  []string
}

func newFakeFetcher(bodies map[string]string) *fakeFetcher {
	return &fakeFetcher{
		bodies: bodies,
		fail:   map[string]error{},
		calls:  map[string]int{},
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, req FetchRequest) (FetchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[req.URL]++
	f.order = append(f.order, req.URL)
	if err, ok := f.fail[req.URL]; ok {
		return FetchResponse{}, err
	}
	body, ok := f.bodies[req.URL]
	if !ok {
		return FetchResponse{}, fmt.Errorf("404 not found: %s", req.URL)
	}
	return FetchResponse{URL: req.URL, StatusCode: 200, Body: []byte(body)}, nil
}

type countingLimiter struct {
	waits int
	err   error
}

func (l *countingLimiter) Wait(context.Context, string) error {
	l.waits++
	return l.err
}

func index(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, loc := range locs {
		fmt.Fprintf(&b, "<sitemap><loc>%s</loc></sitemap>", loc)
	}
	b.WriteString(`</sitemapindex>`)
	return b.String()
}

func urlset(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, loc := range locs {
		fmt.Fprintf(&b, "<url><loc>%s</loc></url>", loc)
	}
	b.WriteString(`</urlset>`)
	return b.String()
}

func TestCrawlUnionOfBranches(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/index.xml": index("https://example.com/a.xml", "https://example.com/b.xml"),
		"https://example.com/a.xml":     urlset("https://example.com/a1", "https://example.com/a2"),
		"https://example.com/b.xml":     urlset("https://example.com/b1"),
	})
	crawler := NewCrawler(fetcher, nil, Config{}, zap.NewNop())

	res, err := crawler.Crawl(context.Background(), "https://example.com/index.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/a1",
		"https://example.com/a2",
		"https://example.com/b1",
	}, res.Pages)
	assert.Equal(t, []string{
		"https://example.com/index.xml",
		"https://example.com/a.xml",
		"https://example.com/b.xml",
	}, res.Visited)
	assert.Empty(t, res.Errors)
}

func TestCrawlDepthFirstOrder(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/root.xml":   index("https://example.com/a.xml", "https://example.com/b.xml"),
		"https://example.com/a.xml":      index("https://example.com/a-deep.xml"),
		"https://example.com/a-deep.xml": urlset("https://example.com/deep"),
		"https://example.com/b.xml":      urlset("https://example.com/shallow"),
	})
	crawler := NewCrawler(fetcher, nil, Config{}, nil)

	res, err := crawler.Crawl(context.Background(), "https://example.com/root.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/deep", "https://example.com/shallow"}, res.Pages)
	assert.Equal(t, []string{
		"https://example.com/root.xml",
		"https://example.com/a.xml",
		"https://example.com/a-deep.xml",
		"https://example.com/b.xml",
	}, fetcher.order)
}

func TestCrawlTerminatesOnCycles(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/a.xml": index("https://example.com/b.xml", "https://example.com/a.xml"),
		"https://example.com/b.xml": index("https://example.com/c.xml", "https://example.com/a.xml"),
		"https://example.com/c.xml": index("https://example.com/a.xml", "https://example.com/b.xml"),
	})
	crawler := NewCrawler(fetcher, nil, Config{}, zap.NewNop())

	res, err := crawler.Crawl(context.Background(), "https://example.com/a.xml")
	require.NoError(t, err)
	assert.Empty(t, res.Pages)
	assert.Len(t, res.Visited, 3)
	for u, n := range fetcher.calls {
		assert.Equal(t, 1, n, "sitemap %s fetched more than once", u)
	}
}

func TestCrawlDiamondFetchesSharedChildOnce(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/root.xml":   index("https://example.com/a.xml", "https://example.com/b.xml"),
		"https://example.com/a.xml":      index("https://example.com/shared.xml"),
		"https://example.com/b.xml":      index("https://example.com/shared.xml"),
		"https://example.com/shared.xml": urlset("https://example.com/p"),
	})
	crawler := NewCrawler(fetcher, nil, Config{}, zap.NewNop())

	res, err := crawler.Crawl(context.Background(), "https://example.com/root.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/p"}, res.Pages)
	assert.Equal(t, 1, fetcher.calls["https://example.com/shared.xml"])
}

func TestCrawlKeepsDuplicatesAcrossBranches(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/root.xml": index("https://example.com/a.xml", "https://example.com/b.xml"),
		"https://example.com/a.xml":    urlset("https://example.com/p", "https://example.com/q"),
		"https://example.com/b.xml":    urlset("https://example.com/p"),
	})
	crawler := NewCrawler(fetcher, nil, Config{}, zap.NewNop())

	res, err := crawler.Crawl(context.Background(), "https://example.com/root.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/p", "https://example.com/q", "https://example.com/p"}, res.Pages)
}

func TestCrawlSkipsFailedSitemaps(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/root.xml":   index("https://example.com/gone.xml", "https://example.com/broken.xml", "https://example.com/ok.xml"),
		"https://example.com/broken.xml": `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"><url>`,
		"https://example.com/ok.xml":     urlset("https://example.com/ok"),
	})
	crawler := NewCrawler(fetcher, nil, Config{}, zap.NewNop())

	res, err := crawler.Crawl(context.Background(), "https://example.com/root.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/ok"}, res.Pages)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, "https://example.com/gone.xml", res.Errors[0].URL)
	assert.Equal(t, StageFetch, res.Errors[0].Stage)
	assert.Equal(t, "https://example.com/broken.xml", res.Errors[1].URL)
	assert.Equal(t, StageParse, res.Errors[1].Stage)
	assert.True(t, errors.Is(res.Errors[1], ErrMalformed))
}

func TestCrawlRootFailureYieldsEmptyResult(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(nil)
	crawler := NewCrawler(fetcher, nil, Config{}, zap.NewNop())

	res, err := crawler.Crawl(context.Background(), "https://example.com/missing.xml")
	require.NoError(t, err)
	assert.Empty(t, res.Pages)
	assert.Len(t, res.Errors, 1)
}

func TestCrawlResolvesNestedRelativeReferences(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/sitemaps/index.xml": index("posts.xml"),
		"https://example.com/sitemaps/posts.xml": urlset("page1.html"),
	})
	crawler := NewCrawler(fetcher, nil, Config{}, zap.NewNop())

	res, err := crawler.Crawl(context.Background(), "https://example.com/sitemaps/index.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/sitemaps/page1.html"}, res.Pages)
}

func TestCrawlMaxSitemaps(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/root.xml": index("https://example.com/a.xml", "https://example.com/b.xml"),
		"https://example.com/a.xml":    urlset("https://example.com/a"),
		"https://example.com/b.xml":    urlset("https://example.com/b"),
	})
	crawler := NewCrawler(fetcher, nil, Config{MaxSitemaps: 2}, zap.NewNop())

	res, err := crawler.Crawl(context.Background(), "https://example.com/root.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a"}, res.Pages)
	assert.Len(t, res.Visited, 2)
}

func TestCrawlUsesLimiter(t *testing.T) {
	t.Parallel()

	fetcher := newFakeFetcher(map[string]string{
		"https://example.com/root.xml": index("https://example.com/a.xml"),
		"https://example.com/a.xml":    urlset("https://example.com/a"),
	})
	limiter := &countingLimiter{}
	crawler := NewCrawler(fetcher, limiter, Config{}, zap.NewNop())

	_, err := crawler.Crawl(context.Background(), "https://example.com/root.xml")
	require.NoError(t, err)
	assert.Equal(t, 2, limiter.waits)
}

func TestCrawlCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	crawler := NewCrawler(newFakeFetcher(nil), nil, Config{}, zap.NewNop())

	_, err := crawler.Crawl(ctx, "https://example.com/root.xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
