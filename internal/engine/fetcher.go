package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/nao1215/spiderkit/internal/model"
)

// ErrFetch wraps every fetcher failure so the engine can treat them
// uniformly as "drop and continue".
var ErrFetch = errors.New("fetch failed")

// FetchResult is what a Fetcher returns for one request.
type FetchResult struct {
	// StatusCode is the HTTP status, zero when the transport has none.
	StatusCode int

	// ContentType is the response MIME type.
	ContentType string

	// Body is the response body, already bounded by the fetcher.
	Body []byte

	// ItemProbability, when non-nil, is an extraction service's estimate
	// in [0,1] that this page is a single extractable item. It feeds the
	// classifier as its external signal.
	ItemProbability *float64
}

// Fetcher retrieves page content for crawl requests. Implementations own
// transport details entirely: proxies, retries, rendering. Errors are
// never fatal to the run.
type Fetcher interface {
	Fetch(ctx context.Context, req *model.CrawlRequest) (*FetchResult, error)
}

// HTTPFetcher is the thin default Fetcher over net/http.
type HTTPFetcher struct {
	// client is the HTTP client to use. Callers inject pre-configured
	// clients (timeouts, proxies); tests inject httptest clients.
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize bounds how much of a response body is read.
	maxBodySize int64

	// siteHeaders holds extra request headers keyed by registrable
	// domain. Sites behind login walls or bot checks need cookies and
	// custom headers to serve real content.
	siteHeaders map[string]map[string]string
}

// HTTPFetcherOption configures an HTTPFetcher.
type HTTPFetcherOption func(*HTTPFetcher)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the response body read limit.
func WithMaxBodySize(n int64) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.maxBodySize = n
	}
}

// WithSiteHeaders sets extra request headers per registrable domain.
// A "Cookie" entry carries session cookies for sites that require login.
func WithSiteHeaders(headers map[string]map[string]string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.siteHeaders = headers
	}
}

// NewHTTPFetcher creates an HTTPFetcher with the given client.
//
// Design decision: We require an external client rather than building one
// because timeout and proxy policy belong to the caller, and tests need
// to point the fetcher at httptest servers.
func NewHTTPFetcher(client *http.Client, opts ...HTTPFetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      client,
		userAgent:   "spiderkit/1.0 (+https://github.com/nao1215/spiderkit)",
		maxBodySize: 5 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs a single GET. It reads at most maxBodySize bytes and
// never retries; transient-failure policy belongs to richer fetchers.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *model.CrawlRequest) (*FetchResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, req.URL, err)
	}
	httpReq.Header.Set("User-Agent", f.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for name, value := range f.siteHeaders[req.OriginDomain] {
		httpReq.Header.Set(name, value)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, req.URL, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort close on read path

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, req.URL, err)
	}

	return &FetchResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Sink receives page records the strategy selector marked for extraction.
// The engine's obligation ends once Emit returns; what extraction does
// with the record is not this module's concern.
type Sink interface {
	Emit(ctx context.Context, record *model.PageRecord) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, record *model.PageRecord) error

// Emit calls the wrapped function.
func (f SinkFunc) Emit(ctx context.Context, record *model.PageRecord) error {
	return f(ctx, record)
}
