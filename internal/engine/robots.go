package engine

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsPolicy answers whether a URL may be fetched. The engine consults
// it before enqueueing candidates when robots compliance is enabled.
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// CachedRobots fetches and caches robots.txt per scheme+host.
//
// Design decision: fetch failures allow the URL. A site whose robots.txt
// is down should degrade to "no stated policy", not to "crawl nothing" -
// the per-domain rate limiter still protects it.
type CachedRobots struct {
	client    *http.Client
	userAgent string

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewCachedRobots creates a robots.txt gate using the given client.
func NewCachedRobots(client *http.Client, userAgent string) *CachedRobots {
	return &CachedRobots{
		client:    client,
		userAgent: userAgent,
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be fetched under the host's
// robots.txt for the configured user agent.
func (c *CachedRobots) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	data := c.robotsFor(ctx, u.Scheme, u.Host)
	if data == nil {
		return true
	}
	return data.TestAgent(u.Path, c.userAgent)
}

// robotsFor returns the cached robots data for a host, fetching it on
// first use. A nil return means "no usable policy, allow everything".
func (c *CachedRobots) robotsFor(ctx context.Context, scheme, host string) *robotstxt.RobotsData {
	key := scheme + "://" + host

	c.mu.Lock()
	if data, ok := c.cache[key]; ok {
		c.mu.Unlock()
		return data
	}
	c.mu.Unlock()

	data := c.fetchRobots(ctx, key+"/robots.txt")

	c.mu.Lock()
	c.cache[key] = data
	c.mu.Unlock()
	return data
}

func (c *CachedRobots) fetchRobots(ctx context.Context, robotsURL string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort close on read path

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil
	}
	return data
}

// allowAll is the policy used when robots compliance is disabled.
type allowAll struct{}

func (allowAll) Allowed(context.Context, string) bool { return true }
