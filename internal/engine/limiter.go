package engine

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// DomainLimiter rate-limits fetches per registrable domain so a crawl
// stays polite to every site it touches, not just on average.
type DomainLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	overrides map[string]rate.Limit
	rps       rate.Limit
	burst     int
}

// NewDomainLimiter creates a limiter allowing rps requests per second per
// domain with the given burst. rps <= 0 disables limiting for domains
// without an override.
func NewDomainLimiter(rps float64, burst int) *DomainLimiter {
	if burst < 1 {
		burst = 1
	}
	return &DomainLimiter{
		limiters:  make(map[string]*rate.Limiter),
		overrides: make(map[string]rate.Limit),
		rps:       rate.Limit(rps),
		burst:     burst,
	}
}

// SetRate overrides the request rate for one domain. Must be called
// before the first request to that domain; later calls are ignored
// because the domain's limiter already exists.
func (d *DomainLimiter) SetRate(domain string, rps float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.limiters[domain]; ok {
		return
	}
	d.overrides[domain] = rate.Limit(rps)
}

// Wait blocks until the domain's limiter admits a request or the context
// is cancelled.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	l := d.limiterFor(domain)
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

// limiterFor returns the domain's limiter, or nil when the effective
// rate for that domain disables limiting.
func (d *DomainLimiter) limiterFor(domain string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l, ok := d.limiters[domain]; ok {
		return l
	}
	limit := d.rps
	if o, ok := d.overrides[domain]; ok {
		limit = o
	}
	if limit <= 0 {
		return nil
	}
	l := rate.NewLimiter(limit, d.burst)
	d.limiters[domain] = l
	return l
}
