package frontier

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Visited set defaults.
const (
	// DefaultExactCapacity is the number of URLs held in the exact map
	// before new URLs are remembered only by the Bloom filter.
	DefaultExactCapacity = 1 << 20

	// DefaultBloomCapacity sizes the Bloom filter. It should exceed the
	// largest crawl the process is expected to run.
	DefaultBloomCapacity = 1 << 24

	// DefaultBloomErrorRate is the filter's false-positive rate: the
	// chance a never-seen URL is wrongly skipped once the exact map is
	// saturated.
	DefaultBloomErrorRate = 0.001
)

// Visited tracks canonical URLs already scheduled or fetched.
//
// Design decision: The map is authoritative for the first
// DefaultExactCapacity URLs and the Bloom filter for the rest, rather
// than the filter alone, because a false positive on an early URL (a
// seed, say) would be much more damaging than one deep into a
// million-page crawl.
type Visited struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	filter   *bloom.BloomFilter
	maxExact int
}

// VisitedOption configures a Visited set.
type VisitedOption func(*Visited)

// WithExactCapacity overrides the exact-map capacity.
func WithExactCapacity(n int) VisitedOption {
	return func(v *Visited) {
		v.maxExact = n
	}
}

// NewVisited creates an empty visited set.
func NewVisited(opts ...VisitedOption) *Visited {
	v := &Visited{
		seen:     make(map[string]struct{}),
		filter:   bloom.NewWithEstimates(DefaultBloomCapacity, DefaultBloomErrorRate),
		maxExact: DefaultExactCapacity,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// MarkIfNew atomically checks membership and inserts canonicalURL.
// It returns true only on the first sighting of the URL; every later call
// with the same canonical URL returns false.
func (v *Visited) MarkIfNew(canonicalURL string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.seen[canonicalURL]; ok {
		return false
	}
	if v.filter.TestString(canonicalURL) {
		// Either evicted to filter-only tracking, or a false positive.
		return false
	}

	v.filter.AddString(canonicalURL)
	if len(v.seen) < v.maxExact {
		v.seen[canonicalURL] = struct{}{}
	}
	return true
}

// Len returns the number of URLs in the exact map. Past the exact
// capacity this undercounts, which is fine for the statistics it feeds.
func (v *Visited) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}
