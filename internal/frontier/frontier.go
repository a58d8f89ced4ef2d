package frontier

import (
	"container/heap"
	"log/slog"
	"sync"

	"github.com/nao1215/spiderkit/internal/model"
)

// Frontier defaults.
const (
	// DefaultMaxSize bounds the frontier. Overflow evicts the
	// lowest-priority entry rather than growing silently.
	DefaultMaxSize = 10000

	// DefaultPerDomainCap bounds requests admitted per registrable domain,
	// so a single deep site cannot monopolize a multi-seed crawl.
	DefaultPerDomainCap = 5000
)

// entry wraps a request with the sequence number that makes equal
// priorities FIFO.
type entry struct {
	request *model.CrawlRequest
	seq     uint64
}

// requestHeap is a max-heap on priority, min on sequence within a priority.
type requestHeap []entry

func (h requestHeap) Len() int { return len(h) }

func (h requestHeap) Less(i, j int) bool {
	if h[i].request.Priority != h[j].request.Priority {
		return h[i].request.Priority > h[j].request.Priority
	}
	return h[i].seq < h[j].seq
}

func (h requestHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *requestHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *requestHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Frontier is the bounded working set of not-yet-fetched requests.
// Enqueue and DequeueNext serialize on an internal mutex; they are the
// only operations concurrent fetch completions contend on.
type Frontier struct {
	mu sync.Mutex

	queue        requestHeap
	seq          uint64
	maxSize      int
	perDomainCap int
	domainCounts map[string]int

	// budget is the total number of dequeues allowed; 0 means unlimited.
	// Checked at dequeue time so in-flight work can finish naturally.
	budget   int
	dequeued int

	// roundRobin alternates domains on dequeue when more than one domain
	// is waiting, instead of draining the highest-priority domain first.
	roundRobin bool
	lastDomain string

	overflowDropped  int
	domainCapDropped int

	logger *slog.Logger
}

// Option configures a Frontier.
type Option func(*Frontier)

// WithMaxSize sets the total frontier size cap.
func WithMaxSize(n int) Option {
	return func(f *Frontier) {
		f.maxSize = n
	}
}

// WithPerDomainCap sets the per-domain admission cap.
func WithPerDomainCap(n int) Option {
	return func(f *Frontier) {
		f.perDomainCap = n
	}
}

// WithBudget sets the global dequeue budget. After budget dequeues,
// DequeueNext reports empty even if requests remain.
func WithBudget(n int) Option {
	return func(f *Frontier) {
		f.budget = n
	}
}

// WithDomainRoundRobin alternates between origin domains on dequeue.
func WithDomainRoundRobin() Option {
	return func(f *Frontier) {
		f.roundRobin = true
	}
}

// WithLogger sets the logger for soft-failure logging (overflow, caps).
func WithLogger(logger *slog.Logger) Option {
	return func(f *Frontier) {
		f.logger = logger
	}
}

// New creates an empty Frontier.
func New(opts ...Option) *Frontier {
	f := &Frontier{
		maxSize:      DefaultMaxSize,
		perDomainCap: DefaultPerDomainCap,
		domainCounts: make(map[string]int),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Enqueue admits candidates into the frontier and returns how many were
// accepted. Candidates over the per-domain cap are dropped; when the
// frontier is full, the lowest-priority entry (incoming or resident)
// is dropped. Both are soft failures: logged, counted, never an error.
func (f *Frontier) Enqueue(candidates []*model.CrawlRequest) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	accepted := 0
	for _, req := range candidates {
		if req == nil {
			continue
		}
		if f.perDomainCap > 0 && f.domainCounts[req.OriginDomain] >= f.perDomainCap {
			f.domainCapDropped++
			f.logger.Debug("domain cap reached, dropping candidate",
				"url", req.URL,
				"domain", req.OriginDomain,
			)
			continue
		}
		if f.maxSize > 0 && len(f.queue) >= f.maxSize {
			if !f.evictLowerThan(req) {
				f.overflowDropped++
				f.logger.Warn("frontier full, dropping candidate",
					"url", req.URL,
					"priority", req.Priority,
					"max_size", f.maxSize,
				)
				continue
			}
		}
		f.seq++
		heap.Push(&f.queue, entry{request: req, seq: f.seq})
		f.domainCounts[req.OriginDomain]++
		accepted++
	}
	return accepted
}

// evictLowerThan removes the lowest-priority resident entry if it ranks
// below req, making room. Returns false when req itself is the loser.
func (f *Frontier) evictLowerThan(req *model.CrawlRequest) bool {
	lowest := -1
	for i := range f.queue {
		if lowest == -1 {
			lowest = i
			continue
		}
		li, lc := f.queue[i], f.queue[lowest]
		if li.request.Priority < lc.request.Priority ||
			(li.request.Priority == lc.request.Priority && li.seq > lc.seq) {
			lowest = i
		}
	}
	if lowest == -1 || f.queue[lowest].request.Priority >= req.Priority {
		return false
	}

	victim := f.queue[lowest].request
	heap.Remove(&f.queue, lowest)
	f.domainCounts[victim.OriginDomain]--
	f.overflowDropped++
	f.logger.Warn("frontier full, evicting lowest-priority request",
		"evicted_url", victim.URL,
		"evicted_priority", victim.Priority,
		"for_url", req.URL,
		"for_priority", req.Priority,
	)
	return true
}

// DequeueNext returns the next request to fetch, or false when the
// frontier is empty or the dequeue budget is exhausted. Budget exhaustion
// is graceful termination, not an error: remaining entries stay queued
// and are simply never served.
func (f *Frontier) DequeueNext() (*model.CrawlRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return nil, false
	}
	if f.budget > 0 && f.dequeued >= f.budget {
		return nil, false
	}

	var picked entry
	if f.roundRobin {
		picked = f.popPreferringOtherDomain()
	} else {
		picked = heap.Pop(&f.queue).(entry)
	}

	f.dequeued++
	f.domainCounts[picked.request.OriginDomain]--
	f.lastDomain = picked.request.OriginDomain
	return picked.request, true
}

// popPreferringOtherDomain pops the highest-priority entry whose domain
// differs from the last-served one, falling back to the overall best when
// only one domain is waiting.
func (f *Frontier) popPreferringOtherDomain() entry {
	best := heap.Pop(&f.queue).(entry)
	if f.lastDomain == "" || best.request.OriginDomain != f.lastDomain {
		return best
	}

	var skipped []entry
	picked := best
	found := false
	for len(f.queue) > 0 {
		candidate := heap.Pop(&f.queue).(entry)
		if candidate.request.OriginDomain != f.lastDomain {
			picked = candidate
			found = true
			break
		}
		skipped = append(skipped, candidate)
	}

	if found {
		skipped = append(skipped, best)
	}
	for _, e := range skipped {
		heap.Push(&f.queue, e)
	}
	return picked
}

// Len returns the number of queued requests.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// BudgetExhausted reports whether the dequeue budget has been consumed.
// The engine uses it to distinguish "page budget reached" from "frontier
// drained" when recording why a run terminated.
func (f *Frontier) BudgetExhausted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.budget > 0 && f.dequeued >= f.budget
}

// Stats reports the soft-failure counters for the run summary.
func (f *Frontier) Stats() (overflowDropped, domainCapDropped int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overflowDropped, f.domainCapDropped
}
