package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/spiderkit/internal/frontier"
	"github.com/nao1215/spiderkit/internal/heuristics"
	"github.com/nao1215/spiderkit/internal/model"
	"github.com/nao1215/spiderkit/internal/strategy"
	"github.com/nao1215/spiderkit/internal/urlutil"
)

// Engine defaults. Per-run budgets are deliberately conservative; callers
// raise them explicitly for large crawls.
const (
	// DefaultMaxDepth is the maximum discovery depth from any seed.
	DefaultMaxDepth = 10

	// DefaultMaxPages is the page-fetch budget per run.
	DefaultMaxPages = 1000

	// DefaultConcurrency is the number of fetches in flight.
	DefaultConcurrency = 4

	// DefaultEmissionFloor drops emitted items whose extraction-service
	// probability falls below it. Matches the upstream templates' 0.1.
	DefaultEmissionFloor = 0.1
)

// ErrNoSeeds is returned when a run starts with no usable seed URL.
var ErrNoSeeds = errors.New("no valid seed URLs")

// Store persists pages and run summaries. Optional; the engine runs fully
// in memory without one.
type Store interface {
	// SavePage records one classified page under the run.
	SavePage(ctx context.Context, runID string, record *model.PageRecord) error

	// SaveRun records the finished run summary.
	SaveRun(ctx context.Context, summary *model.RunSummary) error
}

// Engine coordinates one or more crawl runs. All mutable crawl state is
// run-scoped: the engine itself only carries configuration and
// collaborators and is safe to reuse across runs.
type Engine struct {
	fetcher    Fetcher
	sink       Sink
	classifier *heuristics.Classifier
	selector   *strategy.Selector
	normalizer *urlutil.Normalizer
	robots     RobotsPolicy
	limiter    *DomainLimiter
	store      Store
	logger     *slog.Logger

	maxDepth      int
	maxPages      int
	maxDuration   time.Duration
	concurrency   int
	emissionFloor float64

	frontierSize int
	perDomainCap int
	roundRobin   bool
	keepPages    bool

	urlFilter   func(rawURL string) bool
	domainRates map[string]float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink sets the output sink for emitted records.
func WithSink(sink Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithClassifier replaces the default page classifier.
func WithClassifier(c *heuristics.Classifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithNormalizer replaces the default link normalizer.
func WithNormalizer(n *urlutil.Normalizer) Option {
	return func(e *Engine) { e.normalizer = n }
}

// WithRobots enables robots.txt compliance through the given policy.
func WithRobots(policy RobotsPolicy) Option {
	return func(e *Engine) { e.robots = policy }
}

// WithRateLimit enables per-domain rate limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(e *Engine) { e.limiter = NewDomainLimiter(rps, burst) }
}

// WithStore persists pages and summaries to the given store.
func WithStore(store Store) Option {
	return func(e *Engine) { e.store = store }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMaxDepth sets the discovery depth limit.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) { e.maxDepth = depth }
}

// WithMaxPages sets the page-fetch budget.
func WithMaxPages(pages int) Option {
	return func(e *Engine) { e.maxPages = pages }
}

// WithMaxDuration sets the wall-clock budget for a run.
func WithMaxDuration(d time.Duration) Option {
	return func(e *Engine) { e.maxDuration = d }
}

// WithConcurrency sets how many fetches may be in flight.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithEmissionFloor sets the minimum extraction probability for emission.
func WithEmissionFloor(p float64) Option {
	return func(e *Engine) { e.emissionFloor = p }
}

// WithFrontierSize sets the frontier's total size cap.
func WithFrontierSize(n int) Option {
	return func(e *Engine) { e.frontierSize = n }
}

// WithPerDomainCap sets the frontier's per-domain admission cap.
func WithPerDomainCap(n int) Option {
	return func(e *Engine) { e.perDomainCap = n }
}

// WithDomainRoundRobin alternates domains on dequeue.
func WithDomainRoundRobin() Option {
	return func(e *Engine) { e.roundRobin = true }
}

// WithKeepPages retains every classified PageRecord on the run summary.
// Off by default: large crawls should not hold every body in memory.
func WithKeepPages() Option {
	return func(e *Engine) { e.keepPages = true }
}

// WithURLFilter drops discovered links for which filter returns false.
// Seeds bypass the filter: the user asked for them explicitly.
func WithURLFilter(filter func(rawURL string) bool) Option {
	return func(e *Engine) { e.urlFilter = filter }
}

// WithDomainRates overrides the per-domain request rate for specific
// registrable domains. Requires WithRateLimit for domains not listed;
// without it, unlisted domains are unthrottled.
func WithDomainRates(rates map[string]float64) Option {
	return func(e *Engine) { e.domainRates = rates }
}

// New creates an Engine with the given fetcher and strategy mode.
func New(fetcher Fetcher, mode model.CrawlStrategyMode, opts ...Option) *Engine {
	e := &Engine{
		fetcher:       fetcher,
		selector:      strategy.NewSelector(mode),
		maxDepth:      DefaultMaxDepth,
		maxPages:      DefaultMaxPages,
		concurrency:   DefaultConcurrency,
		emissionFloor: DefaultEmissionFloor,
		frontierSize:  frontier.DefaultMaxSize,
		perDomainCap:  frontier.DefaultPerDomainCap,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.classifier == nil {
		e.classifier = heuristics.NewClassifier()
	}
	if e.normalizer == nil {
		e.normalizer = urlutil.NewNormalizer()
	}
	if e.robots == nil {
		e.robots = allowAll{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if len(e.domainRates) > 0 {
		if e.limiter == nil {
			e.limiter = NewDomainLimiter(0, 1)
		}
		for domain, rps := range e.domainRates {
			e.limiter.SetRate(domain, rps)
		}
	}
	return e
}

// runState is the mutable state of one crawl run, owned by Run and passed
// explicitly to the workers. Visited and Frontier serialize internally;
// the summary has its own mutex. Nothing here outlives the run.
type runState struct {
	visited  *frontier.Visited
	frontier *frontier.Frontier
	allowed  map[string]struct{}

	mu      sync.Mutex
	summary *model.RunSummary
}

// Run crawls from the given seed URLs until the frontier drains or a
// budget expires. It returns the run summary; the only error conditions
// are unusable seeds and store failures at summary time - per-page
// trouble never fails a run.
func (e *Engine) Run(ctx context.Context, seeds []string) (*model.RunSummary, error) {
	if e.maxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.maxDuration)
		defer cancel()
	}

	rs := &runState{
		visited: frontier.NewVisited(),
		frontier: frontier.New(
			frontier.WithBudget(e.maxPages),
			frontier.WithMaxSize(e.frontierSize),
			frontier.WithPerDomainCap(e.perDomainCap),
			frontier.WithLogger(e.logger),
			func() frontier.Option {
				if e.roundRobin {
					return frontier.WithDomainRoundRobin()
				}
				return func(*frontier.Frontier) {}
			}(),
		),
		allowed: make(map[string]struct{}),
		summary: &model.RunSummary{
			RunID:        uuid.NewString(),
			Strategy:     e.selector.Mode(),
			StrategyName: e.selector.Mode().String(),
			StartTime:    time.Now(),
			PagesByType:  make(map[string]int),
		},
	}

	if err := e.enqueueSeeds(rs, seeds); err != nil {
		return nil, err
	}

	e.logger.Info("crawl run starting",
		"run_id", rs.summary.RunID,
		"strategy", rs.summary.StrategyName,
		"seeds", len(rs.summary.Seeds),
		"max_depth", e.maxDepth,
		"max_pages", e.maxPages,
	)

	e.dispatch(ctx, rs)

	rs.summary.EndTime = time.Now()
	overflow, _ := rs.frontier.Stats()
	rs.summary.OverflowDropped = overflow
	rs.summary.TerminationReason = e.terminationReason(ctx, rs)

	e.logger.Info("crawl run finished",
		"run_id", rs.summary.RunID,
		"pages_fetched", rs.summary.PagesFetched,
		"pages_emitted", rs.summary.PagesEmitted,
		"duration", rs.summary.Duration().Round(time.Millisecond),
		"reason", rs.summary.TerminationReason,
	)

	if e.store != nil {
		if err := e.store.SaveRun(context.WithoutCancel(ctx), rs.summary); err != nil {
			return rs.summary, err
		}
	}
	return rs.summary, nil
}

// enqueueSeeds normalizes and admits the seed URLs. Invalid seeds are
// dropped with a warning; a run with zero valid seeds is refused.
func (e *Engine) enqueueSeeds(rs *runState, seeds []string) error {
	var batch []*model.CrawlRequest
	for _, seed := range seeds {
		canonical, err := e.normalizer.Normalize(seed, "")
		if err != nil {
			e.logger.Warn("ignoring invalid seed URL", "url", seed, "error", err)
			continue
		}
		if !rs.visited.MarkIfNew(canonical) {
			continue
		}
		domain := urlutil.RegistrableDomain(canonical)
		rs.allowed[domain] = struct{}{}
		rs.summary.Seeds = append(rs.summary.Seeds, canonical)
		batch = append(batch, &model.CrawlRequest{
			URL:          canonical,
			Depth:        0,
			OriginDomain: domain,
			Priority:     model.NextPagePriority,
		})
	}
	if len(batch) == 0 {
		return ErrNoSeeds
	}
	accepted := rs.frontier.Enqueue(batch)
	rs.summary.RequestsEnqueued += accepted
	return nil
}

// dispatch runs the dequeue loop, handing requests to at most concurrency
// workers. It exits when the frontier reports empty with no work in
// flight, or when the context is done.
func (e *Engine) dispatch(ctx context.Context, rs *runState) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	var inflight atomic.Int64
	wake := make(chan struct{}, 1)

	for {
		if gctx.Err() != nil {
			break
		}

		req, ok := rs.frontier.DequeueNext()
		if !ok {
			if inflight.Load() == 0 {
				break
			}
			select {
			case <-wake:
			case <-gctx.Done():
			}
			continue
		}

		inflight.Add(1)
		g.Go(func() error {
			defer func() {
				inflight.Add(-1)
				select {
				case wake <- struct{}{}:
				default:
				}
			}()
			e.process(gctx, rs, req)
			return nil
		})
	}

	_ = g.Wait() // Workers never return errors; failures are per-page.
}

// process handles one dequeued request end to end.
func (e *Engine) process(ctx context.Context, rs *runState, req *model.CrawlRequest) {
	// Depth is enforced at admission; this guards invariant violations.
	if req.Depth > e.maxDepth {
		return
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, req.OriginDomain); err != nil {
			return
		}
	}

	result, err := e.fetcher.Fetch(ctx, req)
	if err != nil {
		rs.mu.Lock()
		rs.summary.FetchErrors++
		rs.mu.Unlock()
		e.logger.Warn("fetch failed, skipping page", "url", req.URL, "error", err)
		return
	}

	record := &model.PageRecord{
		URL:          req.URL,
		FetchTime:    time.Now(),
		StatusCode:   result.StatusCode,
		ContentType:  result.ContentType,
		Depth:        req.Depth,
		OriginDomain: req.OriginDomain,
		Raw:          result.Body,
	}
	record.ComputeHash()

	var links []heuristics.Link
	verdict, err := e.classifier.Classify(req.URL, result.Body, result.ItemProbability)
	if err != nil {
		// A single bad page must never abort the run: mark unknown with
		// confidence zero and keep going.
		e.logger.Warn("classification failed, treating page as unknown", "url", req.URL, "error", err)
		record.Classification = model.PageTypeUnknown
		record.Confidence = 0
	} else {
		record.Classification = verdict.Type
		record.Confidence = verdict.Confidence
		record.Title = verdict.Title
		links = verdict.Links
	}

	decision := e.selector.Decide(record.Classification, record.Confidence, links)

	if decision.Emit {
		e.emit(ctx, rs, record, result.ItemProbability)
	}
	if decision.PaginationSuppressed {
		e.logger.Info("ignoring pagination link: no item links found on page", "url", req.URL)
	}

	accepted := e.admitCandidates(ctx, rs, req, decision.Follow)

	rs.mu.Lock()
	rs.summary.PagesFetched++
	rs.summary.PagesByType[record.Classification.String()]++
	if e.keepPages {
		rs.summary.Pages = append(rs.summary.Pages, record)
	}
	rs.mu.Unlock()

	if e.store != nil {
		if err := e.store.SavePage(ctx, rs.summary.RunID, record); err != nil {
			e.logger.Warn("failed to persist page", "url", req.URL, "error", err)
		}
	}

	logPageDecision(e.logger, record, decision, accepted)
}

// emit hands a record to the sink, applying the emission floor when the
// fetch carried an extraction probability.
func (e *Engine) emit(ctx context.Context, rs *runState, record *model.PageRecord, prob *float64) {
	if prob != nil && *prob < e.emissionFloor {
		rs.mu.Lock()
		rs.summary.LowProbabilityDropped++
		rs.mu.Unlock()
		e.logger.Info("dropping item below probability floor",
			"url", record.URL,
			"probability", *prob,
			"floor", e.emissionFloor,
		)
		return
	}

	if e.sink != nil {
		if err := e.sink.Emit(ctx, record); err != nil {
			e.logger.Warn("sink rejected record", "url", record.URL, "error", err)
			return
		}
	}
	rs.mu.Lock()
	rs.summary.PagesEmitted++
	rs.mu.Unlock()
}

// admitCandidates normalizes, scopes, and dedupes the selector's accepted
// links, then enqueues the survivors. Returns how many entered the
// frontier.
func (e *Engine) admitCandidates(ctx context.Context, rs *runState, parent *model.CrawlRequest, candidates []strategy.Candidate) int {
	if len(candidates) == 0 {
		return 0
	}

	var batch []*model.CrawlRequest
	var depthDropped, duplicates int
	for _, c := range candidates {
		canonical, err := e.normalizer.Normalize(c.Link.URL, parent.URL)
		if err != nil {
			e.logger.Debug("dropping invalid link", "href", c.Link.URL, "page", parent.URL, "error", err)
			continue
		}

		domain := urlutil.RegistrableDomain(canonical)
		if _, ok := rs.allowed[domain]; !ok {
			continue
		}

		if e.urlFilter != nil && !e.urlFilter(canonical) {
			e.logger.Debug("dropping link excluded by URL filter", "url", canonical)
			continue
		}

		if parent.Depth+1 > e.maxDepth {
			depthDropped++
			continue
		}

		if !e.robots.Allowed(ctx, canonical) {
			e.logger.Debug("dropping link disallowed by robots.txt", "url", canonical)
			continue
		}

		if !rs.visited.MarkIfNew(canonical) {
			duplicates++
			continue
		}

		batch = append(batch, &model.CrawlRequest{
			URL:            canonical,
			Depth:          parent.Depth + 1,
			OriginDomain:   domain,
			Priority:       c.Priority,
			LinkText:       c.Link.Text,
			DiscoveredFrom: parent,
		})
	}

	accepted := rs.frontier.Enqueue(batch)

	rs.mu.Lock()
	rs.summary.RequestsEnqueued += accepted
	rs.summary.DepthDropped += depthDropped
	rs.summary.DuplicatesSkipped += duplicates
	rs.mu.Unlock()
	return accepted
}

// terminationReason names why the run reached the terminal state.
func (e *Engine) terminationReason(ctx context.Context, rs *runState) string {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return "time-budget"
	case ctx.Err() != nil:
		return "cancelled"
	case rs.frontier.BudgetExhausted():
		return "page-budget"
	default:
		return "frontier-empty"
	}
}
