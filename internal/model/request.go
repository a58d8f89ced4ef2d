package model

// CrawlRequest is a unit of pending work in the frontier: a canonical URL
// to fetch, plus the bookkeeping the scheduler and strategy selector need.
//
// Design decision: DiscoveredFrom is a back-reference only. Requests do not
// own their ancestors; the chain exists so logs and reports can show how a
// URL was reached, and it is dropped when a request is persisted.
type CrawlRequest struct {
	// URL is the canonical URL to fetch. It must already have passed
	// through urlutil.Normalize; the frontier keys on it verbatim.
	URL string `json:"url"`

	// Depth is the number of discovery hops from the seed. Seeds are
	// depth 0. Depth never decreases along a discovery chain.
	Depth int `json:"depth"`

	// OriginDomain is the registrable domain of the seed that led to this
	// request. Used for per-domain caps and round-robin scheduling.
	OriginDomain string `json:"origin_domain"`

	// Priority orders dequeueing. Higher values are fetched first.
	// Navigation candidates get floor(100*probability); item candidates
	// get the same plus NextPagePriority so items outrank navigation.
	Priority int `json:"priority"`

	// LinkText is the anchor text the URL was discovered under, if any.
	// Consumed by pagination and classification heuristics.
	LinkText string `json:"link_text,omitempty"`

	// DiscoveredFrom points at the request whose page produced this link.
	// Nil for seeds.
	DiscoveredFrom *CrawlRequest `json:"-"`
}

// NextPagePriority is the priority boost for pagination links and the
// base offset for item requests. Matching the item offset to the
// pagination priority guarantees items are always fetched before the
// navigation pages that would discover more of them.
const NextPagePriority = 100

// IsSeed reports whether the request entered the crawl as a seed rather
// than through link discovery.
func (r *CrawlRequest) IsSeed() bool {
	return r.DiscoveredFrom == nil && r.Depth == 0
}
