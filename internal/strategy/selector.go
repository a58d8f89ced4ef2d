package strategy

import (
	"github.com/nao1215/spiderkit/internal/heuristics"
	"github.com/nao1215/spiderkit/internal/model"
)

// State is a request's position in the crawl lifecycle.
type State int

const (
	// StateSeed is a request that entered the crawl as a seed.
	StateSeed State = iota

	// StateNavigation is a page routed as navigation: its links feed the
	// frontier, its content is not emitted.
	StateNavigation

	// StateItem is a page routed as an item: emitted for extraction.
	StateItem

	// StateTerminal marks the end of a lineage: nothing followed, nothing
	// emitted.
	StateTerminal
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateSeed:
		return "seed"
	case StateNavigation:
		return "navigation"
	case StateItem:
		return "item"
	default:
		return "terminal"
	}
}

// CandidateKind labels why a link was accepted, which fixes its priority.
type CandidateKind int

const (
	// KindNavigation is a category or otherwise general in-scope link.
	KindNavigation CandidateKind = iota

	// KindItem is a link whose URL shape resembles a single item page.
	KindItem

	// KindPagination is a next-page style link.
	KindPagination
)

// String returns the kind name for logs.
func (k CandidateKind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindPagination:
		return "pagination"
	default:
		return "navigation"
	}
}

// Candidate is an outbound link the selector accepted for the frontier,
// with the priority the frontier should order it by.
type Candidate struct {
	Link     heuristics.Link
	Kind     CandidateKind
	Priority int
}

// Decision is the outcome of routing one classified page.
type Decision struct {
	// Emit reports whether the page is handed to the output sink.
	Emit bool

	// Follow lists the links accepted for enqueueing, in page order.
	Follow []Candidate

	// NextState is the state the page's lineage moved to, for logging.
	NextState State

	// PaginationSuppressed reports that a pagination link was present but
	// dropped because the page yielded no item-like links.
	PaginationSuppressed bool
}

// Selector maps (page type, strategy mode) to follow/emit decisions.
//
// Design decision: The transition table lives in code rather than in a
// declarative table structure because two of the cells (pagination
// filtering, next-page suppression) are conditional on the page's links,
// not just on the two enums, and a data table would need escape hatches
// for exactly those cells.
type Selector struct {
	mode model.CrawlStrategyMode
}

// NewSelector creates a Selector for the given run-wide strategy mode.
func NewSelector(mode model.CrawlStrategyMode) *Selector {
	return &Selector{mode: mode}
}

// Mode returns the configured strategy mode.
func (s *Selector) Mode() model.CrawlStrategyMode {
	return s.mode
}

// Decide routes one classified page. pageType and confidence come from the
// classifier; links are the page's outbound links in document order.
// Decide never mutates shared state and never fails: a page that fits no
// rule simply terminates its lineage.
func (s *Selector) Decide(pageType model.PageType, confidence float64, links []heuristics.Link) Decision {
	switch s.mode {
	case model.StrategyFull:
		return s.decideFull(pageType, confidence, links)
	case model.StrategyNavigationOnly:
		return s.decideNavigationOnly(pageType, confidence, links)
	case model.StrategyItemsOnly:
		return s.decideItemsOnly(pageType)
	case model.StrategyPaginationOnly:
		return s.decidePaginationOnly(pageType, confidence, links)
	default:
		return Decision{NextState: StateTerminal}
	}
}

// decideFull follows everything; items are also emitted. Unknown pages are
// treated conservatively as navigation so a misclassified category page
// cannot sever a whole branch of the site.
func (s *Selector) decideFull(pageType model.PageType, confidence float64, links []heuristics.Link) Decision {
	switch pageType {
	case model.PageTypeItem:
		return Decision{
			Emit:      true,
			Follow:    s.candidates(links, confidence, nil),
			NextState: StateItem,
		}
	case model.PageTypeMixed:
		return Decision{
			Emit:      true,
			Follow:    s.candidates(links, confidence, nil),
			NextState: StateItem,
		}
	default: // Navigation and Unknown
		return Decision{
			Follow:    s.candidates(links, confidence, nil),
			NextState: StateNavigation,
		}
	}
}

// decideNavigationOnly follows like full but never emits.
func (s *Selector) decideNavigationOnly(pageType model.PageType, confidence float64, links []heuristics.Link) Decision {
	if pageType == model.PageTypeItem {
		// Item pages are leaves here: not emitted, not followed.
		return Decision{NextState: StateTerminal}
	}
	return Decision{
		Follow:    s.candidates(links, confidence, nil),
		NextState: StateNavigation,
	}
}

// decideItemsOnly emits items and follows nothing at all.
func (s *Selector) decideItemsOnly(pageType model.PageType) Decision {
	switch pageType {
	case model.PageTypeItem, model.PageTypeMixed:
		return Decision{Emit: true, NextState: StateItem}
	default:
		return Decision{NextState: StateTerminal}
	}
}

// decidePaginationOnly follows only pagination links. Items are emitted.
// A pagination link on a navigation page that produced no item-like links
// is suppressed: paging deeper into a listing that resolves to nothing
// just burns budget.
func (s *Selector) decidePaginationOnly(pageType model.PageType, confidence float64, links []heuristics.Link) Decision {
	paginationOnly := func(link heuristics.Link) bool {
		return heuristics.IsPaginationLink(link.URL, link.Text, link.Rel)
	}

	switch pageType {
	case model.PageTypeItem, model.PageTypeMixed:
		return Decision{
			Emit:      true,
			Follow:    s.candidates(links, confidence, paginationOnly),
			NextState: StateItem,
		}
	case model.PageTypeNavigation:
		decision := Decision{
			Follow:    s.candidates(links, confidence, paginationOnly),
			NextState: StateNavigation,
		}
		if len(decision.Follow) > 0 && !hasItemLink(links) {
			decision.Follow = nil
			decision.PaginationSuppressed = true
		}
		return decision
	default:
		return Decision{NextState: StateTerminal}
	}
}

// candidates converts links into prioritized candidates, applying an
// optional filter. Item-shaped links outrank pagination, which outranks
// plain navigation, mirroring the upstream priority scheme where priority
// is 100*probability plus the next-page constant for items.
func (s *Selector) candidates(links []heuristics.Link, confidence float64, filter func(heuristics.Link) bool) []Candidate {
	confidencePriority := int(100 * confidence)

	out := make([]Candidate, 0, len(links))
	for _, link := range links {
		if filter != nil && !filter(link) {
			continue
		}
		c := Candidate{Link: link}
		switch {
		case heuristics.LooksLikeItemURL(link.URL):
			c.Kind = KindItem
			c.Priority = model.NextPagePriority + confidencePriority
		case heuristics.IsPaginationLink(link.URL, link.Text, link.Rel):
			c.Kind = KindPagination
			c.Priority = model.NextPagePriority
		default:
			c.Kind = KindNavigation
			c.Priority = confidencePriority
		}
		out = append(out, c)
	}
	return out
}

// hasItemLink reports whether any link's URL shape resembles an item page.
func hasItemLink(links []heuristics.Link) bool {
	for _, link := range links {
		if heuristics.LooksLikeItemURL(link.URL) {
			return true
		}
	}
	return false
}
