package model

import "fmt"

// CrawlStrategyMode is the run-wide policy governing which page types are
// followed versus emitted for extraction. It is fixed for the lifetime of
// a crawl run.
type CrawlStrategyMode int

const (
	// StrategyFull follows most links within the seed domains in an attempt
	// to discover and extract as many items as possible. Unknown pages are
	// treated conservatively as navigation.
	StrategyFull CrawlStrategyMode = iota

	// StrategyNavigationOnly follows navigation links but never emits
	// records for extraction. Useful for mapping site structure.
	StrategyNavigationOnly

	// StrategyItemsOnly emits item pages for extraction but never follows
	// links. Useful when the seed list already enumerates the target pages.
	StrategyItemsOnly

	// StrategyPaginationOnly follows only pagination links from navigation
	// pages and emits item pages. Use this when category links are
	// misidentified and lead the crawl astray.
	StrategyPaginationOnly
)

// String returns the mode's configuration-file spelling.
func (m CrawlStrategyMode) String() string {
	switch m {
	case StrategyFull:
		return "full"
	case StrategyNavigationOnly:
		return "navigation_only"
	case StrategyItemsOnly:
		return "items_only"
	case StrategyPaginationOnly:
		return "pagination_only"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Valid reports whether m is one of the defined strategy modes.
func (m CrawlStrategyMode) Valid() bool {
	switch m {
	case StrategyFull, StrategyNavigationOnly, StrategyItemsOnly, StrategyPaginationOnly:
		return true
	default:
		return false
	}
}

// ParseStrategyMode converts a configuration string into a CrawlStrategyMode.
// It accepts the spellings produced by String().
func ParseStrategyMode(s string) (CrawlStrategyMode, error) {
	switch s {
	case "full":
		return StrategyFull, nil
	case "navigation_only", "navigation":
		return StrategyNavigationOnly, nil
	case "items_only", "items":
		return StrategyItemsOnly, nil
	case "pagination_only", "pagination":
		return StrategyPaginationOnly, nil
	default:
		return StrategyFull, fmt.Errorf("unknown crawl strategy %q (want full, navigation_only, items_only, or pagination_only)", s)
	}
}
