package model

// PageType is the classifier's label for a fetched page's role in the crawl.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and map keys. The String() method provides
// human-readable output for logs and reports.
type PageType int

const (
	// PageTypeUnknown indicates the classifier could not determine the page's
	// role with sufficient confidence. Unknown pages are routed conservatively
	// by the strategy selector rather than guessed at.
	PageTypeUnknown PageType = iota

	// PageTypeNavigation indicates a listing or category page whose main
	// purpose is linking to further pages (category pages, index pages,
	// paginated listings).
	PageTypeNavigation

	// PageTypeItem indicates a target content page holding a single
	// extractable record (a product detail page, a job posting, an article).
	PageTypeItem

	// PageTypeMixed indicates a page carrying both item content and
	// substantial navigation, such as a product page with a large
	// related-items section.
	PageTypeMixed
)

// String returns a human-readable representation of the page type.
func (p PageType) String() string {
	switch p {
	case PageTypeNavigation:
		return "navigation"
	case PageTypeItem:
		return "item"
	case PageTypeMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the defined page types.
func (p PageType) Valid() bool {
	switch p {
	case PageTypeUnknown, PageTypeNavigation, PageTypeItem, PageTypeMixed:
		return true
	default:
		return false
	}
}

// PageTypes lists all defined page types in display order.
// Used by reports to iterate deterministically.
func PageTypes() []PageType {
	return []PageType{PageTypeNavigation, PageTypeItem, PageTypeMixed, PageTypeUnknown}
}
