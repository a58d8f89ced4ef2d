package model

import "time"

// RunSummary aggregates a finished crawl run for reporting and persistence.
type RunSummary struct {
	// RunID uniquely identifies the run. Assigned by the engine at start.
	RunID string `json:"run_id"`

	// Seeds are the canonical seed URLs the run started from.
	Seeds []string `json:"seeds"`

	// Strategy is the crawl strategy mode the run used.
	Strategy CrawlStrategyMode `json:"-"`

	// StrategyName is the string form of Strategy for JSON output.
	StrategyName string `json:"strategy"`

	// StartTime and EndTime bound the run.
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// PagesFetched counts pages that completed fetch and classification.
	PagesFetched int `json:"pages_fetched"`

	// PagesEmitted counts records handed to the output sink for extraction.
	PagesEmitted int `json:"pages_emitted"`

	// PagesByType breaks PagesFetched down by page-type label.
	PagesByType map[string]int `json:"pages_by_type"`

	// RequestsEnqueued counts candidates accepted into the frontier,
	// seeds included.
	RequestsEnqueued int `json:"requests_enqueued"`

	// DuplicatesSkipped counts candidates rejected by the visited set.
	DuplicatesSkipped int `json:"duplicates_skipped"`

	// DepthDropped counts requests dropped for exceeding the depth limit.
	DepthDropped int `json:"depth_dropped"`

	// OverflowDropped counts requests evicted on frontier overflow.
	OverflowDropped int `json:"overflow_dropped"`

	// LowProbabilityDropped counts item pages suppressed because their
	// probability fell below the emission floor.
	LowProbabilityDropped int `json:"low_probability_dropped"`

	// FetchErrors counts fetches that failed and were skipped.
	FetchErrors int `json:"fetch_errors"`

	// TerminationReason records why the run reached the terminal state:
	// "frontier-empty", "page-budget", "time-budget", or "cancelled".
	TerminationReason string `json:"termination_reason"`

	// Pages holds the classified page records in fetch order.
	Pages []*PageRecord `json:"pages,omitempty"`
}

// Duration returns the wall-clock length of the run.
func (s *RunSummary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
