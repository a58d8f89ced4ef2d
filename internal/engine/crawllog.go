package engine

import (
	"log/slog"

	"github.com/nao1215/spiderkit/internal/model"
	"github.com/nao1215/spiderkit/internal/strategy"
	"github.com/nao1215/spiderkit/internal/urlutil"
)

// logPageDecision writes the per-page crawl log: what the page was parsed
// as and how many requests of each kind it planned. This is the primary
// tool for debugging crawl behavior after the fact, so it logs at info
// and groups counts by candidate kind the way operators grep for them.
func logPageDecision(logger *slog.Logger, record *model.PageRecord, decision strategy.Decision, accepted int) {
	counts := map[string]int{
		"item":       0,
		"pagination": 0,
		"navigation": 0,
	}
	for _, c := range decision.Follow {
		counts[c.Kind.String()]++
	}

	logger.Info("crawl decision",
		"url", record.URL,
		"fingerprint", urlutil.Fingerprint(record.URL),
		"page_type", record.Classification.String(),
		"confidence", record.Confidence,
		"depth", record.Depth,
		"emit", decision.Emit,
		"planned_item", counts["item"],
		"planned_pagination", counts["pagination"],
		"planned_navigation", counts["navigation"],
		"accepted", accepted,
		"pagination_suppressed", decision.PaginationSuppressed,
	)
}
