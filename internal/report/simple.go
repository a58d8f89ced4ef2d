package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/spiderkit/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables the per-page listing in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output including the per-page listing.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// titleCaser renders page-type labels as headings ("item" -> "Item").
var titleCaser = cases.Title(language.English)

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCounters(&sb, summary)
	w.writePageTypes(&sb, summary)
	w.writeDrops(&sb, summary)
	if w.verbose {
		w.writePages(&sb, summary)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         SPIDERKIT CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Run ID:     %s\n", summary.RunID))
	sb.WriteString(fmt.Sprintf("Strategy:   %s\n", summary.StrategyName))
	sb.WriteString(fmt.Sprintf("Seeds:      %s\n", strings.Join(summary.Seeds, ", ")))
	sb.WriteString(fmt.Sprintf("Started:    %s\n", summary.StartTime.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", summary.Duration().Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Finished:   %s\n", terminationText(summary)))
	sb.WriteString("\n")
}

// terminationText renders the termination reason for humans.
func terminationText(summary *model.RunSummary) string {
	switch summary.TerminationReason {
	case "frontier-empty":
		return "complete (no URLs left to crawl)"
	case "page-budget":
		return "page budget reached (partial results)"
	case "time-budget":
		return "time budget reached (partial results)"
	case "cancelled":
		return "cancelled (partial results)"
	default:
		return summary.TerminationReason
	}
}

// writeCounters writes the headline counters section.
func (w *SimpleWriter) writeCounters(sb *strings.Builder, summary *model.RunSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages fetched:      %d\n", summary.PagesFetched))
	sb.WriteString(fmt.Sprintf("  Pages emitted:      %d\n", summary.PagesEmitted))
	sb.WriteString(fmt.Sprintf("  Requests enqueued:  %d\n", summary.RequestsEnqueued))
	sb.WriteString(fmt.Sprintf("  Fetch errors:       %d\n", summary.FetchErrors))
	sb.WriteString("\n")
}

// writePageTypes writes the page-type distribution section.
func (w *SimpleWriter) writePageTypes(sb *strings.Builder, summary *model.RunSummary) {
	if len(summary.PagesByType) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGE TYPES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.PagesByType) == 0 {
		sb.WriteString("  No pages classified\n")
	} else {
		for _, name := range sortedTypeNames(summary.PagesByType) {
			sb.WriteString(fmt.Sprintf("  %-12s %d\n", titleCaser.String(name)+":", summary.PagesByType[name]))
		}
	}
	sb.WriteString("\n")
}

// writeDrops writes the dropped-request accounting section.
func (w *SimpleWriter) writeDrops(sb *strings.Builder, summary *model.RunSummary) {
	total := summary.DuplicatesSkipped + summary.DepthDropped +
		summary.OverflowDropped + summary.LowProbabilityDropped
	if total == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DROPPED REQUESTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Duplicates:         %d\n", summary.DuplicatesSkipped))
	sb.WriteString(fmt.Sprintf("  Over depth limit:   %d\n", summary.DepthDropped))
	sb.WriteString(fmt.Sprintf("  Frontier overflow:  %d\n", summary.OverflowDropped))
	sb.WriteString(fmt.Sprintf("  Low probability:    %d\n", summary.LowProbabilityDropped))
	sb.WriteString("\n")
}

// writePages writes the per-page listing.
func (w *SimpleWriter) writePages(sb *strings.Builder, summary *model.RunSummary) {
	if len(summary.Pages) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, page := range summary.Pages {
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", page.Classification.String(), page.URL))
		sb.WriteString(fmt.Sprintf("      depth=%d confidence=%.2f status=%d\n",
			page.Depth, page.Confidence, page.StatusCode))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by spiderkit\n")
	sb.WriteString("https://github.com/nao1215/spiderkit\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// sortedTypeNames returns the page-type labels in stable order.
func sortedTypeNames(byType map[string]int) []string {
	names := make([]string, 0, len(byType))
	for name := range byType {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
