package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/spiderkit/internal/model"
)

// MarkdownWriter outputs run summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// maxPageRows caps the per-page table so a large crawl doesn't
	// produce an unreadable document.
	maxPageRows int
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMaxPageRows sets the cap on the per-page table.
func WithMaxPageRows(n int) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.maxPageRows = n
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter:  newBaseWriter(output),
		maxPageRows: 50,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounters(md, summary)
	w.writePageTypes(md, summary)
	w.writePages(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.RunSummary) {
	md.H1("Spiderkit Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + summary.RunID + "`"},
			{"Strategy", summary.StrategyName},
			{"Seeds", "`" + strings.Join(summary.Seeds, "`, `") + "`"},
			{"Started", summary.StartTime.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration().Round(time.Millisecond).String()},
			{"Finished", w.getStatusText(summary)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on how the run ended.
func (w *MarkdownWriter) getStatusText(summary *model.RunSummary) string {
	switch summary.TerminationReason {
	case "frontier-empty":
		return "✅ Complete"
	case "page-budget":
		return "⚠️ Page budget reached (partial results)"
	case "time-budget":
		return "⚠️ Time budget reached (partial results)"
	case "cancelled":
		return "❌ Cancelled (partial results)"
	default:
		return summary.TerminationReason
	}
}

// writeCounters writes the headline counters and drop accounting.
func (w *MarkdownWriter) writeCounters(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Pages fetched", strconv.Itoa(summary.PagesFetched)},
			{"Pages emitted", strconv.Itoa(summary.PagesEmitted)},
			{"Requests enqueued", strconv.Itoa(summary.RequestsEnqueued)},
			{"Duplicates skipped", strconv.Itoa(summary.DuplicatesSkipped)},
			{"Over depth limit", strconv.Itoa(summary.DepthDropped)},
			{"Frontier overflow", strconv.Itoa(summary.OverflowDropped)},
			{"Low probability", strconv.Itoa(summary.LowProbabilityDropped)},
			{"Fetch errors", strconv.Itoa(summary.FetchErrors)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, summary)
}

// writeAlert writes an alert when the run lost work it was asked to do.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.RunSummary) {
	switch {
	case summary.OverflowDropped > 0:
		md.Warningf(
			"The frontier overflowed and dropped %d request(s). Results are incomplete; raise the frontier size or lower the crawl scope.",
			summary.OverflowDropped,
		)
	case summary.FetchErrors > 0:
		md.Importantf(
			"%d page(s) failed to fetch and were skipped.",
			summary.FetchErrors,
		)
	case summary.TerminationReason != "frontier-empty":
		md.Note("The crawl stopped before the frontier drained; results are partial.")
	default:
		md.Tip("The crawl completed with the whole reachable site visited.")
	}
	md.PlainText("")
}

// writePageTypes writes the page-type distribution with a pie chart.
func (w *MarkdownWriter) writePageTypes(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Page Types")
	md.PlainText("")

	if len(summary.PagesByType) == 0 {
		md.PlainText("No pages classified.")
		md.PlainText("")
		return
	}

	names := sortedTypeNames(summary.PagesByType)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{titleCaser.String(name), strconv.Itoa(summary.PagesByType[name])})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Type", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Type Distribution"),
		piechart.WithShowData(true),
	)
	for _, name := range names {
		if n := summary.PagesByType[name]; n > 0 {
			chart.LabelAndIntValue(titleCaser.String(name), uint64(n))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writePages writes the per-page table when records were retained.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, summary *model.RunSummary) {
	if len(summary.Pages) == 0 {
		return
	}

	md.H2("Pages")
	md.PlainText("")

	pages := summary.Pages
	truncated := false
	if w.maxPageRows > 0 && len(pages) > w.maxPageRows {
		pages = pages[:w.maxPageRows]
		truncated = true
	}

	rows := make([][]string, len(pages))
	for i, p := range pages {
		title := p.Title
		if title == "" {
			title = "-"
		}
		rows[i] = []string{
			"`" + truncateString(p.URL, 60) + "`",
			p.Classification.String(),
			strconv.FormatFloat(p.Confidence, 'f', 2, 64),
			strconv.Itoa(p.Depth),
			truncateString(title, 40),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Type", "Confidence", "Depth", "Title"},
		Rows:   rows,
	})
	md.PlainText("")

	if truncated {
		md.PlainTextf("*Showing the first %d of %d pages.*", w.maxPageRows, len(summary.Pages))
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [spiderkit](https://github.com/nao1215/spiderkit)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
