// Package report renders crawl run summaries in human-readable text,
// JSON, and GitHub-flavored Markdown formats.
package report
