// Package database provides SQLite-based persistence for crawl runs.
// It stores per-page fetch records and whole-run summaries so repeated
// crawls of the same site can be compared over time.
package database
