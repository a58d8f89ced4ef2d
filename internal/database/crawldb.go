package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/spiderkit/internal/model"
)

// CrawlDB provides SQLite-based storage for crawl runs and page records.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all runs rather than
// one file per run. This simplifies cross-run queries ("how did this site's
// page mix change since last week") and backup/restore operations.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified path.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, "spiderkit.db")

	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string.
	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool.
	// SQLite doesn't benefit from multiple connections for writes.
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Page records store individual page fetches per run
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		url TEXT NOT NULL,
		domain TEXT NOT NULL,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		page_type TEXT NOT NULL,
		confidence REAL,
		depth INTEGER,
		raw_hash TEXT,
		UNIQUE(url, run_id)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	CREATE INDEX IF NOT EXISTS idx_pages_domain ON pages(domain);
	CREATE INDEX IF NOT EXISTS idx_pages_type ON pages(page_type);

	-- Runs store complete run summaries as JSON plus query columns
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		strategy TEXT NOT NULL,
		started_at DATETIME,
		finished_at DATETIME,
		pages_fetched INTEGER,
		pages_emitted INTEGER,
		termination_reason TEXT,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_strategy ON runs(strategy);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SavePage inserts or updates a page record for the given run.
// Uses UPSERT to handle duplicates (same URL + run), which can happen when
// a run is resumed against the same database.
func (cdb *CrawlDB) SavePage(ctx context.Context, runID string, record *model.PageRecord) error {
	query := `
	INSERT INTO pages (run_id, url, domain, status_code, content_type, title, page_type, confidence, depth, raw_hash)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, run_id) DO UPDATE SET
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		title = excluded.title,
		page_type = excluded.page_type,
		confidence = excluded.confidence,
		depth = excluded.depth,
		raw_hash = excluded.raw_hash,
		fetched_at = CURRENT_TIMESTAMP
	`

	_, err := cdb.db.ExecContext(ctx, query,
		runID,
		record.URL,
		record.OriginDomain,
		record.StatusCode,
		record.ContentType,
		record.Title,
		record.Classification.String(),
		record.Confidence,
		record.Depth,
		record.Hash,
	)
	if err != nil {
		return fmt.Errorf("failed to save page record: %w", err)
	}
	return nil
}

// SaveRun saves a complete run summary.
func (cdb *CrawlDB) SaveRun(ctx context.Context, summary *model.RunSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to serialize run summary: %w", err)
	}

	query := `
	INSERT INTO runs (run_id, strategy, started_at, finished_at, pages_fetched, pages_emitted, termination_reason, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		finished_at = excluded.finished_at,
		pages_fetched = excluded.pages_fetched,
		pages_emitted = excluded.pages_emitted,
		termination_reason = excluded.termination_reason,
		summary_json = excluded.summary_json
	`

	_, err = cdb.db.ExecContext(ctx, query,
		summary.RunID,
		summary.StrategyName,
		summary.StartTime.UTC().Format("2006-01-02 15:04:05"),
		summary.EndTime.UTC().Format("2006-01-02 15:04:05"),
		summary.PagesFetched,
		summary.PagesEmitted,
		summary.TerminationReason,
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run summary: %w", err)
	}
	return nil
}

// GetRun retrieves a run summary by its run ID. Returns nil without error
// when the run is unknown.
func (cdb *CrawlDB) GetRun(ctx context.Context, runID string) (*model.RunSummary, error) {
	query := `
	SELECT summary_json FROM runs
	WHERE run_id = ?
	`

	var summaryJSON string
	err := cdb.db.QueryRowContext(ctx, query, runID).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var summary model.RunSummary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse run summary: %w", err)
	}
	return &summary, nil
}

// RunMetadata contains summary information about a stored run.
// This is used for listing run history without loading the full summary.
type RunMetadata struct {
	// ID is the unique identifier of the run row in the database.
	ID int64

	// RunID is the engine-assigned run identifier.
	RunID string

	// Strategy is the crawl strategy name the run used.
	Strategy string

	// StartedAt is when the run began.
	StartedAt time.Time

	// PagesFetched and PagesEmitted are the run's headline counters.
	PagesFetched int
	PagesEmitted int

	// TerminationReason records how the run ended.
	TerminationReason string
}

// ListRuns returns metadata for the most recent runs, newest first.
// limit <= 0 lists everything.
func (cdb *CrawlDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, run_id, strategy, started_at, pages_fetched, pages_emitted, termination_reason
	FROM runs
	ORDER BY started_at DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var startedAt string
		if err := rows.Scan(
			&meta.ID,
			&meta.RunID,
			&meta.Strategy,
			&startedAt,
			&meta.PagesFetched,
			&meta.PagesEmitted,
			&meta.TerminationReason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}
		meta.StartedAt = parseTimestamp(startedAt)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// PageRow is a stored page record as read back from the database.
type PageRow struct {
	ID          int64
	RunID       string
	URL         string
	Domain      string
	FetchedAt   time.Time
	StatusCode  int
	ContentType string
	Title       string
	PageType    string
	Confidence  float64
	Depth       int
	RawHash     string
}

// GetPages retrieves every page record for a run in fetch order.
func (cdb *CrawlDB) GetPages(ctx context.Context, runID string) ([]PageRow, error) {
	query := `
	SELECT id, run_id, url, domain, fetched_at, status_code, content_type, title, page_type, confidence, depth, raw_hash
	FROM pages
	WHERE run_id = ?
	ORDER BY id
	`

	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pages: %w", err)
	}
	defer rows.Close()

	var results []PageRow
	for rows.Next() {
		var p PageRow
		var fetchedAt string
		if err := rows.Scan(
			&p.ID,
			&p.RunID,
			&p.URL,
			&p.Domain,
			&fetchedAt,
			&p.StatusCode,
			&p.ContentType,
			&p.Title,
			&p.PageType,
			&p.Confidence,
			&p.Depth,
			&p.RawHash,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		p.FetchedAt = parseTimestamp(fetchedAt)
		results = append(results, p)
	}

	return results, rows.Err()
}

// PageTypeCounts returns the page-type distribution for a run.
func (cdb *CrawlDB) PageTypeCounts(ctx context.Context, runID string) (map[string]int, error) {
	query := `
	SELECT page_type, COUNT(*) FROM pages
	WHERE run_id = ?
	GROUP BY page_type
	`

	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count page types: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var pageType string
		var n int
		if err := rows.Scan(&pageType, &n); err != nil {
			return nil, fmt.Errorf("failed to scan page type count: %w", err)
		}
		counts[pageType] = n
	}

	return counts, rows.Err()
}

// HasRecentFetch checks if a URL was fetched in any run within the
// specified duration. Useful for skipping refetches across runs.
func (cdb *CrawlDB) HasRecentFetch(ctx context.Context, url string, duration time.Duration) (bool, error) {
	query := `
	SELECT COUNT(*) FROM pages
	WHERE url = ? AND fetched_at > datetime('now', ?)
	`

	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(duration.Seconds()))

	var count int
	err := cdb.db.QueryRowContext(ctx, query, url, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent fetch: %w", err)
	}

	return count > 0, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
