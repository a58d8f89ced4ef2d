package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/spiderkit/internal/model"
)

// Default configuration values.
// These are chosen for polite crawling of production e-commerce sites;
// aggressive settings belong behind explicit CLI flags.
const (
	// DefaultTimeout is the per-request connection timeout. 30 seconds is
	// generous for slow origin servers without letting one dead host stall
	// a worker for minutes.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDepth of 10 reaches every page of a conventionally
	// structured shop (home, categories, pagination, products) while
	// preventing unbounded descent into calendar-style link generators.
	DefaultMaxDepth = 10

	// DefaultMaxPages is the maximum number of pages to fetch per run.
	// This prevents runaway crawling on large or infinitely-generating
	// sites. Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 1000

	// DefaultConcurrency of 4 concurrent fetches balances throughput with
	// politeness. Higher values mostly shift load onto the target site;
	// the per-domain rate limit is the real throttle.
	DefaultConcurrency = 4

	// DefaultRequestsPerSecond is the per-domain rate limit. Two requests
	// per second is conservative enough that a crawl is indistinguishable
	// from a fast human browser. Set 0 to disable.
	DefaultRequestsPerSecond = 2.0

	// DefaultUserAgent identifies spiderkit in HTTP requests. A descriptive
	// User-Agent is good practice and allows operators to identify crawler
	// traffic in their logs.
	DefaultUserAgent = "spiderkit/1.0 (+https://github.com/nao1215/spiderkit)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultEmissionFloor suppresses emitted items whose extraction
	// probability falls below it.
	DefaultEmissionFloor = 0.1

	// AppName is the application name used for XDG directory paths.
	AppName = "spiderkit"
)

// Config holds all configuration options for a spiderkit crawl.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Strategy names the crawl strategy mode: full, navigation_only,
	// items_only, or pagination_only. Parsed via model.ParseStrategyMode.
	Strategy string

	// Seeds is the list of starting URLs. Populated from positional
	// arguments and/or the seed file.
	Seeds []string

	// SeedFile is the path to a newline-separated seed list. Loaded by
	// LoadSeedList and appended to Seeds before validation.
	SeedFile string

	// Timeout is the connection timeout for each HTTP request.
	// This applies to individual connections, not the overall crawl duration.
	Timeout time.Duration

	// MaxDepth is the maximum discovery depth from any seed.
	// Depth 0 means only fetch the seeds themselves.
	MaxDepth int

	// MaxPages is the maximum number of pages to fetch per run.
	// A value of 0 means use the default (DefaultMaxPages).
	MaxPages int

	// MaxDuration bounds the run's wall-clock time. Zero means unbounded.
	MaxDuration time.Duration

	// Concurrency is the number of fetches in flight at once.
	Concurrency int

	// RequestsPerSecond is the per-domain rate limit. Zero disables it.
	RequestsPerSecond float64

	// RespectRobots enables robots.txt compliance. Disallowed URLs are
	// dropped before they enter the frontier.
	RespectRobots bool

	// DomainRoundRobin alternates between origin domains on dequeue so a
	// multi-seed crawl makes progress on every site at once.
	DomainRoundRobin bool

	// EmissionFloor is the minimum extraction probability for emitting an
	// item. Zero means use the default.
	EmissionFloor float64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. When true, outputs GitHub Flavored Markdown
	// with tables and pie charts. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .spiderkit in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-domain configurations loaded from the config
	// file. Populated by LoadConfigFile and consulted while crawling.
	SiteConfigs *File

	// DBDir is the directory path for storing the SQLite database.
	// When set, crawl results are saved for historical comparison.
	// When empty, crawl results are not persisted.
	// Defaults to the XDG data directory (~/.local/share/spiderkit on Linux).
	DBDir string

	// SaveToDB indicates whether to save crawl results to the database.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps site operators identify crawler traffic.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, depth).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Strategy:          model.StrategyFull.String(),
		Timeout:           DefaultTimeout,
		MaxDepth:          DefaultMaxDepth,
		MaxPages:          DefaultMaxPages,
		Concurrency:       DefaultConcurrency,
		RequestsPerSecond: DefaultRequestsPerSecond,
		RespectRobots:     true,
		EmissionFloor:     DefaultEmissionFloor,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// StrategyMode parses the configured strategy name.
func (c *Config) StrategyMode() (model.CrawlStrategyMode, error) {
	mode, err := model.ParseStrategyMode(c.Strategy)
	if err != nil {
		return 0, ErrInvalidStrategy
	}
	return mode, nil
}

// XDGDataDir returns the XDG data directory for spiderkit.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/spiderkit
// On macOS: ~/Library/Application Support/spiderkit
// On Windows: %LOCALAPPDATA%\spiderkit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for spiderkit.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/spiderkit
// On macOS: ~/Library/Application Support/spiderkit
// On Windows: %APPDATA%\spiderkit
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for spiderkit.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/spiderkit
// On macOS: ~/Library/Caches/spiderkit
// On Windows: %LOCALAPPDATA%\spiderkit\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any crawling begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one seed to crawl
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}

	// Strategy must name a known mode
	if _, err := c.StrategyMode(); err != nil {
		return err
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Concurrency must be positive; zero would mean no fetching at all
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// RequestsPerSecond must be non-negative; 0 disables the limiter
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRateLimit
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// EmissionFloor is compared to probabilities, so it must be one
	if c.EmissionFloor < 0 || c.EmissionFloor > 1 {
		return ErrInvalidEmissionFloor
	}

	return nil
}
