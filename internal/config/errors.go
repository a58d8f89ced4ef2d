package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoSeeds is returned when no seed URL or seed list file is specified.
	// This error occurs when neither --seed-file nor a positional argument
	// provides a starting URL.
	ErrNoSeeds = errors.New("no seeds specified: provide a URL or use --seed-file")

	// ErrInvalidStrategy is returned when the strategy name is not one of
	// full, navigation_only, items_only, or pagination_only.
	ErrInvalidStrategy = errors.New("invalid strategy: must be full, navigation_only, items_only, or pagination_only")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate connection failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	// Zero workers would mean the crawl never fetches anything.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidRateLimit is returned when the per-domain rate limit is
	// negative. Use 0 to disable rate limiting.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidEmissionFloor is returned when the emission floor falls
	// outside [0,1]. It is compared against extraction probabilities, which
	// are themselves probabilities.
	ErrInvalidEmissionFloor = errors.New("invalid emission floor: must be within [0,1]")
)
