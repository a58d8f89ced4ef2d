package urlutil

import "errors"

// Normalization errors.
//
// Design decision: We use package-level sentinel errors so callers can use
// errors.Is() to distinguish "this candidate is junk, drop it" from
// programming errors, while wrapped messages still name the offending URL.
var (
	// ErrInvalidURL is returned when a candidate cannot be parsed as a URL
	// at all. Such candidates are dropped and logged, never fatal.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrUnsupportedScheme is returned for parseable URLs whose scheme is
	// not http or https (mailto:, javascript:, ftp:, data:, ...).
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
)
