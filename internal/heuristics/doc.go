// Package heuristics classifies fetched pages into navigation, item,
// mixed, or unknown roles using inference-time scoring only; there is no
// model training anywhere in this package.
//
// # Architecture
//
// Classification combines independent signals behind a single capability
// interface (Signal): URL path shape, outbound link density, link-text and
// body vocabulary, and an optional item-probability score from an external
// extraction service. Each signal produces an item-likelihood in [0,1];
// the classifier folds them into a weighted score and maps score ranges to
// page types with fixed thresholds.
//
// Design decision: We use a fixed set of named signals composed by
// weighted sum rather than runtime-pluggable scoring callbacks because:
//  1. The signal set is the product surface; callers tune weights, not code
//  2. Fixed dispatch keeps Classify a pure, independently testable function
//  3. New signals are added here, next to the tests that constrain them
//
// Ties and low-confidence scores resolve to unknown rather than guessing:
// mis-routing the crawl costs far more than re-examining one page.
//
// # URL rules
//
// The package also carries the URL-only heuristics used before a page is
// fetched: no-content path rules (cart, login, policy pages and friends),
// homepage detection with locale-prefix stripping, and pagination link
// detection.
package heuristics
