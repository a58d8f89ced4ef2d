// Package strategy decides, per configured crawl strategy mode, what
// happens after a page is classified: whether the page is emitted for
// extraction and which of its outbound links qualify for the frontier.
//
// # State machine
//
// A request moves through Seed -> Navigation/Item -> Terminal. The
// transition taken on each classified page depends only on the page-type
// label and the run's strategy mode, so Decide is a pure function: the
// selector carries the mode and tuning constants but no per-page state.
// Terminal is reached by the engine, not here, when the frontier drains
// or a budget expires.
//
// # Modes
//
//   - full: follow everything in scope, emit items
//   - navigation_only: follow, never emit
//   - items_only: emit, never follow
//   - pagination_only: follow pagination links only, emit items
//
// Unknown pages are routed conservatively: full and navigation_only treat
// them as navigation, the restrictive modes ignore them.
package strategy
