// Package frontier holds the two pieces of crawl state shared across
// concurrent fetch completions: the visited set and the frontier itself.
// Their methods are the only critical sections in the module; everything
// upstream (normalization, classification, strategy) is pure.
//
// # Visited set
//
// Visited.MarkIfNew atomically checks membership and inserts, returning
// true only on first sighting. It is the single synchronization point
// guarding against duplicate fetches. An exact map backs recent URLs; a
// Bloom filter extends coverage past the exact capacity so memory stays
// bounded on very large crawls. The filter can produce a false "already
// seen" for a fresh URL (losing one page, at the configured error rate)
// but can never produce a duplicate fetch, which is the invariant that
// matters.
//
// # Frontier
//
// The frontier is a bounded priority queue of crawl requests: highest
// priority first, FIFO among equals (breadth-first by default, since all
// plain navigation links share a priority). It enforces a per-domain cap,
// a total size cap with lowest-priority eviction, and a global dequeue
// budget after which it reports empty for graceful termination. An
// optional per-domain round-robin stops one large domain from starving
// the others.
package frontier
