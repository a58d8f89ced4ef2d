// Package engine orchestrates a crawl run: it wires the frontier,
// classifier, and strategy selector into the control loop
//
//	dequeue -> fetch -> classify -> decide -> normalize -> dedupe -> enqueue
//
// # Collaborators
//
// Fetching is deliberately a collaborator interface. The engine decides
// what to fetch next and how to route what came back; it does not own
// retries, rendering, or anti-bot concerns. The bundled HTTPFetcher is a
// thin default for plain sites and tests, not a transport layer.
//
// Emitted records go to a Sink, whose obligation ends at accepting the
// record; extraction happens elsewhere.
//
// # Failure policy
//
// Nothing that happens to a single page may end the run. Fetch errors
// drop the page and continue. Classifier errors mark the page unknown
// with confidence zero and continue. Invalid links are dropped and
// logged. The run ends only when the frontier drains, a budget expires,
// or the context is cancelled.
package engine
