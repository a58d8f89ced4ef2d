package model

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/sha3"
)

// PageRecord is the immutable result of fetching and classifying one page.
// It is created by the engine after classification and never mutated
// afterwards; reports and the output sink consume it as-is.
//
// Design decision: We keep the raw body on the record rather than only a
// hash because classification signals (link density, vocabulary) are
// recomputed in tests against the same bytes, and emitted records hand the
// body to the extraction sink.
type PageRecord struct {
	// URL is the canonical URL that was fetched.
	URL string `json:"url"`

	// FetchTime is when the fetch completed.
	FetchTime time.Time `json:"fetch_time"`

	// StatusCode is the HTTP response status code, zero if the fetcher
	// does not report one.
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type,omitempty"`

	// Title is the page title, when the classifier parsed one.
	Title string `json:"title,omitempty"`

	// Classification is the page-type label assigned by the classifier.
	Classification PageType `json:"classification"`

	// Confidence is the classifier's confidence in [0,1]. A record with
	// Classification == PageTypeUnknown always has Confidence below the
	// configured threshold (or zero after a classification failure).
	Confidence float64 `json:"confidence"`

	// Depth is the discovery depth of the request that produced this page.
	Depth int `json:"depth"`

	// OriginDomain is the registrable domain the crawl reached this page under.
	OriginDomain string `json:"origin_domain"`

	// Raw holds the response body. Excluded from JSON to keep reports small.
	Raw []byte `json:"-"`

	// Hash is the SHA3-256 hash of Raw in hex. Used for change detection
	// between runs stored in the crawl database.
	Hash string `json:"hash,omitempty"`
}

// ComputeHash fills Hash from Raw. Safe to call with an empty body.
func (p *PageRecord) ComputeHash() {
	sum := sha3.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(sum[:])
}

// Emitted reports whether the record carries an item classification that
// the strategy selector may hand to the output sink.
func (p *PageRecord) Emitted() bool {
	return p.Classification == PageTypeItem || p.Classification == PageTypeMixed
}
