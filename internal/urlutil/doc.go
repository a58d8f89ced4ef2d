// Package urlutil provides URL canonicalization and domain helpers for the
// crawl core.
//
// # Canonical URLs
//
// The Normalizer turns every discovered link into a single canonical string
// form so that equivalent URLs compare equal. The visited set and frontier
// key on this form, which makes normalization determinism a correctness
// requirement, not a cosmetic one: if the same input could normalize two
// ways, duplicate suppression would silently break.
//
// # Domains
//
// Domain helpers derive the registrable domain (eTLD+1) of a URL using the
// public suffix list, so that shop.example.co.uk and www.example.co.uk
// group under the same crawl scope while example.co.uk and other.co.uk
// do not.
package urlutil
