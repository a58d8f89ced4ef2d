package urlutil

import (
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"
)

// trackingParams are query parameters that identify campaigns or clicks,
// never content. They are stripped so that the same page reached through
// different marketing links canonicalizes identically.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"gclid":        {},
	"fbclid":       {},
	"mc_cid":       {},
	"mc_eid":       {},
}

// presentationParams reorder or restyle a listing without changing which
// pages it contains. A category sorted by price is still the same
// category, so crawling both orderings would fetch every product twice.
var presentationParams = map[string]struct{}{
	"sort":  {},
	"order": {},
	"dir":   {},
	"view":  {},
}

// Normalizer canonicalizes discovered URLs. It is side-effect-free and
// deterministic: identical inputs always yield identical output.
//
// Design decision: Normalizer is a struct rather than a free function
// because the trailing-slash policy and the order-sensitive parameter
// allow-list are per-run configuration, and threading them through every
// call site as arguments would be noisy.
type Normalizer struct {
	// orderSensitiveParams lists query parameter names whose presence means
	// the site assigns meaning to parameter order. When any of them appears
	// in a URL, the raw query string is preserved instead of re-encoded in
	// sorted order.
	orderSensitiveParams map[string]struct{}

	// keepTrailingSlash disables trailing-slash stripping for sites where
	// /path and /path/ are genuinely different resources.
	keepTrailingSlash bool

	// stripParams holds additional query parameters to remove beyond the
	// built-in tracking set.
	stripParams map[string]struct{}
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithOrderSensitiveParams marks query parameter names whose presence
// preserves the original query order.
func WithOrderSensitiveParams(names []string) NormalizerOption {
	return func(n *Normalizer) {
		for _, name := range names {
			n.orderSensitiveParams[strings.ToLower(name)] = struct{}{}
		}
	}
}

// WithKeepTrailingSlash preserves trailing slashes on non-root paths.
func WithKeepTrailingSlash() NormalizerOption {
	return func(n *Normalizer) {
		n.keepTrailingSlash = true
	}
}

// WithStripParams adds query parameter names to strip during normalization.
func WithStripParams(names []string) NormalizerOption {
	return func(n *Normalizer) {
		for _, name := range names {
			n.stripParams[strings.ToLower(name)] = struct{}{}
		}
	}
}

// NewNormalizer creates a Normalizer with the given options.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		orderSensitiveParams: make(map[string]struct{}),
		stripParams:          make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize resolves rawURL against baseURL and returns its canonical form.
// baseURL may be empty for absolute candidates such as seeds.
//
// Canonicalization applies, in order: relative resolution, scheme/host
// lowercasing, default-port removal, fragment removal, path cleaning and
// trailing-slash policy, tracking- and presentation-parameter stripping,
// and sorted query re-encoding. Non-http(s) schemes are rejected with
// ErrUnsupportedScheme.
func (n *Normalizer) Normalize(rawURL, baseURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || rawURL == "#" {
		return "", fmt.Errorf("%w: empty candidate", ErrInvalidURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}

	if baseURL != "" {
		base, err := url.Parse(baseURL)
		if err != nil {
			return "", fmt.Errorf("%w: base %q: %v", ErrInvalidURL, baseURL, err)
		}
		u = base.ResolveReference(u)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, rawURL)
	}

	// Default ports carry no information once the scheme is known.
	if (scheme == "http" && strings.HasSuffix(u.Host, ":80")) ||
		(scheme == "https" && strings.HasSuffix(u.Host, ":443")) {
		u.Host = u.Host[:strings.LastIndex(u.Host, ":")]
	}

	// Fragments never reach the server.
	u.Fragment = ""
	u.RawFragment = ""

	u.Path = n.cleanPath(u.Path)
	u.RawPath = ""

	if u.RawQuery != "" {
		u.RawQuery = n.canonicalQuery(u.RawQuery)
	}
	// An empty query with a bare "?" is equivalent to no query at all.
	u.ForceQuery = false

	return u.String(), nil
}

// cleanPath collapses dot segments and duplicate slashes and applies the
// trailing-slash policy. The root path is always "/".
func (n *Normalizer) cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	hadTrailing := strings.HasSuffix(p, "/")
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == "/" {
		return "/"
	}
	if n.keepTrailingSlash && hadTrailing {
		return cleaned + "/"
	}
	return cleaned
}

// canonicalQuery strips tracking and presentation parameters and
// re-encodes the query with keys in sorted order, unless an
// order-sensitive parameter is present, in which case stripping is
// skipped and the raw order survives.
func (n *Normalizer) canonicalQuery(rawQuery string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		// Unparseable queries are kept verbatim; they still dedupe
		// against byte-identical siblings.
		return rawQuery
	}

	for key := range values {
		if n.isOrderSensitive(key) {
			return rawQuery
		}
	}

	for key := range values {
		lower := strings.ToLower(key)
		if _, ok := trackingParams[lower]; ok {
			values.Del(key)
			continue
		}
		if _, ok := presentationParams[lower]; ok {
			values.Del(key)
			continue
		}
		if _, ok := n.stripParams[lower]; ok {
			values.Del(key)
		}
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, key := range keys {
		for _, v := range values[key] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			if v != "" {
				b.WriteByte('=')
				b.WriteString(url.QueryEscape(v))
			}
		}
	}
	return b.String()
}

func (n *Normalizer) isOrderSensitive(key string) bool {
	_, ok := n.orderSensitiveParams[strings.ToLower(key)]
	return ok
}
