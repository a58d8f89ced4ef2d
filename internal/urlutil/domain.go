package urlutil

import (
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
	"golang.org/x/net/publicsuffix"
)

// wwwPrefix matches a leading "www" label with an optional number, such as
// "www." or "www2.". Only this exact label is stripped: "wwworld.example.com"
// and "prefixwww.example.com" are real hostnames and must survive intact.
var wwwPrefix = regexp.MustCompile(`^www\d*\.`)

// Domain returns the host of rawURL with any leading www label removed.
// This is the display/grouping form used in logs and reports.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return wwwPrefix.ReplaceAllString(host, "")
}

// RegistrableDomain returns the eTLD+1 of rawURL's host according to the
// public suffix list, falling back to the bare host when the list has no
// entry (localhost, internal names, IP addresses).
func RegistrableDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return strings.ToLower(etld1)
}

// SameRegistrableDomain reports whether two URLs share an eTLD+1.
// Used to keep the crawl inside the seed's domain scope.
func SameRegistrableDomain(a, b string) bool {
	da := RegistrableDomain(a)
	return da != "" && da == RegistrableDomain(b)
}

// Fingerprint returns a compact two-byte hex fingerprint of a URL's host:
// one byte derived from the registrable domain and one from the subdomain
// labels (zero when there are none). Requests from the same site cluster
// under the same leading byte, which makes frontier logs greppable by site
// without storing full hostnames.
func Fingerprint(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "0000"
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "0000"
	}

	registrable := host
	if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		registrable = strings.ToLower(etld1)
	}

	sub := strings.TrimSuffix(host, registrable)
	sub = strings.TrimSuffix(sub, ".")

	fp := make([]byte, 2)
	mainSum := sha3.Sum256([]byte(registrable))
	fp[0] = mainSum[0]
	if sub != "" {
		subSum := sha3.Sum256([]byte(sub))
		fp[1] = subSum[0]
	}
	return hex.EncodeToString(fp)
}
