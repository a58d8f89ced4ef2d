package heuristics

import (
	"net/url"
	"regexp"
	"strings"
)

// noContentPaths are path suffixes that practically never lead to items or
// useful navigation: account pages, policy pages, feeds, editorial sections.
// A URL ending in one of these (optionally with a script suffix) is not
// worth following as a category candidate.
var noContentPaths = []string{
	"/authenticate",
	"/my-account",
	"/account",
	"/my-wishlist",
	"/search",
	"/archive",
	"/privacy-policy",
	"/cookie-policy",
	"/terms-conditions",
	"/tos",
	"/admin",
	"/rss.xml",
	"/subscribe",
	"/newsletter",
	"/settings",
	"/cart",
	"/checkout",
	"/articles",
	"/artykuly", // Polish for articles
	"/news",
	"/blog",
	"/about",
	"/about-us",
	"/affiliate",
	"/press",
	"/careers",
}

// scriptSuffixes are page-script extensions tolerated after a no-content
// path, so "/cart.php" is rejected the same way "/cart" is.
var scriptSuffixes = []string{".html", ".php", ".cgi", ".asp"}

// noContentPatterns are regular-expression forms of the same idea, for
// paths whose spelling varies (sign-in vs sign_in vs signin).
var noContentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/sign[_-]?in`),
	regexp.MustCompile(`/log[_-]?(in|out)`),
	regexp.MustCompile(`/contact[_-]?(us)?`),
	regexp.MustCompile(`/(lost|forgot)[_-]password`),
	regexp.MustCompile(`/terms[_-]of[_-](service|use|conditions)`),
}

// MightBeCategory reports whether the URL could plausibly be a category or
// listing page based on its path alone. It returns false for URLs matching
// the no-content rules; everything else gets the benefit of the doubt.
func MightBeCategory(rawURL string) bool {
	lowered := strings.TrimRight(strings.ToLower(rawURL), "/")
	u, err := url.Parse(lowered)
	if err != nil {
		return false
	}
	urlPath := u.Path

	for _, suffix := range append([]string{""}, scriptSuffixes...) {
		for _, p := range noContentPaths {
			if strings.HasSuffix(urlPath, p+suffix) {
				return false
			}
		}
	}
	for _, re := range noContentPatterns {
		if re.MatchString(lowered) {
			return false
		}
	}
	return true
}
