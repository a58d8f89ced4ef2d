package heuristics

import (
	"net/url"
	"regexp"
	"strings"
)

// paginationPathPatterns match URL shapes that conventionally page through
// a listing: "/page/2", "?page=3", "?p=2", "?offset=40", "?start=20".
var paginationPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/page[/-]?\d+(?:/|$)`),
	regexp.MustCompile(`(?i)[?&]page=\d+`),
	regexp.MustCompile(`(?i)[?&]p=\d+`),
	regexp.MustCompile(`(?i)[?&]offset=\d+`),
	regexp.MustCompile(`(?i)[?&]start=\d+`),
	regexp.MustCompile(`(?i)[?&]pg=\d+`),
}

// paginationTexts are anchor texts that announce a next-page link.
// Matching is exact on the trimmed, lowercased text: a product named
// "Next generation router" must not count.
var paginationTexts = map[string]struct{}{
	"next":      {},
	"next page": {},
	"more":      {},
	"load more": {},
	"show more": {},
	"older":     {},
	"newer":     {},
	">":         {},
	">>":        {},
	"»":         {},
	"›":         {},
	"→":         {},
}

// relNextValues are link rel attribute values that mark pagination.
var relNextValues = map[string]struct{}{
	"next": {},
	"prev": {},
}

// IsPaginationLink reports whether a discovered link looks like pagination,
// judged from its URL shape, its anchor text, and its rel attribute.
// PaginationOnly mode follows only links passing this check.
func IsPaginationLink(linkURL, linkText, rel string) bool {
	if _, ok := relNextValues[strings.ToLower(strings.TrimSpace(rel))]; ok {
		return true
	}

	text := strings.ToLower(strings.TrimSpace(linkText))
	if _, ok := paginationTexts[text]; ok {
		return true
	}
	// Bare page numbers ("2", "3", ...) in short anchor text are pager cells.
	if len(text) <= 3 && text != "" && isAllDigits(text) {
		return true
	}

	for _, re := range paginationPathPatterns {
		if re.MatchString(linkURL) {
			return true
		}
	}
	return false
}

// NextPageURL picks the most likely next-page link from candidates, or ""
// when none qualifies. Preference order: rel=next, then "next"-style anchor
// text, then URL shape. Candidates must stay on the same host as pageURL.
func NextPageURL(pageURL string, links []Link) string {
	pageHost := hostOf(pageURL)

	var byText, byShape string
	for _, link := range links {
		if hostOf(link.URL) != pageHost {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(link.Rel), "next") {
			return link.URL
		}
		text := strings.ToLower(strings.TrimSpace(link.Text))
		if _, ok := paginationTexts[text]; ok && byText == "" {
			byText = link.URL
			continue
		}
		if byShape == "" {
			for _, re := range paginationPathPatterns {
				if re.MatchString(link.URL) {
					byShape = link.URL
					break
				}
			}
		}
	}
	if byText != "" {
		return byText
	}
	return byShape
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
