package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ErrInvalidSeedList is returned when a seed list contains entries that do
// not parse as absolute http(s) URLs. The wrapped message names the bad
// entries so the user can fix the file instead of guessing.
var ErrInvalidSeedList = errors.New("seed list contains invalid URLs")

// ParseSeedList splits a newline-separated seed list into URLs.
// Blank lines and surrounding whitespace are ignored. Entries that are not
// absolute http(s) URLs make the whole list invalid: a typo in a seed file
// should stop the run up front, not silently shrink the crawl.
func ParseSeedList(text string) ([]string, error) {
	var seeds []string
	var invalid []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !isSeedURL(line) {
			invalid = append(invalid, line)
			continue
		}
		seeds = append(seeds, line)
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSeedList, strings.Join(invalid, ", "))
	}
	return seeds, nil
}

// LoadSeedList reads a seed file and parses it with ParseSeedList.
func LoadSeedList(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided seed path is intentional
	if err != nil {
		return nil, err
	}
	return ParseSeedList(string(data))
}

// isSeedURL reports whether s parses as an absolute http(s) URL with a host.
func isSeedURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
