package heuristics

import (
	"net/url"
	"regexp"
	"strings"
)

// indexPaths are path forms that mean "the front page" once trailing
// slashes and locale prefixes are removed.
var indexPaths = map[string]struct{}{
	"":            {},
	"/index":      {},
	"/index.html": {},
	"/index.htm":  {},
	"/index.php":  {},
	"/home":       {},
}

// langCodes holds ISO 639-1 language codes used to recognize locale path
// prefixes such as /en or /fr-ca.
var langCodes = codeSet(
	"aa ab af am ar as az ba be bg bn bo br bs ca co cs cy da de dv el en eo es et eu fa fi fo fr ga gd gl gu he hi hr ht hu hy id is it ja jv ka kk km kn ko ku ky la lb lo lt lv mg mk ml mn mr ms mt my nb ne nl nn no oc or pa pl ps pt ro ru sa sd si sk sl so sq sr sv sw ta te tg th tk tl tr tt ug uk ur uz vi yi zh zu",
)

// countryCodes holds ISO 3166-1 alpha-2 country codes for the same purpose.
var countryCodes = codeSet(
	"ad ae af ag al am ao ar at au az ba bd be bf bg bh bi bj bn bo br bs bt bw by bz ca cd cf cg ch ci cl cm cn co cr cu cv cy cz de dj dk dm do dz ec ee eg er es et fi fj fm fr ga gb gd ge gh gm gn gq gr gt gw gy hk hn hr ht hu id ie il in iq ir is it jm jo jp ke kg kh ki km kn kp kr kw kz la lb lc li lk lr ls lt lu lv ly ma mc md me mg mh mk ml mm mn mo mr mt mu mv mw mx my mz na ne ng ni nl no np nz om pa pe pg ph pk pl pt pw py qa ro rs ru rw sa sb sc sd se sg si sk sl sm sn so sr st sv sy sz td tg th tj tl tm tn to tr tt tv tw tz ua ug us uy uz va vc ve vn vu ws ye za zm zw",
)

func codeSet(codes string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, code := range strings.Fields(codes) {
		set[code] = struct{}{}
	}
	return set
}

var (
	// localePairPattern matches subpaths like "/us/en" or "/en-us" where two
	// two-letter codes are separated by a non-letter.
	localePairPattern = regexp.MustCompile(`/(\w{2})[^a-z](\w{2})(\b|$)`)

	// localeSinglePattern matches subpaths like "/en" or "/fr".
	localeSinglePattern = regexp.MustCompile(`/(\w{2})(\b|$)`)
)

// IsHomepage reports whether the URL could be a site homepage: an index
// path with no query, after stripping locale subpaths such as "/us/en",
// "/en-us", or "/fr".
func IsHomepage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	urlPath := strings.ToLower(strings.TrimRight(u.Path, "/"))

	if m := localePairPattern.FindStringSubmatch(urlPath); m != nil && isLocalePair(m[1], m[2]) {
		urlPath = urlPath[6:]
	}
	if m := localeSinglePattern.FindStringSubmatch(urlPath); m != nil {
		code := m[1]
		_, isLang := langCodes[code]
		_, isCountry := countryCodes[code]
		if isLang || isCountry {
			urlPath = urlPath[3:]
		}
	}

	_, ok := indexPaths[urlPath]
	return ok && u.RawQuery == ""
}

// isLocalePair reports whether x and y form a language/country pair in
// either order, as in "en-us" or "us/en".
func isLocalePair(x, y string) bool {
	_, xLang := langCodes[x]
	_, yLang := langCodes[y]
	_, xCountry := countryCodes[x]
	_, yCountry := countryCodes[y]
	return (xLang && yCountry) || (yLang && xCountry)
}
