package heuristics

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Link is an outbound link discovered on a page: its resolved URL is left
// to the caller, heuristics only see what the markup said.
type Link struct {
	// URL is the href attribute, verbatim.
	URL string

	// Text is the anchor text, whitespace-collapsed.
	Text string

	// Rel is the rel attribute, if any.
	Rel string
}

// PageFeatures holds everything the scoring signals read from one page.
// Extracted once per page so every signal works from the same parse.
type PageFeatures struct {
	// URL is the canonical URL the page was fetched from.
	URL string

	// Title is the <title> text, trimmed.
	Title string

	// Links are all anchor elements with an href.
	Links []Link

	// TextLen is the length of the page's visible text, whitespace-collapsed.
	TextLen int

	// LinkTextLen is the portion of TextLen inside anchor elements.
	LinkTextLen int

	// PriceCount is the number of price-looking tokens in the visible text.
	PriceCount int

	// BuyPhraseCount is the number of commerce phrases ("add to cart",
	// "in stock", ...) in the visible text.
	BuyPhraseCount int

	// HasItemSchema reports schema.org Product/JobPosting/Article markup
	// or an equivalent OpenGraph type.
	HasItemSchema bool
}

// pricePattern matches currency-prefixed or -suffixed amounts like
// "$19.99", "1 299,00 €", "£5".
var pricePattern = regexp.MustCompile(`[$€£¥]\s?\d[\d.,\s]*|\d[\d.,\s]*\s?[$€£¥]`)

// buyPhrases are commerce phrases counted as item evidence.
var buyPhrases = []string{
	"add to cart",
	"add to basket",
	"add to bag",
	"buy now",
	"in stock",
	"out of stock",
	"free shipping",
	"sku",
	"quantity",
}

// itemSchemaTypes are schema.org / OpenGraph types that mark a page as a
// single extractable record.
var itemSchemaTypes = []string{"product", "jobposting", "article", "offer"}

// ExtractFeatures parses body once and derives the features every signal
// scores against. A parse failure is a ClassificationFailure at the caller.
func ExtractFeatures(pageURL string, body []byte) (*PageFeatures, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	f := &PageFeatures{URL: pageURL}
	f.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		rel, _ := sel.Attr("rel")
		link := Link{
			URL:  href,
			Text: collapseSpace(sel.Text()),
			Rel:  rel,
		}
		f.Links = append(f.Links, link)
		f.LinkTextLen += len(link.Text)
	})

	// Also honor <link rel="next"> pagination hints from the head.
	doc.Find(`link[rel="next"]`).Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && strings.TrimSpace(href) != "" {
			f.Links = append(f.Links, Link{URL: strings.TrimSpace(href), Rel: "next"})
		}
	})

	text := collapseSpace(doc.Find("body").Text())
	f.TextLen = len(text)

	lowered := strings.ToLower(text)
	f.PriceCount = len(pricePattern.FindAllString(text, -1))
	for _, phrase := range buyPhrases {
		f.BuyPhraseCount += strings.Count(lowered, phrase)
	}

	f.HasItemSchema = hasItemSchema(doc)

	return f, nil
}

func hasItemSchema(doc *goquery.Document) bool {
	found := false
	doc.Find("[itemtype]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		itemType, _ := sel.Attr("itemtype")
		lowered := strings.ToLower(itemType)
		for _, t := range itemSchemaTypes {
			if strings.Contains(lowered, t) {
				found = true
				return false
			}
		}
		return true
	})
	if found {
		return true
	}
	ogType, _ := doc.Find(`meta[property="og:type"]`).Attr("content")
	lowered := strings.ToLower(ogType)
	for _, t := range itemSchemaTypes {
		if strings.Contains(lowered, t) {
			return true
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Signal scores one aspect of a page. Implementations must be pure: the
// same features always produce the same scores.
//
// Item and nav are independent likelihoods in [0,1]; a page can score high
// on both (a product page with a heavy related-items section) or low on
// both (a login form). ok is false when the signal has no opinion, which
// removes it from the weighted sum entirely instead of dragging the
// average toward a fake neutral value.
type Signal interface {
	// Name identifies the signal in logs and test failures.
	Name() string

	// Score returns item and nav likelihoods for the page.
	Score(f *PageFeatures) (item, nav float64, ok bool)
}

// itemPathPatterns match URL paths that conventionally identify a single
// item: "/p/42", "/product/...", "/item/...", "/dp/...", trailing numeric
// ids, and id-suffixed slugs.
var itemPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/p/[\w-]+`),
	regexp.MustCompile(`(?i)/product[s]?/[\w-]+`),
	regexp.MustCompile(`(?i)/item[s]?/[\w-]+`),
	regexp.MustCompile(`(?i)/dp/[\w-]+`),
	regexp.MustCompile(`(?i)/sku/[\w-]+`),
	regexp.MustCompile(`(?i)/job[s]?/[\w-]+`),
	regexp.MustCompile(`-\d{3,}(?:/|$)`),
	regexp.MustCompile(`/\d{4,}(?:/|$)`),
}

// categoryPathPatterns match listing-page URL shapes.
var categoryPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/cat(?:egory|egories)?/`),
	regexp.MustCompile(`(?i)/c/[\w-]+`),
	regexp.MustCompile(`(?i)/collections?/`),
	regexp.MustCompile(`(?i)/shop/`),
	regexp.MustCompile(`(?i)/brands?/`),
	regexp.MustCompile(`(?i)/department[s]?/`),
}

// LooksLikeItemURL reports whether the URL path alone resembles a single
// item page. Used by the strategy selector to pick candidate priorities
// before any fetch happens.
func LooksLikeItemURL(rawURL string) bool {
	for _, re := range itemPathPatterns {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// LooksLikeCategoryURL reports whether the URL path alone resembles a
// listing page.
func LooksLikeCategoryURL(rawURL string) bool {
	for _, re := range categoryPathPatterns {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// URLShapeSignal scores the page's own URL: item-like path segments push
// toward item, category-like segments and homepages toward navigation.
type URLShapeSignal struct{}

// Name returns the signal name.
func (URLShapeSignal) Name() string { return "url_shape" }

// Score implements Signal.
func (URLShapeSignal) Score(f *PageFeatures) (float64, float64, bool) {
	if IsHomepage(f.URL) {
		return 0.05, 0.9, true
	}
	if !MightBeCategory(f.URL) {
		// Account/policy/search pages: weak evidence against both roles.
		return 0.05, 0.1, true
	}
	for _, re := range itemPathPatterns {
		if re.MatchString(f.URL) {
			return 0.9, 0.1, true
		}
	}
	for _, re := range categoryPathPatterns {
		if re.MatchString(f.URL) {
			return 0.15, 0.85, true
		}
	}
	return 0, 0, false
}

// LinkDensitySignal scores the ratio of anchor text to total text and the
// outbound link count. Listing pages are mostly links; item pages carry
// substantial prose outside anchors.
type LinkDensitySignal struct{}

// Name returns the signal name.
func (LinkDensitySignal) Name() string { return "link_density" }

// Score implements Signal.
func (LinkDensitySignal) Score(f *PageFeatures) (float64, float64, bool) {
	if f.TextLen == 0 {
		return 0, 0, false
	}
	ratio := float64(f.LinkTextLen) / float64(f.TextLen)
	linkVolume := clamp01(float64(len(f.Links)) / 30.0)

	nav := clamp01(0.7*ratio + 0.3*linkVolume)
	item := clamp01((1 - ratio) * clamp01(float64(f.TextLen)/1500.0))
	return item, nav, true
}

// VocabularySignal scores commerce vocabulary and item markup against
// pager/category vocabulary in anchor texts.
type VocabularySignal struct{}

// Name returns the signal name.
func (VocabularySignal) Name() string { return "vocabulary" }

// Score implements Signal.
func (VocabularySignal) Score(f *PageFeatures) (float64, float64, bool) {
	itemEvidence := f.BuyPhraseCount + f.PriceCount
	if f.HasItemSchema {
		itemEvidence += 3
	}

	navEvidence := 0
	for _, link := range f.Links {
		if IsPaginationLink(link.URL, link.Text, link.Rel) {
			navEvidence++
		}
	}
	// Many prices spread across many links is a listing, not an item page.
	if f.PriceCount >= 5 && len(f.Links) >= 10 {
		navEvidence += f.PriceCount / 2
	}

	if itemEvidence == 0 && navEvidence == 0 {
		return 0, 0, false
	}

	item := clamp01(0.4 + 0.12*float64(itemEvidence))
	if itemEvidence == 0 {
		item = 0
	}
	nav := clamp01(0.3 + 0.1*float64(navEvidence))
	if navEvidence == 0 {
		nav = 0
	}
	return item, nav, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
