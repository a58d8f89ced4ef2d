package heuristics

import (
	"errors"
	"fmt"

	"github.com/nao1215/spiderkit/internal/model"
)

// Classification defaults. The confidence threshold mirrors the emission
// floor philosophy of the extraction side: below it we say "unknown" and
// let the strategy selector route conservatively.
const (
	// DefaultConfidenceThreshold is the minimum winning score required to
	// assign a non-unknown page type.
	DefaultConfidenceThreshold = 0.5

	// DefaultExternalWeight is the weight of the extraction service's
	// item-probability signal. It outweighs any single local heuristic
	// because the service has seen the rendered page.
	DefaultExternalWeight = 2.0
)

// ErrClassification is wrapped by all classifier failures so the engine
// can catch them with errors.Is, mark the page unknown with confidence 0,
// and keep crawling.
var ErrClassification = errors.New("classification failed")

// Result is the classifier's verdict on one page.
type Result struct {
	// Type is the assigned page-type label.
	Type model.PageType

	// Confidence is the winning score in [0,1]. For unknown results it is
	// the best score that still fell short of the threshold.
	Confidence float64

	// ItemScore and NavScore are the aggregated likelihoods the verdict
	// was derived from, kept for logs and tests.
	ItemScore float64
	NavScore  float64

	// Title is the page title from the parse pass.
	Title string

	// Links are the outbound links discovered while extracting features,
	// so the engine does not parse the page a second time.
	Links []Link
}

// weightedSignal pairs a Signal with its weight in the aggregate score.
type weightedSignal struct {
	signal Signal
	weight float64
}

// Classifier assigns page-type labels from weighted heuristic signals.
// Classify is a pure function of its inputs: the classifier carries only
// immutable configuration, never per-page state, so concurrent fetch
// completions can share one instance without locking.
type Classifier struct {
	threshold      float64
	externalWeight float64
	signals        []weightedSignal
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithThreshold sets the minimum winning score for a non-unknown verdict.
func WithThreshold(threshold float64) ClassifierOption {
	return func(c *Classifier) {
		c.threshold = threshold
	}
}

// WithExternalWeight sets the weight of the extraction-service probability.
func WithExternalWeight(weight float64) ClassifierOption {
	return func(c *Classifier) {
		c.externalWeight = weight
	}
}

// WithSignal adds a scoring signal with the given weight, replacing the
// default set on first use.
func WithSignal(signal Signal, weight float64) ClassifierOption {
	return func(c *Classifier) {
		c.signals = append(c.signals, weightedSignal{signal: signal, weight: weight})
	}
}

// NewClassifier creates a Classifier. Without WithSignal options it scores
// with the default set: URL shape (1.0), link density (1.0), and
// vocabulary (1.5).
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		threshold:      DefaultConfidenceThreshold,
		externalWeight: DefaultExternalWeight,
	}
	for _, opt := range opts {
		opt(c)
	}
	if len(c.signals) == 0 {
		c.signals = []weightedSignal{
			{signal: URLShapeSignal{}, weight: 1.0},
			{signal: LinkDensitySignal{}, weight: 1.0},
			{signal: VocabularySignal{}, weight: 1.5},
		}
	}
	return c
}

// Threshold returns the configured confidence threshold.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Classify scores the page at pageURL with the given body. externalProb,
// when non-nil, is the extraction service's item probability in [0,1] and
// participates in the item score with the configured external weight.
//
// Verdict mapping: the higher of the aggregated item/nav scores wins when
// it clears the threshold; both clearing it yields mixed; neither clearing
// it, or an exact tie below the threshold, yields unknown.
func (c *Classifier) Classify(pageURL string, body []byte, externalProb *float64) (*Result, error) {
	features, err := ExtractFeatures(pageURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrClassification, pageURL, err)
	}
	return c.classifyFeatures(features, externalProb), nil
}

func (c *Classifier) classifyFeatures(f *PageFeatures, externalProb *float64) *Result {
	var itemSum, itemWeight, navSum, navWeight float64
	for _, ws := range c.signals {
		item, nav, ok := ws.signal.Score(f)
		if !ok {
			continue
		}
		itemSum += item * ws.weight
		itemWeight += ws.weight
		navSum += nav * ws.weight
		navWeight += ws.weight
	}

	if externalProb != nil {
		p := clamp01(*externalProb)
		itemSum += p * c.externalWeight
		itemWeight += c.externalWeight
	}

	var itemScore, navScore float64
	if itemWeight > 0 {
		itemScore = itemSum / itemWeight
	}
	if navWeight > 0 {
		navScore = navSum / navWeight
	}

	result := &Result{
		ItemScore: itemScore,
		NavScore:  navScore,
		Title:     f.Title,
		Links:     f.Links,
	}

	itemWins := itemScore >= c.threshold
	navWins := navScore >= c.threshold
	switch {
	case itemWins && navWins:
		result.Type = model.PageTypeMixed
		result.Confidence = min(itemScore, navScore)
	case itemWins:
		result.Type = model.PageTypeItem
		result.Confidence = itemScore
	case navWins:
		result.Type = model.PageTypeNavigation
		result.Confidence = navScore
	default:
		result.Type = model.PageTypeUnknown
		result.Confidence = max(itemScore, navScore)
	}
	return result
}
