package nlu

import (
	"math"
	"strings"
	"time"

	"market_assistant/pkg"
	"market_assistant/src/logger"
	"market_assistant/src/model"
)

// Confidence weights for ParseQuery
const (
	baseConfidence     = 0.5
	intentConfidence   = 0.3
	entityConfidence   = 0.2
	modifierConfidence = 0.1
)

// Parser turns utterances into ParsedQuery values. It holds no state besides
// the clock used to resolve relative dates.
type Parser struct {
	now func() time.Time
}

// NewParser creates a parser that resolves dates against the wall clock
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// NewParserWithClock creates a parser with a fixed time source, mostly for tests
func NewParserWithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// EmptyQuery is the canonical result for a blank utterance
func EmptyQuery() model.ParsedQuery {
	return model.ParsedQuery{
		Intent: model.IntentUnknown,
		Entities: model.Entities{
			ProductNames: []string{},
			Categories:   []pkg.Category{},
			Temporal:     model.TemporalReference{Kind: model.TemporalNone},
			Criteria:     model.Criteria{Categories: []pkg.Category{}},
		},
		Negation: model.Negation{ExcludedCategories: []pkg.Category{}},
	}
}

// ParseQuery classifies the utterance and extracts its entities. Product
// phrases only come from comparison captures; grounding them in the catalog
// is the matcher's job.
func (p *Parser) ParseQuery(utterance string) model.ParsedQuery {
	trimmed := strings.TrimSpace(utterance)
	if trimmed == "" {
		return EmptyQuery()
	}

	intent := DetectIntent(trimmed)
	temporal := ExtractTemporalReference(trimmed, p.now())
	comparison := DetectComparison(trimmed)
	categories := ExtractCategories(trimmed)
	priceRange := ExtractPriceRange(trimmed)
	criteria := ExtractRecommendationCriteria(trimmed)
	negation := HandleNegations(trimmed)

	productNames := []string{}
	if comparison.IsComparison {
		productNames = append(productNames, comparison.Products...)
	}

	confidence := baseConfidence
	if intent != model.IntentUnknown {
		confidence += intentConfidence
	}
	if len(productNames) > 0 || len(categories) > 0 {
		confidence += entityConfidence
	}
	if temporal.Kind != model.TemporalNone || priceRange.HasBound() {
		confidence += modifierConfidence
	}
	confidence = math.Min(confidence, 1.0)

	parsed := model.ParsedQuery{
		Intent: intent,
		Entities: model.Entities{
			ProductNames: productNames,
			Categories:   categories,
			PriceRange:   priceRange,
			Temporal:     temporal,
			Criteria:     criteria,
		},
		IsComparison:   comparison.IsComparison,
		IsMultiProduct: len(productNames) > 1,
		Confidence:     confidence,
		Negation:       negation,
	}

	logger.Debug().
		Str("intent", string(intent)).
		Int("product_phrases", len(productNames)).
		Int("categories", len(categories)).
		Float64("confidence", confidence).
		Msg("Query parsed")

	return parsed
}
