package nlu

import (
	"regexp"
	"strings"

	"market_assistant/src/model"
)

// intentRule pairs a predicate over the lower-cased utterance with the intent it selects
type intentRule struct {
	intent model.IntentKind
	match  func(lower string) bool
}

func anyOf(patterns ...string) func(string) bool {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return func(s string) bool {
		for _, re := range compiled {
			if re.MatchString(s) {
				return true
			}
		}
		return false
	}
}

var (
	comparisonKeyword = regexp.MustCompile(`compare|comparison|\bvs\b|versus|difference between|which is (cheaper|better|more expensive)`)
	weatherKeyword    = regexp.MustCompile(`\b(weather|rain|rainy|raining|temperature|climate|conditions?|sunny|cloudy|hot|cold)\b`)
)

// intentRules is evaluated top to bottom and the first hit wins. The order
// matters: "best deals" must be caught before the broader recommendation
// wording, and weather chatter is redirected to help after every product rule.
var intentRules = []intentRule{
	{model.IntentHelp, anyOf(`^(help|what can you do|how does this work|show me features|guide|assist)`)},
	{model.IntentComparison, comparisonKeyword.MatchString},
	{model.IntentBestDeals, anyOf(`cheapest|best deals?|most affordable|lowest price|on sale|bargain`)},
	{model.IntentRecommendation, anyOf(`recommend|suggest|what (should|can) i (buy|get)|show me|best|good|fresh|seasonal`)},
	{model.IntentForecast, anyOf(`forecast|predict|future|tomorrow|next (week|month)|will be|expected|trend`)},
	{model.IntentAlertSetup, anyOf(`alert|notify|notification|remind|set (up )?alert|let me know|inform me`)},
	{model.IntentCategoryList, anyOf(
		`(list|show|display|what|all) .*(vegetables?|fruits?)`,
		`(vegetables?|fruits?) .*(list|available|have|stock)`,
	)},
	{model.IntentPriceCheck, anyOf(
		`(price|cost|how much|rate|value) (of|for|is)?`,
		`what (is|are) (the )?(price|cost)`,
	)},
	{model.IntentHelp, weatherKeyword.MatchString},
}

// DetectIntent classifies an utterance with the ordered rule cascade
func DetectIntent(utterance string) model.IntentKind {
	lower := strings.ToLower(strings.TrimSpace(utterance))
	if lower == "" {
		return model.IntentUnknown
	}
	for _, rule := range intentRules {
		if rule.match(lower) {
			return rule.intent
		}
	}
	return model.IntentUnknown
}

// IsWeatherQuery reports whether the utterance talks about weather conditions
func IsWeatherQuery(utterance string) bool {
	return weatherKeyword.MatchString(strings.ToLower(utterance))
}
