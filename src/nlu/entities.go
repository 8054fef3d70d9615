package nlu

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"market_assistant/pkg"
	"market_assistant/src/model"
)

// ----------------------------------------------------
// ================ Temporal ================

var temporalRules = []struct {
	kind  model.TemporalKind
	re    *regexp.Regexp
	shift func(time.Time) time.Time
}{
	{model.TemporalToday, regexp.MustCompile(`\btoday\b`), func(t time.Time) time.Time { return t }},
	{model.TemporalTomorrow, regexp.MustCompile(`\btomorrow\b`), func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }},
	{model.TemporalThisWeek, regexp.MustCompile(`\bthis week\b`), func(t time.Time) time.Time { return t }},
	{model.TemporalNextWeek, regexp.MustCompile(`\bnext week\b`), func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }},
	{model.TemporalThisMonth, regexp.MustCompile(`\bthis month\b`), func(t time.Time) time.Time { return t }},
	{model.TemporalNextMonth, regexp.MustCompile(`\bnext month\b`), func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }},
}

// ExtractTemporalReference finds the first relative date phrase and resolves it against now
func ExtractTemporalReference(utterance string, now time.Time) model.TemporalReference {
	lower := strings.ToLower(utterance)
	for _, rule := range temporalRules {
		if rule.re.MatchString(lower) {
			date := rule.shift(now)
			return model.TemporalReference{Kind: rule.kind, Date: &date}
		}
	}
	return model.TemporalReference{Kind: model.TemporalNone}
}

// ----------------------------------------------------
// ================ Price range ================

const (
	cheapPriceCeiling   = 50.0
	expensivePriceFloor = 80.0
	currency            = `(?:₹|rs\.?|rupees?)?\s*`
	number              = `(\d+(?:\.\d+)?)`
)

var (
	underPattern     = regexp.MustCompile(`\b(?:under|below|less than|cheaper than)\s+` + currency + number)
	abovePattern     = regexp.MustCompile(`\b(?:above|over|more than|expensive than)\s+` + currency + number)
	betweenPattern   = regexp.MustCompile(`\bbetween\s+` + currency + number + `\s+and\s+` + currency + number)
	cheapPattern     = regexp.MustCompile(`cheap|affordable|budget|economical`)
	expensivePattern = regexp.MustCompile(`expensive|premium|costly|high-end`)
)

// ExtractPriceRange applies the price rules in order; the first that fires wins
func ExtractPriceRange(utterance string) model.PriceRange {
	lower := strings.ToLower(utterance)

	if m := underPattern.FindStringSubmatch(lower); m != nil {
		return model.PriceRange{Max: parseAmount(m[1])}
	}
	if m := abovePattern.FindStringSubmatch(lower); m != nil {
		return model.PriceRange{Min: parseAmount(m[1])}
	}
	if m := betweenPattern.FindStringSubmatch(lower); m != nil {
		return model.PriceRange{Min: parseAmount(m[1]), Max: parseAmount(m[2])}
	}
	if cheapPattern.MatchString(lower) {
		return model.PriceRange{Max: ptr(cheapPriceCeiling)}
	}
	if expensivePattern.MatchString(lower) {
		return model.PriceRange{Min: ptr(expensivePriceFloor)}
	}
	return model.PriceRange{}
}

func parseAmount(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func ptr(v float64) *float64 {
	return &v
}

// ----------------------------------------------------
// ================ Categories ================

var (
	vegetableWord = regexp.MustCompile(`\bvegetables?\b`)
	fruitWord     = regexp.MustCompile(`\bfruits?\b`)
)

// ExtractCategories returns every category named in the utterance, vegetables first
func ExtractCategories(utterance string) []pkg.Category {
	lower := strings.ToLower(utterance)
	categories := []pkg.Category{}
	if vegetableWord.MatchString(lower) {
		categories = append(categories, pkg.CategoryVegetable)
	}
	if fruitWord.MatchString(lower) {
		categories = append(categories, pkg.CategoryFruit)
	}
	return categories
}

// ----------------------------------------------------
// ================ Comparison ================

const phraseEnd = `(?:\s|$|[?.!])`

var comparisonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`compare\s+(.+?)\s+and\s+(.+?)` + phraseEnd),
	regexp.MustCompile(`(.+?)\s+(?:vs|versus)\s+(.+?)` + phraseEnd),
	regexp.MustCompile(`difference\s+between\s+(.+?)\s+and\s+(.+?)` + phraseEnd),
}

// DetectComparison checks for comparison wording and tries to capture the two
// product phrases being compared. A keyword without a capturable pair yields
// IsComparison with no products.
func DetectComparison(utterance string) model.ComparisonResult {
	lower := strings.ToLower(utterance)
	if !comparisonKeyword.MatchString(lower) {
		return model.ComparisonResult{Products: []string{}}
	}

	for _, re := range comparisonPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		first, second := cleanPhrase(m[1]), cleanPhrase(m[2])
		if first == "" || second == "" {
			continue
		}
		return model.ComparisonResult{IsComparison: true, Products: []string{first, second}}
	}
	return model.ComparisonResult{IsComparison: true, Products: []string{}}
}

func cleanPhrase(s string) string {
	return strings.Trim(strings.TrimSpace(s), "?.!,")
}

// ----------------------------------------------------
// ================ Criteria & negation ================

var (
	cheapCriterion    = regexp.MustCompile(`cheap|affordable|budget|economical|inexpensive`)
	seasonalCriterion = regexp.MustCompile(`seasonal|season`)
	freshCriterion    = regexp.MustCompile(`fresh|freshest|\bnew\b|recently`)

	excludeVegetables = regexp.MustCompile(`\b(?:not|no|except|excluding|without)\s+(?:vegetables?|veggies?)\b`)
	excludeFruits     = regexp.MustCompile(`\b(?:not|no|except|excluding|without)\s+fruits?\b`)
)

// ExtractRecommendationCriteria detects the cheap/seasonal/fresh filters and requested categories
func ExtractRecommendationCriteria(utterance string) model.Criteria {
	lower := strings.ToLower(utterance)
	return model.Criteria{
		Cheap:      cheapCriterion.MatchString(lower),
		Seasonal:   seasonalCriterion.MatchString(lower),
		Fresh:      freshCriterion.MatchString(lower),
		Categories: ExtractCategories(lower),
	}
}

// HandleNegations finds categories the user explicitly excluded
func HandleNegations(utterance string) model.Negation {
	lower := strings.ToLower(utterance)
	excluded := []pkg.Category{}
	if excludeVegetables.MatchString(lower) {
		excluded = append(excluded, pkg.CategoryVegetable)
	}
	if excludeFruits.MatchString(lower) {
		excluded = append(excluded, pkg.CategoryFruit)
	}
	return model.Negation{
		HasNegation:        len(excluded) > 0,
		ExcludedCategories: excluded,
	}
}
