package model

import (
	"time"

	"market_assistant/pkg"
)

// ----------------------------------------------------
// ================ Intent ================

// IntentKind is the closed set of intents the offline parser can classify
type IntentKind string

const (
	IntentHelp           IntentKind = "help"
	IntentComparison     IntentKind = "comparison"
	IntentBestDeals      IntentKind = "best_deals"
	IntentRecommendation IntentKind = "recommendation"
	IntentForecast       IntentKind = "forecast"
	IntentAlertSetup     IntentKind = "alert_setup"
	IntentCategoryList   IntentKind = "category_list"
	IntentPriceCheck     IntentKind = "price_check"
	IntentUnknown        IntentKind = "unknown"
)

// TemporalKind names a relative time reference found in an utterance
type TemporalKind string

const (
	TemporalNone      TemporalKind = ""
	TemporalToday     TemporalKind = "today"
	TemporalTomorrow  TemporalKind = "tomorrow"
	TemporalThisWeek  TemporalKind = "this_week"
	TemporalNextWeek  TemporalKind = "next_week"
	TemporalThisMonth TemporalKind = "this_month"
	TemporalNextMonth TemporalKind = "next_month"
)

// ----------------------------------------------------
// ================ Entities ================

// PriceRange holds optional price bounds. Nil means unbounded.
type PriceRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// HasBound reports whether either side of the range is set
func (r PriceRange) HasBound() bool {
	return r.Min != nil || r.Max != nil
}

// TemporalReference is a relative date resolved against the parse clock
type TemporalReference struct {
	Kind TemporalKind `json:"kind"`
	Date *time.Time   `json:"date"`
}

// Criteria are the recommendation filters requested by the user
type Criteria struct {
	Cheap      bool           `json:"cheap"`
	Seasonal   bool           `json:"seasonal"`
	Fresh      bool           `json:"fresh"`
	Categories []pkg.Category `json:"categories"`
}

// Entities groups everything extracted from an utterance
type Entities struct {
	ProductNames []string          `json:"product_names"`
	Categories   []pkg.Category    `json:"categories"`
	PriceRange   PriceRange        `json:"price_range"`
	Temporal     TemporalReference `json:"temporal"`
	Criteria     Criteria          `json:"criteria"`
}

// Negation lists the categories the user asked to exclude
type Negation struct {
	HasNegation        bool           `json:"has_negation"`
	ExcludedCategories []pkg.Category `json:"excluded_categories"`
}

// ComparisonResult is the output of comparison detection. Products may be
// empty even when IsComparison is set; callers then fall back to generic matching.
type ComparisonResult struct {
	IsComparison bool     `json:"is_comparison"`
	Products     []string `json:"products"`
}

// ParsedQuery is the structured reading of one utterance
type ParsedQuery struct {
	Intent         IntentKind `json:"intent"`
	Entities       Entities   `json:"entities"`
	IsComparison   bool       `json:"is_comparison"`
	IsMultiProduct bool       `json:"is_multi_product"`
	Confidence     float64    `json:"confidence"`
	Negation       Negation   `json:"negation"`
}

// ----------------------------------------------------
// ================ Matching ================

// Match is a catalog entry resolved from a query token
type Match struct {
	Product     pkg.Product `json:"product"`
	Confidence  float64     `json:"confidence"`
	MatchedTerm string      `json:"matched_term"`
}

// ProductNames returns the catalog names of the matches in order
func ProductNames(matches []Match) []string {
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.Product.Name)
	}
	return names
}
