package nlu

import (
	"testing"
	"time"

	"market_assistant/pkg"
	"market_assistant/src/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		utterance string
		want      model.IntentKind
	}{
		{"help", model.IntentHelp},
		{"What can you do?", model.IntentHelp},
		{"compare tomato and potato", model.IntentComparison},
		{"tomato vs potato", model.IntentComparison},
		{"which is cheaper, apple or banana", model.IntentComparison},
		{"show me the best deals", model.IntentBestDeals},
		{"what are the cheapest items", model.IntentBestDeals},
		{"recommend something fresh", model.IntentRecommendation},
		{"price forecast for next week", model.IntentForecast},
		{"set up an alert for onion", model.IntentAlertSetup},
		{"list all fruits", model.IntentCategoryList},
		{"vegetables available", model.IntentCategoryList},
		{"what is the price of tomato", model.IntentPriceCheck},
		{"how much for onion", model.IntentPriceCheck},
		{"how is the weather", model.IntentHelp},
		{"canvas bags", model.IntentUnknown},
		{"blah blah", model.IntentUnknown},
		{"", model.IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIntent(tt.utterance))
		})
	}
}

func TestDetectIntentBestDealsBeatsRecommendation(t *testing.T) {
	assert.Equal(t, model.IntentBestDeals, DetectIntent("can you recommend the best deals today"))
	assert.Equal(t, model.IntentBestDeals, DetectIntent("suggest a bargain"))
}

func TestExtractTemporalReference(t *testing.T) {
	tests := []struct {
		utterance string
		kind      model.TemporalKind
		date      time.Time
	}{
		{"prices today", model.TemporalToday, fixedNow},
		{"what about tomorrow", model.TemporalTomorrow, fixedNow.AddDate(0, 0, 1)},
		{"this week please", model.TemporalThisWeek, fixedNow},
		{"next week", model.TemporalNextWeek, time.Date(2026, time.October, 23, 10, 0, 0, 0, time.UTC)},
		{"this month", model.TemporalThisMonth, fixedNow},
		{"Next Month", model.TemporalNextMonth, time.Date(2026, time.November, 16, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			ref := ExtractTemporalReference(tt.utterance, fixedNow)
			assert.Equal(t, tt.kind, ref.Kind)
			require.NotNil(t, ref.Date)
			assert.True(t, tt.date.Equal(*ref.Date), "got %v", *ref.Date)
		})
	}

	none := ExtractTemporalReference("todays", fixedNow)
	assert.Equal(t, model.TemporalNone, none.Kind)
	assert.Nil(t, none.Date)
}

func TestExtractPriceRange(t *testing.T) {
	type bounds struct{ min, max *float64 }
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		utterance string
		want      bounds
	}{
		{"tomatoes under 40", bounds{nil, f(40)}},
		{"less than rs. 30", bounds{nil, f(30)}},
		{"apples above ₹100", bounds{f(100), nil}},
		{"more than 75.5 rupees", bounds{f(75.5), nil}},
		{"between 20 and 60", bounds{f(20), f(60)}},
		{"cheap fruits", bounds{nil, f(50)}},
		{"premium apples", bounds{f(80), nil}},
		{"tomato", bounds{nil, nil}},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			got := ExtractPriceRange(tt.utterance)
			assert.Equal(t, tt.want.min, got.Min)
			assert.Equal(t, tt.want.max, got.Max)
		})
	}
}

func TestExtractCategories(t *testing.T) {
	assert.Equal(t, []pkg.Category{pkg.CategoryVegetable, pkg.CategoryFruit}, ExtractCategories("Fruits and vegetables"))
	assert.Equal(t, []pkg.Category{pkg.CategoryFruit}, ExtractCategories("any fruit?"))
	assert.Empty(t, ExtractCategories("fruity vegetablesque"))
}

func TestDetectComparison(t *testing.T) {
	tests := []struct {
		utterance    string
		isComparison bool
		products     []string
	}{
		{"compare tomato and potato", true, []string{"tomato", "potato"}},
		{"Tomato vs Potato?", true, []string{"tomato", "potato"}},
		{"apple versus banana", true, []string{"apple", "banana"}},
		{"difference between apple and banana", true, []string{"apple", "banana"}},
		{"compare these please", true, []string{}},
		{"what is the price of onion", false, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			got := DetectComparison(tt.utterance)
			assert.Equal(t, tt.isComparison, got.IsComparison)
			assert.Equal(t, tt.products, got.Products)
		})
	}
}

func TestExtractRecommendationCriteria(t *testing.T) {
	c := ExtractRecommendationCriteria("cheap seasonal fresh vegetables")
	assert.True(t, c.Cheap)
	assert.True(t, c.Seasonal)
	assert.True(t, c.Fresh)
	assert.Equal(t, []pkg.Category{pkg.CategoryVegetable}, c.Categories)

	c = ExtractRecommendationCriteria("anything")
	assert.False(t, c.Cheap || c.Seasonal || c.Fresh)
	assert.Empty(t, c.Categories)
}

func TestHandleNegations(t *testing.T) {
	n := HandleNegations("fruits but not vegetables")
	assert.True(t, n.HasNegation)
	assert.Equal(t, []pkg.Category{pkg.CategoryVegetable}, n.ExcludedCategories)

	n = HandleNegations("anything without fruit, no veggies")
	assert.ElementsMatch(t, []pkg.Category{pkg.CategoryVegetable, pkg.CategoryFruit}, n.ExcludedCategories)

	n = HandleNegations("fresh vegetables")
	assert.False(t, n.HasNegation)
	assert.Empty(t, n.ExcludedCategories)
}

func TestParseQuery(t *testing.T) {
	parser := NewParserWithClock(func() time.Time { return fixedNow })

	t.Run("empty utterance", func(t *testing.T) {
		got := parser.ParseQuery("")
		assert.Equal(t, model.IntentUnknown, got.Intent)
		assert.Zero(t, got.Confidence)
		assert.False(t, got.IsComparison)
		assert.Empty(t, got.Entities.ProductNames)
	})

	t.Run("blank utterance", func(t *testing.T) {
		assert.Equal(t, EmptyQuery(), parser.ParseQuery("   "))
	})

	t.Run("comparison with products", func(t *testing.T) {
		got := parser.ParseQuery("compare tomato and potato")
		assert.Equal(t, model.IntentComparison, got.Intent)
		assert.True(t, got.IsComparison)
		assert.True(t, got.IsMultiProduct)
		assert.Equal(t, []string{"tomato", "potato"}, got.Entities.ProductNames)
		assert.InDelta(t, 1.0, got.Confidence, 1e-9)
	})

	t.Run("comparison keyword without phrases", func(t *testing.T) {
		got := parser.ParseQuery("compare these please")
		assert.True(t, got.IsComparison)
		assert.False(t, got.IsMultiProduct)
		assert.Empty(t, got.Entities.ProductNames)
		assert.InDelta(t, 0.8, got.Confidence, 1e-9)
	})

	t.Run("unknown intent", func(t *testing.T) {
		got := parser.ParseQuery("blah blah")
		assert.Equal(t, model.IntentUnknown, got.Intent)
		assert.InDelta(t, 0.5, got.Confidence, 1e-9)
	})

	t.Run("unknown with temporal modifier", func(t *testing.T) {
		got := parser.ParseQuery("qwerty today")
		assert.InDelta(t, 0.6, got.Confidence, 1e-9)
		assert.Equal(t, model.TemporalToday, got.Entities.Temporal.Kind)
	})

	t.Run("confidence capped", func(t *testing.T) {
		got := parser.ParseQuery("cheap vegetables under 40 tomorrow")
		assert.Equal(t, model.IntentForecast, got.Intent)
		assert.InDelta(t, 1.0, got.Confidence, 1e-9)
		require.NotNil(t, got.Entities.PriceRange.Max)
		assert.Equal(t, 40.0, *got.Entities.PriceRange.Max)
		assert.True(t, got.Entities.Criteria.Cheap)
	})

	t.Run("negation carried through", func(t *testing.T) {
		got := parser.ParseQuery("recommend something but no fruits")
		assert.Equal(t, model.IntentRecommendation, got.Intent)
		assert.True(t, got.Negation.HasNegation)
	})
}
