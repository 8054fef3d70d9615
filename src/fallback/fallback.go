package fallback

import (
	"strings"

	"market_assistant/pkg"
	"market_assistant/src/model"
	"market_assistant/src/nlu"
)

// Request carries everything the synthesizer needs for one turn
type Request struct {
	Utterance string
	Parsed    model.ParsedQuery
	Matches   []model.Match
	Catalog   []pkg.Product
}

// Generate builds a reply for the parsed intent without any remote call.
// Every reply passes through the emoji cap.
func Generate(req Request) string {
	return LimitEmojis(dispatch(req))
}

func dispatch(req Request) string {
	if strings.TrimSpace(req.Utterance) == "" {
		return Help()
	}

	entities := req.Parsed.Entities

	switch req.Parsed.Intent {
	case model.IntentPriceCheck:
		return PriceCheck(req.Matches)
	case model.IntentComparison:
		return Comparison(req.Matches)
	case model.IntentRecommendation:
		return Recommendation(req.Catalog, entities.Criteria)
	case model.IntentBestDeals:
		return BestDeals(req.Catalog, DefaultListLimit)
	case model.IntentCategoryList:
		category := pkg.CategoryVegetable
		if len(entities.Categories) > 0 {
			category = entities.Categories[0]
		}
		return CategoryList(req.Catalog, category)
	case model.IntentForecast:
		return Forecast()
	case model.IntentAlertSetup:
		return AlertSetup()
	case model.IntentHelp:
		if nlu.IsWeatherQuery(req.Utterance) {
			return Weather()
		}
		return Help()
	default:
		// model.IntentUnknown
		return Unknown(req.Utterance, req.Matches)
	}
}
