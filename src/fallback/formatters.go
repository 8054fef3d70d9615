package fallback

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"market_assistant/pkg"
	"market_assistant/src/model"
	"market_assistant/src/nlu"
)

const (
	// DefaultListLimit caps recommendation and best-deal listings
	DefaultListLimit = 6
	// TentativeConfidence is the bar below which a single match is phrased as a question
	TentativeConfidence = 0.7
	// CheapPriceCeiling is the price treated as cheap by recommendations
	CheapPriceCeiling = 50.0

	noCatalogMessage = "I don't have product data available right now. Please try again later. 😔"
)

func formatPrice(price float64) string {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return "₹0.00/kg"
	}
	return fmt.Sprintf("₹%.2f/kg", price)
}

func formatUnits(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func sortedByPrice(products []pkg.Product) []pkg.Product {
	sorted := slices.Clone(products)
	slices.SortStableFunc(sorted, func(a, b pkg.Product) int {
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		}
		return 0
	})
	return sorted
}

// PriceCheck answers a direct price question from matcher output
func PriceCheck(matches []model.Match) string {
	if len(matches) == 0 {
		return "I couldn't find any products matching your query. Could you please specify which product you're interested in? 🤔"
	}

	if len(matches) == 1 {
		product := matches[0].Product
		if matches[0].Confidence < TentativeConfidence {
			return fmt.Sprintf("Did you mean **%s**? It's currently priced at **%s**. If not, please clarify which product you're looking for. 🔍",
				product.Name, formatPrice(product.Price))
		}
		return fmt.Sprintf("**%s** is currently priced at **%s** 📊\n\nStock: %d units available\nPredicted demand: %s units",
			product.Name, formatPrice(product.Price), product.Stock, formatUnits(product.PredictedDemand))
	}

	var b strings.Builder
	b.WriteString("Here are the current prices:\n\n")
	for i, match := range matches {
		fmt.Fprintf(&b, "%d. **%s**: **%s**\n", i+1, match.Product.Name, formatPrice(match.Product.Price))
	}
	b.WriteString("\n💡 Need more details about any specific product? Just ask!")
	return b.String()
}

// Comparison lists two or more products by ascending price and states the spread
func Comparison(matches []model.Match) string {
	if len(matches) < 2 {
		return "I need at least two products to compare. Please specify which products you'd like to compare. 🔄"
	}

	products := make([]pkg.Product, 0, len(matches))
	for _, match := range matches {
		products = append(products, match.Product)
	}
	sorted := sortedByPrice(products)

	var b strings.Builder
	b.WriteString("Here's a detailed comparison:\n\n")
	for i, product := range sorted {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, product.Name)
		fmt.Fprintf(&b, "   - Price: **%s**\n", formatPrice(product.Price))
		fmt.Fprintf(&b, "   - Stock: %d units\n", product.Stock)
		fmt.Fprintf(&b, "   - Demand: %s units\n\n", formatUnits(product.PredictedDemand))
	}

	cheapest := sorted[0]
	mostExpensive := sorted[len(sorted)-1]
	fmt.Fprintf(&b, "💰 **%s** is the most affordable at **%s**\n", cheapest.Name, formatPrice(cheapest.Price))
	fmt.Fprintf(&b, "📈 Price difference: ₹%.2f/kg between cheapest and most expensive", mostExpensive.Price-cheapest.Price)
	return b.String()
}

// Recommendation filters the catalog by the requested categories and the cheap
// cue, then lists the cheapest few.
func Recommendation(catalog []pkg.Product, criteria model.Criteria) string {
	if len(catalog) == 0 {
		return noCatalogMessage
	}

	filtered := make([]pkg.Product, 0, len(catalog))
	for _, product := range catalog {
		if len(criteria.Categories) > 0 && !slices.Contains(criteria.Categories, product.Category) {
			continue
		}
		if criteria.Cheap && product.Price > CheapPriceCeiling {
			continue
		}
		filtered = append(filtered, product)
	}

	recommendations := sortedByPrice(filtered)
	if len(recommendations) > DefaultListLimit {
		recommendations = recommendations[:DefaultListLimit]
	}
	if len(recommendations) == 0 {
		return "I couldn't find products matching your criteria. Try adjusting your requirements! 🔍"
	}

	var b strings.Builder
	b.WriteString("Here are my recommendations:\n\n")
	for i, product := range recommendations {
		fmt.Fprintf(&b, "%d. **%s** - **%s**\n", i+1, product.Name, formatPrice(product.Price))
	}
	b.WriteString("\n✨ These products offer great value for your needs!")
	return b.String()
}

// BestDeals lists the globally cheapest catalog entries
func BestDeals(catalog []pkg.Product, limit int) string {
	if len(catalog) == 0 {
		return noCatalogMessage
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	deals := sortedByPrice(catalog)
	if len(deals) > limit {
		deals = deals[:limit]
	}

	var b strings.Builder
	b.WriteString("🎉 **Best Deals Right Now:**\n\n")
	for i, product := range deals {
		fmt.Fprintf(&b, "%d. **%s** - **%s**\n", i+1, product.Name, formatPrice(product.Price))
		fmt.Fprintf(&b, "   Stock: %d units available\n\n", product.Stock)
	}
	b.WriteString("💡 Grab these deals while stocks last!")
	return b.String()
}

// CategoryList lists one category alphabetically
func CategoryList(catalog []pkg.Product, category pkg.Category) string {
	if len(catalog) == 0 {
		return noCatalogMessage
	}

	var filtered []pkg.Product
	for _, product := range catalog {
		if product.Category == category {
			filtered = append(filtered, product)
		}
	}
	if len(filtered) == 0 {
		return fmt.Sprintf("I couldn't find any products in the %s category. 🤔", category)
	}

	slices.SortStableFunc(filtered, func(a, b pkg.Product) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	icon := "🍎"
	if category == pkg.CategoryVegetable {
		icon = "🥬"
	}
	title := string(category)
	if title != "" {
		title = strings.ToUpper(title[:1]) + title[1:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s **%ss Available (%d items):**\n\n", icon, title, len(filtered))
	for i, product := range filtered {
		fmt.Fprintf(&b, "%d. **%s** - **%s**\n", i+1, product.Name, formatPrice(product.Price))
	}
	fmt.Fprintf(&b, "\n💡 Want to know more about any specific %s? Just ask!", category)
	return b.String()
}

// Forecast points the user at the analytics surface
func Forecast() string {
	return `📈 **Price Forecasting Feature**
I can help you understand price trends! However, for detailed forecasts, please visit the Analytics page where you can:
• View historical price trends
• See predicted demand patterns
• Analyze seasonal variations
• Get AI-powered price predictions
💡 You can also ask me about current prices and I'll provide the latest data!`
}

// AlertSetup points the user at alert management
func AlertSetup() string {
	return `🔔 **Price Alert Setup**
I'd love to help you set up price alerts! This feature allows you to:
• Get notified when prices drop
• Track specific products
• Set custom price thresholds
• Receive timely updates
💡 To set up alerts, please use the Alert Management section in the main dashboard. You can configure alerts for any product you're interested in!`
}

// Help describes what the assistant understands
func Help() string {
	return `👋 **Welcome! I'm your Market Guide Assistant**
I can help you with:
1. **Price Checks** - "What's the price of tomato?"
2. **Comparisons** - "Compare potato and onion"
3. **Recommendations** - "Suggest cheap vegetables"
4. **Best Deals** - "Show me the cheapest products"
5. **Category Lists** - "List all fruits"
6. **Product Info** - Ask about stock, demand, or availability
💡 **Tips:**
• Ask naturally - I understand conversational language
• Compare multiple products at once
• Ask follow-up questions - I remember our conversation
🚀 Try asking: "What are the best deals today?" or "Compare apple and banana prices"`
}

// Weather redirects weather chatter to what the assistant can do
func Weather() string {
	return `I understand you're asking about weather conditions! 🌤️
While I don't have real-time weather data, I can help you with:
• **Product prices** affected by weather
• **Seasonal recommendations** based on current season
• **Market trends** and supply information
• **Best deals** on fresh produce
For detailed weather forecasts and their impact on prices, please visit the **Analytics page** where you can see:
- Weather impact analysis
- Price predictions based on weather
- Supply chain updates
💡 Try asking: "What are the seasonal picks?" or "Show me fresh vegetables"`
}

// Unknown handles unclassified input: weather gets redirected, stray product
// mentions degrade to a price check, anything else gets generic guidance.
func Unknown(utterance string, matches []model.Match) string {
	if nlu.IsWeatherQuery(utterance) {
		return Weather()
	}
	if len(matches) > 0 {
		return PriceCheck(matches)
	}
	return `I'm not sure I understood that correctly. 🤔
Here's what I can help you with:
• Check prices: "What's the price of tomato?"
• Compare products: "Compare potato and onion"
• Find deals: "Show me the cheapest products"
• Get recommendations: "Suggest fresh vegetables"
💡 Try rephrasing your question, or type "help" to see all features!`
}
