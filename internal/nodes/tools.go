package nodes

import (
	"context"
	"fmt"
	"strings"

	"market_assistant/internal/services"
	"market_assistant/pkg"
	"market_assistant/src/fallback"
	"market_assistant/src/logger"
	"market_assistant/src/matcher"
	"market_assistant/src/model"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
)

// Tool names
const (
	ToolPriceLookup     = "price_lookup"
	ToolCompareProducts = "compare_products"
	ToolBestDeals       = "best_deals"
	ToolSearchCatalog   = "search_catalog"
)

// ToolResult is what every catalog tool returns
type ToolResult struct {
	Reply    string   `json:"reply"`
	Products []string `json:"products"`
}

type PriceLookupInput struct {
	Query string `json:"query" jsonschema:"description=Free-text product mention such as 'tomato' or 'onions and potatoes'"`
}

type CompareProductsInput struct {
	Products []string `json:"products" jsonschema:"description=Two or more product names to compare"`
}

type BestDealsInput struct {
	Limit    int    `json:"limit,omitempty" jsonschema:"description=Maximum number of deals to list (default 6)"`
	Category string `json:"category,omitempty" jsonschema:"description=Optional category filter: vegetable or fruit"`
}

type SearchCatalogInput struct {
	Query string `json:"query" jsonschema:"description=Substring of the product name"`
}

func productNames(products []pkg.Product) []string {
	names := make([]string, 0, len(products))
	for _, product := range products {
		names = append(names, product.Name)
	}
	return names
}

// PriceLookupTool answers price questions with the fuzzy matcher
func PriceLookupTool(catalog services.CatalogProvider) (tool.InvokableTool, error) {
	return utils.InferTool(ToolPriceLookup, "Look up current price, stock and predicted demand of products mentioned in free text",
		func(ctx context.Context, input PriceLookupInput) (ToolResult, error) {
			logger.Debug().Str("query", input.Query).Msg("Looking up price")

			matches := matcher.MatchProducts(input.Query, catalog.Snapshot())
			return ToolResult{
				Reply:    fallback.LimitEmojis(fallback.PriceCheck(matches)),
				Products: model.ProductNames(matches),
			}, nil
		})
}

// CompareProductsTool compares named products by price
func CompareProductsTool(catalog services.CatalogProvider) (tool.InvokableTool, error) {
	return utils.InferTool(ToolCompareProducts, "Compare two or more products by price, stock and demand",
		func(ctx context.Context, input CompareProductsInput) (ToolResult, error) {
			logger.Debug().Strs("products", input.Products).Msg("Comparing products")

			snapshot := catalog.Snapshot()
			seen := make(map[string]struct{})
			var matches []model.Match
			for _, name := range input.Products {
				match, ok := matcher.FindBestMatch(name, snapshot)
				if !ok {
					continue
				}
				if _, dup := seen[match.Product.Name]; dup {
					continue
				}
				seen[match.Product.Name] = struct{}{}
				matches = append(matches, match)
			}

			return ToolResult{
				Reply:    fallback.LimitEmojis(fallback.Comparison(matches)),
				Products: model.ProductNames(matches),
			}, nil
		})
}

// BestDealsTool lists the cheapest products, optionally within one category
func BestDealsTool(catalog services.CatalogProvider) (tool.InvokableTool, error) {
	return utils.InferTool(ToolBestDeals, "List the cheapest products right now",
		func(ctx context.Context, input BestDealsInput) (ToolResult, error) {
			snapshot := catalog.Snapshot()
			if input.Category != "" {
				category := pkg.Category(strings.ToLower(strings.TrimSpace(input.Category)))
				if !category.Valid() {
					return ToolResult{}, fmt.Errorf("unknown category %q", input.Category)
				}
				var filtered []pkg.Product
				for _, product := range snapshot {
					if product.Category == category {
						filtered = append(filtered, product)
					}
				}
				snapshot = filtered
			}

			limit := input.Limit
			if limit <= 0 {
				limit = fallback.DefaultListLimit
			}

			return ToolResult{
				Reply: fallback.LimitEmojis(fallback.BestDeals(snapshot, limit)),
			}, nil
		})
}

// SearchCatalogTool does a plain substring search over product names
func SearchCatalogTool(catalog services.CatalogProvider) (tool.InvokableTool, error) {
	return utils.InferTool(ToolSearchCatalog, "Search the catalog by product name substring",
		func(ctx context.Context, input SearchCatalogInput) (ToolResult, error) {
			products := services.SearchProducts(catalog.Snapshot(), input.Query)
			if len(products) == 0 {
				return ToolResult{Reply: fmt.Sprintf("No products found for %q.", input.Query), Products: []string{}}, nil
			}

			lines := make([]string, 0, len(products))
			for i, product := range products {
				lines = append(lines, fmt.Sprintf("%d. **%s** (%s) - ₹%.2f/kg", i+1, product.Name, product.Category, product.Price))
			}
			return ToolResult{
				Reply:    strings.Join(lines, "\n"),
				Products: productNames(products),
			}, nil
		})
}

// GetTools returns all catalog tools bound to one catalog provider
func GetTools(catalog services.CatalogProvider) ([]tool.InvokableTool, error) {
	builders := []func(services.CatalogProvider) (tool.InvokableTool, error){
		PriceLookupTool,
		CompareProductsTool,
		BestDealsTool,
		SearchCatalogTool,
	}

	tools := make([]tool.InvokableTool, 0, len(builders))
	for _, build := range builders {
		t, err := build(catalog)
		if err != nil {
			return nil, fmt.Errorf("error creating catalog tool: %w", err)
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// FindTool returns the tool with the given name
func FindTool(ctx context.Context, tools []tool.InvokableTool, name string) (tool.InvokableTool, error) {
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, err
		}
		if info.Name == name {
			return t, nil
		}
	}
	return nil, fmt.Errorf("tool not found: %s", name)
}
