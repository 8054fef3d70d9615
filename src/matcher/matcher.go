package matcher

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"market_assistant/pkg"
	"market_assistant/src/model"
)

const (
	// MinConfidence is the lowest similarity accepted as a match
	MinConfidence = 0.6
	// minTermLength rejects terms this short or shorter as too ambiguous
	minTermLength = 2
)

var tokenSplitter = regexp.MustCompile(`[\s,]+`)

// FindBestMatch resolves a single term to the most similar catalog entry.
// Ties keep the first product seen in catalog order. The bool is false when
// the term is too short, the catalog is empty, or nothing scores MinConfidence.
func FindBestMatch(term string, catalog []pkg.Product) (model.Match, bool) {
	normalized := normalize(term)
	if utf8.RuneCountInString(normalized) <= minTermLength || len(catalog) == 0 {
		return model.Match{}, false
	}

	bestScore := 0.0
	bestIndex := -1
	for _, variant := range variants(normalized) {
		for i, product := range catalog {
			score := Similarity(variant, product.Name)
			if score > bestScore {
				bestScore = score
				bestIndex = i
			}
		}
	}

	if bestIndex < 0 || bestScore < MinConfidence {
		return model.Match{}, false
	}
	return model.Match{
		Product:     catalog[bestIndex],
		Confidence:  bestScore,
		MatchedTerm: normalized,
	}, true
}

// variants returns the term plus its naive singular and plural forms.
// "tomatoes" becomes "tomatoe", never "tomato".
func variants(term string) []string {
	out := []string{term}
	if strings.HasSuffix(term, "s") {
		if utf8.RuneCountInString(term) > 3 {
			out = append(out, strings.TrimSuffix(term, "s"))
		}
	} else {
		out = append(out, term+"s")
	}
	return out
}

// MatchProducts tokenizes a free-text query and resolves every token against
// the catalog. Each product appears at most once (the earliest token wins) and
// the result is stably sorted by confidence, highest first.
func MatchProducts(query string, catalog []pkg.Product) []model.Match {
	matches := []model.Match{}
	if strings.TrimSpace(query) == "" || len(catalog) == 0 {
		return matches
	}

	seen := make(map[string]struct{})
	for _, token := range Tokenize(query) {
		match, ok := FindBestMatch(token, catalog)
		if !ok {
			continue
		}
		if _, dup := seen[match.Product.Name]; dup {
			continue
		}
		seen[match.Product.Name] = struct{}{}
		matches = append(matches, match)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// Tokenize lower-cases the query and splits it on whitespace, commas and the
// word "and", dropping empty tokens.
func Tokenize(query string) []string {
	var tokens []string
	for _, raw := range tokenSplitter.Split(strings.ToLower(query), -1) {
		token := strings.TrimSpace(raw)
		if token == "" || token == "and" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}
