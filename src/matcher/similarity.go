package matcher

import (
	"math"
	"strings"
	"unicode/utf8"
)

// EditDistance returns the Levenshtein distance between a and b, compared
// rune by rune and case-sensitively. Only one DP row is kept, sized to the
// shorter input.
func EditDistance(a, b string) int {
	if a == b {
		return 0
	}
	r1, r2 := []rune(a), []rune(b)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}
	if len(r1) < len(r2) {
		r1, r2 = r2, r1
	}

	row := make([]int, len(r2)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(r2); j++ {
			above := row[j]
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			row[j] = min(above+1, row[j-1]+1, diag+cost)
			diag = above
		}
	}
	return row[len(r2)]
}

// Similarity scores two strings in [0, 1] after trimming and lower-casing.
//
//	equal                -> 1.0
//	one contains other   -> 0.8 + 0.2 * len(shorter)/len(longer)
//	otherwise            -> max(0, 1 - distance/len(longer))
//
// Either input empty after normalization scores 0.
func Similarity(a, b string) float64 {
	s1 := normalize(a)
	s2 := normalize(b)
	if s1 == "" || s2 == "" {
		return 0
	}
	if s1 == s2 {
		return 1.0
	}

	longer, shorter := s1, s2
	if utf8.RuneCountInString(s2) > utf8.RuneCountInString(s1) {
		longer, shorter = s2, s1
	}
	longerLen := float64(utf8.RuneCountInString(longer))

	if strings.Contains(longer, shorter) {
		return 0.8 + 0.2*(float64(utf8.RuneCountInString(shorter))/longerLen)
	}

	distance := float64(EditDistance(s1, s2))
	return math.Max(0, 1-distance/longerLen)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
