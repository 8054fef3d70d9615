package fallback

import "strings"

// MaxEmojis is the number of emoji a single reply may carry
const MaxEmojis = 3

const variationSelector = '\uFE0F'

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1F9FF:
		return true
	case r >= 0x2600 && r <= 0x26FF:
		return true
	case r >= 0x2700 && r <= 0x27BF:
		return true
	}
	return false
}

// CountEmojis returns how many emoji the text contains
func CountEmojis(text string) int {
	count := 0
	for _, r := range text {
		if isEmoji(r) {
			count++
		}
	}
	return count
}

// LimitEmojis keeps the first MaxEmojis emoji and strips the rest, scanning
// left to right. A variation selector trailing a stripped emoji goes with it.
func LimitEmojis(text string) string {
	if CountEmojis(text) <= MaxEmojis {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	count := 0
	dropped := false
	for _, r := range text {
		if r == variationSelector && dropped {
			dropped = false
			continue
		}
		dropped = false
		if isEmoji(r) {
			count++
			if count > MaxEmojis {
				dropped = true
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
