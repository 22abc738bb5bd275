package caption

import "strings"

// stopwords are excluded from the meaningful word count.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "or": true, "but": true,
	"is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true,
	"has": true, "have": true, "had": true,
	"in": true, "on": true, "at": true, "of": true,
	"to": true, "for": true, "by": true, "from": true,
	"with": true, "without": true,
	"it": true, "its": true, "this": true, "that": true,
	"there": true, "as": true, "into": true,
	"over": true, "under": true, "near": true,
	"some": true, "his": true, "her": true, "their": true,
}

// MeaningfulWordCount counts words in a caption excluding stopwords.
// Comparison is case-insensitive; punctuation is trimmed from word edges.
func MeaningfulWordCount(caption string) int {
	count := 0
	for _, word := range strings.Fields(caption) {
		word = strings.ToLower(strings.Trim(word, ".,!?;:\"'()[]"))
		if word == "" || stopwords[word] {
			continue
		}
		count++
	}
	return count
}
