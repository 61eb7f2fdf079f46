// Package suggest ranks near-miss candidates for "did you mean" error text.
package suggest

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// threshold is the minimum similarity score required for a string to be
// considered similar.
const threshold = 0.5

// FindSimilar returns a list of similar strings to the target string from a
// list of candidates, best matches first, at most maxResults long.
func FindSimilar(target string, candidates []string, maxResults int) []string {
	if target == "" || maxResults <= 0 {
		return []string{}
	}

	suggestions := make([]struct {
		name  string
		score float64
	}, 0, len(candidates))

	for _, name := range candidates {
		score := calculateSimilarity(target, name)
		if score > threshold {
			suggestions = append(suggestions, struct {
				name  string
				score float64
			}{name, score})
		}
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].score == suggestions[j].score {
			return suggestions[i].name < suggestions[j].name
		}
		return suggestions[i].score > suggestions[j].score
	})

	result := make([]string, 0, maxResults)
	for i := 0; i < len(suggestions) && i < maxResults; i++ {
		result = append(result, suggestions[i].name)
	}
	return result
}

func calculateSimilarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)

	if a == b {
		return 1.0
	}
	// Prefix match bonus
	if strings.HasPrefix(b, a) {
		return 0.9
	}
	// a == b above covers the both-empty case, so maxLen is never zero here.
	maxLen := max(len(a), len(b))
	distance := levenshtein.ComputeDistance(a, b)

	// Convert distance to similarity score (0 to 1)
	return 1.0 - float64(distance)/float64(maxLen)
}
