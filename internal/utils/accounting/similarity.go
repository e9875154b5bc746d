package accounting

import (
	"strings"

	"github.com/bookcheck-dev/bookcheck/internal/core/domain"
)

// SimilarityScore rates how interchangeable two accounts are, in [0, 1].
// Weighting: 0.5 for matching account type, up to 0.3 for Jaccard word
// overlap of the account names, 0.2 for matching normal balance. It is a
// pure function of the two accounts; no registry state is consulted.
func SimilarityScore(a, b domain.Account) float64 {
	score := 0.0

	if a.AccountType == b.AccountType {
		score += 0.5
	}

	aWords := nameWords(a.AccountName)
	bWords := nameWords(b.AccountName)
	if len(aWords) > 0 && len(bWords) > 0 {
		overlap := 0
		union := len(bWords)
		for w := range aWords {
			if _, ok := bWords[w]; ok {
				overlap++
			} else {
				union++
			}
		}
		score += 0.3 * (float64(overlap) / float64(union))
	}

	if a.NormalBalance == b.NormalBalance {
		score += 0.2
	}

	return score
}

func nameWords(name string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(name)) {
		words[w] = struct{}{}
	}
	return words
}
