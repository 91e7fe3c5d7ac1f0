package match

import (
	"math"
	"sort"
	"strings"

	"github.com/vsivadasan/bookscout/pkg/types"
)

// Blend weights. Partial matching carries more weight than token-sort:
// an exact substring hit is the strongest signal a precise title query
// can give, while token-sort mops up word reordering and noise tokens
// such as author names and edition tags.
const (
	partialWeight   = 0.6
	tokenSortWeight = 0.4
)

// Score computes the similarity of a query against a book file's derived
// title, returning an integer percentage in [0,100].
func Score(query string, file types.BookFile) int {
	return ScoreTitle(types.NormalizeTitle(query), file.Title())
}

// ScoreTitle blends the partial and token-sort ratios of two already
// normalized strings.
func ScoreTitle(query, title string) int {
	p := PartialRatio(query, title)
	t := TokenSortRatio(query, title)
	return int(math.Round(partialWeight*float64(p) + tokenSortWeight*float64(t)))
}

// PartialRatio returns the highest ratio of the shorter string against
// any equal-length rune window of the longer one. A query that appears
// verbatim inside a longer title scores 100.
func PartialRatio(s1, s2 string) int {
	shorter, longer := []rune(s1), []rune(s2)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0
	}
	if len(shorter) == len(longer) {
		return ratio(shorter, longer)
	}

	best := 0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		r := ratio(shorter, longer[i:i+len(shorter)])
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio splits both strings into whitespace tokens, sorts them
// lexicographically, rejoins, and compares, making word order irrelevant.
func TokenSortRatio(s1, s2 string) int {
	return ratio([]rune(sortTokens(s1)), []rune(sortTokens(s2)))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
