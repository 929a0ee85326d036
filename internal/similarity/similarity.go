// Package similarity scores canonical field values on a 0-100 scale.
//
// Identifier fields (email, phone digits, document id) score all-or-nothing:
// a partial identifier overlap is not evidence of identity. Names use
// approximate string matching tolerant of typos, word-order differences, and
// missing middle names.
package similarity

import (
	"math"
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/sells-group/lead-dedup/internal/model"
	"github.com/sells-group/lead-dedup/internal/normalize"
)

// nameParams enables the common-prefix bonus so near-typos of the same name
// ("Joao Souza" / "Joao Suoza") land above the plain edit-distance ratio.
var nameParams = levenshtein.NewParams()

// Score compares two canonical values of the given field kind and returns a
// similarity in [0,100]. ok is false when either side is absent: the score is
// undefined for that field, not zero, and the field must be excluded from
// aggregation.
//
// Score is symmetric and Score(x, x) == 100 for any non-empty canonical x.
func Score(kind model.FieldKind, a, b string) (score int, ok bool) {
	if a == "" || b == "" {
		return 0, false
	}
	if a == b {
		return 100, true
	}
	if kind.IsIdentifier() {
		return 0, true
	}
	return nameScore(a, b), true
}

// nameScore rates two distinct canonical names. The result is the best of an
// edit-distance ratio, the same ratio over alphabetically sorted tokens
// (word-order tolerance), and token overlap (missing middle names), capped at
// 99 so a score of 100 always means canonical equality.
func nameScore(a, b string) int {
	best := levenshtein.Match(a, b, nameParams)

	if sa, sb := sortedTokens(a), sortedTokens(b); sa != a || sb != b {
		if m := levenshtein.Match(sa, sb, nameParams); m > best {
			best = m
		}
	}
	if j := tokenOverlap(a, b); j > best {
		best = j
	}

	score := int(math.Round(best * 100))
	if score > 99 {
		score = 99
	}
	if score < 0 {
		score = 0
	}
	return score
}

// sortedTokens rebuilds a canonical name with its words in sorted order.
func sortedTokens(s string) string {
	tokens := normalize.Tokens(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// tokenOverlap is the Jaccard index over the two names' word sets.
func tokenOverlap(a, b string) float64 {
	setA := make(map[string]struct{})
	for _, t := range normalize.Tokens(a) {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{})
	for _, t := range normalize.Tokens(b) {
		setB[t] = struct{}{}
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	common := 0
	for t := range setA {
		if _, found := setB[t]; found {
			common++
		}
	}
	union := len(setA) + len(setB) - common
	return float64(common) / float64(union)
}
