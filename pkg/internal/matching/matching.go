// Package matching provides string matching utilities using Jaro-Winkler similarity.
package matching

import (
	"cmp"
	"slices"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/josegonzalez/game-catalog/pkg/internal/normalization"
)

// DefaultMinSimilarity is the default minimum similarity score for a match.
const DefaultMinSimilarity = 0.75

// jaroWinkler is a reusable Jaro-Winkler metric instance.
var jaroWinkler = metrics.NewJaroWinkler()

// JaroWinklerSimilarity calculates the Jaro-Winkler similarity between two strings.
// The comparison is case-insensitive and returns a value between 0 and 1,
// where 1 indicates an exact match.
func JaroWinklerSimilarity(s1, s2 string) float64 {
	return strutil.Similarity(strings.ToLower(s1), strings.ToLower(s2), jaroWinkler)
}

// score compares a normalized term against a candidate name.
func score(term, candidate string, split bool) float64 {
	best := JaroWinklerSimilarity(term, normalization.NormalizeSearchTermDefault(candidate))
	if split {
		parts := normalization.SplitSearchTerm(candidate)
		if len(parts) > 1 {
			last := normalization.NormalizeSearchTermDefault(parts[len(parts)-1])
			best = max(best, JaroWinklerSimilarity(term, last))
		}
	}
	return best
}

// MatchResult represents a match result with its score.
type MatchResult struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// FindAllMatches finds all names scoring at least minScore, best first.
// Candidates with equal scores keep their input order. A maxResults of 0
// means no limit.
func FindAllMatches(searchTerm string, candidates []string, minScore float64, maxResults int) []MatchResult {
	term := normalization.NormalizeSearchTermDefault(searchTerm)
	if term == "" {
		return nil
	}

	var matches []MatchResult
	for _, candidate := range candidates {
		if s := score(term, candidate, true); s >= minScore {
			matches = append(matches, MatchResult{Name: candidate, Score: s})
		}
	}

	slices.SortStableFunc(matches, func(a, b MatchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches
}
