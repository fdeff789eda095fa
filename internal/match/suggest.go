package match

import (
	"sort"
	"strings"
)

// DefaultThreshold is the minimum NameScore of a suggestion.
const DefaultThreshold = 0.5

// Candidate is a name scored against the name it may stand in for.
type Candidate struct {
	Name  string
	Score float64
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// Rank scores every candidate name against name.
// Returns candidates sorted by score (descending).
func Rank(name string, names []string) CandidateList {
	candidates := make(CandidateList, 0, len(names))
	for _, n := range names {
		candidates = append(candidates, Candidate{Name: n, Score: NameScore(name, n)})
	}

	sort.Sort(candidates)

	return candidates
}

// Suggest returns at most n names resembling name, best first. Exact matches
// are not suggestions and are left out.
func Suggest(name string, names []string, n int) []string {
	var result []string
	for _, c := range Rank(name, names).AboveThreshold(DefaultThreshold).Top(n + 1) {
		if c.Name != name && len(result) < n {
			result = append(result, c.Name)
		}
	}

	return result
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// AboveThreshold returns candidates with score above the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList
	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// normalize folds case and removes separators.
func normalize(s string) string {
	var result strings.Builder

	result.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if r != '_' && r != '-' && r != ' ' {
			result.WriteRune(r)
		}
	}

	return result.String()
}
