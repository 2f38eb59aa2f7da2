// Package resolve maps user-typed operation names onto catalog entries.
package resolve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// ErrEmptyQuery is returned for a blank name.
var ErrEmptyQuery = errors.New("empty search query")

// maxDistance is the largest edit distance still offered as a suggestion.
const maxDistance = 3

// NotFoundError reports a name with no exact match, with the closest
// candidates best-first.
type NotFoundError struct {
	Query       string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("unknown operation %q", e.Query)
	}
	return fmt.Sprintf("unknown operation %q, did you mean: %s?", e.Query, strings.Join(e.Suggestions, ", "))
}

type lowerSource []string

func (s lowerSource) String(i int) string { return strings.ToLower(s[i]) }
func (s lowerSource) Len() int            { return len(s) }

// Name returns the candidate matching query exactly, or case-insensitively
// when exactly one candidate does. Anything else is a *NotFoundError carrying
// up to five suggestions. Fuzzy hits are never auto-selected.
func Name(query string, candidates []string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}

	var folded []string
	for _, c := range candidates {
		if c == query {
			return c, nil
		}
		if strings.EqualFold(c, query) {
			folded = append(folded, c)
		}
	}
	if len(folded) == 1 {
		return folded[0], nil
	}

	return "", &NotFoundError{Query: query, Suggestions: Suggest(query, candidates, 5)}
}

// Suggest returns up to limit candidates close to query. Subsequence matches
// ("items" finds getItems) rank first, then names within a small edit
// distance ("getItemz" finds getItem).
func Suggest(query string, candidates []string, limit int) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(candidates) == 0 || limit <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(name string) bool {
		if _, ok := seen[name]; ok {
			return false
		}
		seen[name] = struct{}{}
		out = append(out, name)
		return len(out) >= limit
	}

	for _, m := range fuzzy.FindFrom(query, lowerSource(candidates)) {
		if add(candidates[m.Index]) {
			return out
		}
	}

	type scored struct {
		name string
		dist int
	}
	var near []scored
	for _, c := range candidates {
		if d := Levenshtein(query, strings.ToLower(c)); d <= maxDistance {
			near = append(near, scored{c, d})
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].dist < near[j].dist })
	for _, n := range near {
		if add(n.name) {
			break
		}
	}
	return out
}

// Levenshtein computes the edit distance between two strings.
func Levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	row := make([]int, lb+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= la; i++ {
		prev := i - 1
		row[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			val := min(row[j]+1, row[j-1]+1, prev+cost)
			prev = row[j]
			row[j] = val
		}
	}
	return row[lb]
}
