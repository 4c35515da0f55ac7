package errors

import (
	"sort"
	"strings"
)

// MaxSuggestionDistance is the largest edit distance considered similar.
const MaxSuggestionDistance = 3

// MaxSuggestions is the most suggestions attached to one error.
const MaxSuggestions = 3

// Suggestion is a suggested correction with its edit distance.
type Suggestion struct {
	Value    string
	Distance int
}

// SuggestSimilar finds candidates similar to target, closest first. Short
// targets use a tighter threshold so the hints stay plausible.
func SuggestSimilar(target string, candidates []string) []Suggestion {
	if len(target) == 0 || len(candidates) == 0 {
		return nil
	}
	lower := strings.ToLower(target)

	threshold := MaxSuggestionDistance
	if len(lower) <= 3 {
		threshold = 1
	} else if len(lower) <= 5 {
		threshold = 2
	}

	var out []Suggestion
	for _, candidate := range candidates {
		if candidate == "" || strings.ToLower(candidate) == lower {
			continue
		}
		dist := levenshtein(lower, strings.ToLower(candidate))
		if dist <= threshold {
			out = append(out, Suggestion{Value: candidate, Distance: dist})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// FormatSuggestions renders suggestions as a "did you mean" hint, or ""
// when there are none.
func FormatSuggestions(suggestions []Suggestion) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return "did you mean '" + suggestions[0].Value + "'?"
	}
	var b strings.Builder
	b.WriteString("did you mean one of: ")
	for i, s := range suggestions {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("'")
		b.WriteString(s.Value)
		b.WriteString("'")
	}
	b.WriteString("?")
	return b.String()
}

// levenshtein computes the edit distance between two strings using two rows
// instead of a full matrix.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min3(curr[i-1]+1, prev[i]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
