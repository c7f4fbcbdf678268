package textutil

import (
	"sort"
	"strings"
)

// Ratio computes a normalized indel similarity between two strings in [0,1]:
// 1 - distance/(len(a)+len(b)), where distance counts insertions and
// deletions only. Identical strings score 1, disjoint strings score 0.
func Ratio(a, b string) float64 {
	if a == b {
		if a == "" {
			return 1
		}
		return 1
	}
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	dist := indelDistance(ra, rb)
	return 1 - float64(dist)/float64(total)
}

// TokenSortRatio tokenizes both strings, sorts the tokens, and compares the
// rejoined forms. Word order differences do not affect the score.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

// PartialRatio returns the best Ratio between the shorter string and any
// aligned window of the longer one, so a snippet scores highly against a
// larger body of text that contains it.
func PartialRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		if len(rb) == 0 {
			return 1
		}
		return 0
	}
	if len(rb)-len(ra) < 2 {
		return Ratio(string(ra), string(rb))
	}

	short := len(ra)
	step := short / 4
	if step < 1 {
		step = 1
	}
	best := 0.0
	for start := 0; start < len(rb); start += step {
		end := start + short
		if end > len(rb) {
			end = len(rb)
			start = end - short
			if start < 0 {
				start = 0
			}
		}
		score := Ratio(string(ra), string(rb[start:end]))
		if score > best {
			best = score
		}
		if end == len(rb) {
			break
		}
	}
	return best
}

func sortedTokens(text string) string {
	tokens := Tokenize(text)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// indelDistance computes the edit distance with insertions and deletions only
// (substitution counts as delete+insert), using a two-row DP.
func indelDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1]
				continue
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			if del < ins {
				cur[j] = del
			} else {
				cur[j] = ins
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
