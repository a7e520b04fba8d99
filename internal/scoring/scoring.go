// Package scoring rates lyric guesses against the expected next line.
package scoring

import (
	"math"
	"strings"
)

// Score rates guess against correct as a percentage in [0, 100], rounded to
// two decimals. Both strings are case-folded. The similarity is a partial
// ratio, so a guess that contains the answer (or is contained in it) scores
// highly; guesses shorter than the answer are scaled down by their length
// ratio so a fragment cannot outscore a full line.
func Score(correct, guess string) float64 {
	a := []rune(strings.ToLower(correct))
	b := []rune(strings.ToLower(guess))
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	sim := PartialRatio(a, b)
	if len(b) < len(a) {
		sim *= float64(len(b)) / float64(len(a))
	}
	return RoundTo(sim*100, 2)
}

// PartialRatio returns the best Indel similarity in [0, 1] between the
// shorter input and any same-length window of the longer one, including the
// windows hanging off either edge.
func PartialRatio(a, b []rune) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	best := windowedRatio(a, b)
	if len(a) == len(b) && best < 1 {
		best = math.Max(best, windowedRatio(b, a))
	}
	return best
}

// windowedRatio slides needle across hay. needle must not be longer.
func windowedRatio(needle, hay []rune) float64 {
	n, m := len(needle), len(hay)
	best := 0.0
	consider := func(window []rune) bool {
		if r := ratio(needle, window); r > best {
			best = r
		}
		return best == 1
	}

	// Prefixes shorter than the needle.
	for i := 1; i < n; i++ {
		if consider(hay[:i]) {
			return best
		}
	}
	for i := 0; i+n <= m; i++ {
		if consider(hay[i : i+n]) {
			return best
		}
	}
	// Suffixes shorter than the needle.
	for i := m - n + 1; i < m; i++ {
		if i <= 0 {
			continue
		}
		if consider(hay[i:]) {
			return best
		}
	}
	return best
}

// ratio is the normalized Indel similarity: 2*LCS / (len(a)+len(b)).
func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return float64(2*lcs(a, b)) / float64(total)
}

// lcs is the length of the longest common subsequence, in O(len(b)) space.
func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// RoundTo rounds v to the given number of decimal places, half away from zero.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
