package matcher

import (
	"strings"
)

// Similarity scores how alike two names are, in [0, 1]. Both strings are
// normalized to lowercase alphanumerics before comparison. Containment of
// one normalized string in the other short-circuits to 0.8 before the
// edit-distance fallback runs; short course codes like "cs" inside
// "cs170" must keep scoring 0.8 regardless of the length ratio.
func Similarity(a, b string) float64 {
	na := normalize(a)
	nb := normalize(b)

	// A string that normalizes to empty matches nothing, itself included.
	if na == "" || nb == "" {
		return 0.0
	}

	if na == nb {
		return 1.0
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.8
	}

	distance := editDistance(na, nb)
	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}

	return 1.0 - float64(distance)/float64(maxLen)
}

func normalize(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// editDistance is the classic dynamic-programming edit distance with
// unit-cost insertions, deletions, and substitutions.
func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[j] = min3(
				prev[j]+1,
				curr[j-1]+1,
				prev[j-1]+cost,
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
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
