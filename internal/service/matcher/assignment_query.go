package matcher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/courseflow/workflow-service/internal/models"
)

var (
	assignmentNumberPattern = regexp.MustCompile(`(?i)\b(hw|homework|lab|project|assignment|pset|ps|problem\s*set)\s*#?\s*(\d+)\b`)
	bareNumberPattern       = regexp.MustCompile(`^\s*#?(\d+)\s*$`)

	// assignmentPrefixes are the name prefixes recognized as assignment
	// types for free-text scoring.
	assignmentPrefixes = []string{"homework", "hw", "lab", "project", "assignment", "problem set", "pset", "ps", "quiz"}
)

type assignmentQuery struct {
	Number int // -1 when the query carries no number
	Terms  []string
}

func parseAssignmentQuery(query string) assignmentQuery {
	if m := assignmentNumberPattern.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil {
			return assignmentQuery{Number: n}
		}
	}

	if m := bareNumberPattern.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return assignmentQuery{Number: n}
		}
	}

	var terms []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if len(tok) > 1 {
			terms = append(terms, tok)
		}
	}
	return assignmentQuery{Number: -1, Terms: terms}
}

// ResolveAssignment picks the single best candidate for an interactive
// assignment query. Numbered queries score on word-boundary number hits;
// free-text queries score on term and type-prefix hits. Returns nil when
// no candidate reaches the acceptance score of 25.
func (m *matcher) ResolveAssignment(query string, candidates []models.Assignment) *models.AssignmentResolution {
	q := parseAssignmentQuery(query)

	bestIdx := -1
	bestScore := 0

	for i, a := range candidates {
		score := scoreAssignmentCandidate(q, a)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore < 25 {
		m.logger.Debug().
			Str("query", query).
			Int("best_score", bestScore).
			Msg("No assignment candidate above acceptance score")
		return nil
	}

	confidence := bestScore
	if confidence > 100 {
		confidence = 100
	}

	m.logger.Info().
		Str("query", query).
		Str("assignment", candidates[bestIdx].Name).
		Int("confidence", confidence).
		Msg("Resolved assignment query")

	return &models.AssignmentResolution{
		Assignment: candidates[bestIdx],
		Confidence: confidence,
	}
}

func scoreAssignmentCandidate(q assignmentQuery, a models.Assignment) int {
	lowerName := strings.ToLower(a.Name)
	score := 0

	if q.Number >= 0 {
		numStr := strconv.Itoa(q.Number)
		if wordMatch(lowerName, numStr) {
			score += 60
		}

		// Catalogs often zero-pad ("Homework 07"); credit the two-digit
		// variant as well.
		padded := fmt.Sprintf("%02d", q.Number)
		if padded != numStr && wordMatch(lowerName, padded) {
			score += 50
		}

		return score
	}

	for _, term := range q.Terms {
		if strings.Contains(lowerName, term) {
			score += 25
		}
	}

	for _, prefix := range assignmentPrefixes {
		if strings.HasPrefix(lowerName, prefix) {
			score += 20
			break
		}
	}

	return score
}

func wordMatch(s, word string) bool {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(s)
}
