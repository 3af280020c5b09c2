package matcher

import (
	"regexp"
	"strings"

	"github.com/courseflow/workflow-service/internal/models"
)

// courseCodePattern recognizes structured course codes such as "cs170" or
// "eecs 16a": letters, digits, and an optional trailing letter.
var (
	courseCodePattern     = regexp.MustCompile(`^\s*([a-zA-Z]+)\s*(\d+)([a-zA-Z]?)\s*$`)
	embeddedCoursePattern = regexp.MustCompile(`([a-z]+)\s*(\d+[a-z]?)`)
)

type courseQuery struct {
	Code  string // normalized "<DEPT> <NUM>", empty for free-text queries
	Terms []string
}

func parseCourseQuery(query string) courseQuery {
	if m := courseCodePattern.FindStringSubmatch(query); m != nil {
		dept := strings.ToUpper(m[1])
		num := strings.ToUpper(m[2] + m[3])
		return courseQuery{Code: dept + " " + num}
	}

	var terms []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if len(tok) > 1 {
			terms = append(terms, tok)
		}
	}
	return courseQuery{Terms: terms}
}

// ResolveCourse picks the single best candidate for an interactive course
// query. Scoring is rule-based: structured course codes are far more
// reliable than free text, so code hits dominate. Returns nil when no
// candidate reaches the acceptance score of 20.
func (m *matcher) ResolveCourse(query string, candidates []models.Course) *models.CourseResolution {
	q := parseCourseQuery(query)

	bestIdx := -1
	bestScore := 0

	for i, c := range candidates {
		score := scoreCourseCandidate(q, c)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore < 20 {
		m.logger.Debug().
			Str("query", query).
			Int("best_score", bestScore).
			Msg("No course candidate above acceptance score")
		return nil
	}

	confidence := bestScore
	if confidence > 100 {
		confidence = 100
	}

	m.logger.Info().
		Str("query", query).
		Str("course", candidates[bestIdx].Name).
		Int("confidence", confidence).
		Msg("Resolved course query")

	return &models.CourseResolution{
		Course:     candidates[bestIdx],
		Confidence: confidence,
	}
}

func scoreCourseCandidate(q courseQuery, c models.Course) int {
	score := 0
	normName := normalize(c.Name)
	normCode := normalize(c.Code)
	lowerName := strings.ToLower(c.Name)

	if q.Code != "" {
		queryCode := normalize(q.Code)
		switch {
		case normCode != "" && (strings.Contains(normCode, queryCode) || strings.Contains(queryCode, normCode)):
			score += 100
		case strings.Contains(normName, queryCode):
			score += 90
		}
	}

	for _, term := range q.Terms {
		normTerm := normalize(term)
		if normTerm == "" {
			continue
		}
		if strings.Contains(normCode, normTerm) {
			score += 30
		}
		if strings.Contains(lowerName, term) {
			score += 20
		}
	}

	// A code-shaped fragment inside the candidate name ("CS 170: Efficient
	// Algorithms") counts extra when it lines up with one of the search terms.
	if len(q.Terms) > 0 {
		if em := embeddedCoursePattern.FindStringSubmatch(lowerName); em != nil {
			embedded := em[1] + em[2]
			for _, term := range q.Terms {
				normTerm := normalize(term)
				if normTerm == "" {
					continue
				}
				if normTerm == em[1] || strings.Contains(embedded, normTerm) {
					score += 40
					break
				}
			}
		}
	}

	return score
}
