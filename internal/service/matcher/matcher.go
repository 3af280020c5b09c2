package matcher

import (
	"github.com/rs/zerolog"

	"github.com/courseflow/workflow-service/internal/models"
)

type Matcher interface {
	MatchCourses(source, target []models.Course) *models.CourseMatchResult
	MatchAssignments(lmsCourseID string, source, target []models.Assignment) *models.AssignmentMatchResult
	ResolveCourse(query string, candidates []models.Course) *models.CourseResolution
	ResolveAssignment(query string, candidates []models.Assignment) *models.AssignmentResolution
}

type MatcherConfig struct {
	CourseThreshold     float64
	AssignmentThreshold float64
}

type matcher struct {
	config MatcherConfig
	logger zerolog.Logger
}

func New(config MatcherConfig, logger zerolog.Logger) Matcher {
	if config.CourseThreshold == 0 {
		config.CourseThreshold = 0.5
	}
	if config.AssignmentThreshold == 0 {
		config.AssignmentThreshold = 0.4
	}

	return &matcher{
		config: config,
		logger: logger,
	}
}

// MatchCourses pairs each source course with its best-scoring unused
// target course. Matching is greedy in source input order: once a target
// is taken it is out of consideration for later sources, even if a later
// source would have scored higher against it.
func (m *matcher) MatchCourses(source, target []models.Course) *models.CourseMatchResult {
	result := &models.CourseMatchResult{
		Mappings:  []models.CourseMapping{},
		Unmatched: []models.Course{},
	}

	used := make(map[string]bool)

	for _, src := range source {
		bestIdx := -1
		bestScore := 0.0

		for i, tgt := range target {
			if used[tgt.ID] {
				continue
			}

			score := Similarity(src.Name, tgt.Name)
			if codeScore := Similarity(src.Code, tgt.Code); codeScore > score {
				score = codeScore
			}

			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		if bestIdx >= 0 && bestScore >= m.config.CourseThreshold {
			tgt := target[bestIdx]
			used[tgt.ID] = true
			result.Mappings = append(result.Mappings, models.CourseMapping{
				LMSCourseID:          src.ID,
				LMSCourseName:        src.Name,
				SubmissionCourseID:   tgt.ID,
				SubmissionCourseName: tgt.Name,
			})

			m.logger.Debug().
				Str("lms_course", src.Name).
				Str("submission_course", tgt.Name).
				Float64("score", bestScore).
				Msg("Matched course")
		} else {
			result.Unmatched = append(result.Unmatched, src)
		}
	}

	m.logger.Info().
		Int("matched", len(result.Mappings)).
		Int("unmatched", len(result.Unmatched)).
		Msg("Course matching completed")

	return result
}

// MatchAssignments runs the same greedy one-to-one scheme over two
// assignment lists within a single mapped course. The acceptance
// threshold is lower than for courses since assignment names vary more.
func (m *matcher) MatchAssignments(lmsCourseID string, source, target []models.Assignment) *models.AssignmentMatchResult {
	result := &models.AssignmentMatchResult{
		LMSCourseID: lmsCourseID,
		Mappings:    []models.AssignmentMapping{},
		Unmatched:   []models.Assignment{},
	}

	used := make(map[string]bool)

	for _, src := range source {
		bestIdx := -1
		bestScore := 0.0

		for i, tgt := range target {
			if used[tgt.ID] {
				continue
			}

			score := Similarity(src.Name, tgt.Name)
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		if bestIdx >= 0 && bestScore >= m.config.AssignmentThreshold {
			tgt := target[bestIdx]
			used[tgt.ID] = true
			result.Mappings = append(result.Mappings, models.AssignmentMapping{
				LMSAssignmentID:          src.ID,
				LMSAssignmentName:        src.Name,
				SubmissionAssignmentID:   tgt.ID,
				SubmissionAssignmentName: tgt.Name,
			})
		} else {
			result.Unmatched = append(result.Unmatched, src)
		}
	}

	m.logger.Info().
		Str("lms_course_id", lmsCourseID).
		Int("matched", len(result.Mappings)).
		Int("unmatched", len(result.Unmatched)).
		Msg("Assignment matching completed")

	return result
}
