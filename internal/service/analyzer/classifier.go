package analyzer

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/courseflow/workflow-service/internal/models"
)

type Classifier interface {
	Classify(assignment *models.Assignment, courseID string) *models.AnalyzedAssignment
	GetClassifierInfo() ClassifierInfo
}

type ClassifierInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// externalToolPlatforms is checked in order; the first keyword found in
// the description names the tool.
var externalToolPlatforms = []struct {
	keyword string
	name    string
}{
	{"gradescope", "Gradescope"},
	{"piazza", "Piazza"},
	{"prairielearn", "PrairieLearn"},
	{"zybooks", "zyBooks"},
}

type classifier struct {
	logger zerolog.Logger
}

func NewClassifier(logger zerolog.Logger) Classifier {
	return &classifier{
		logger: logger,
	}
}

// Classify derives an AnalyzedAssignment from one assignment record. The
// result is a pure function of the input; nothing is cached between
// calls.
func (c *classifier) Classify(assignment *models.Assignment, courseID string) *models.AnalyzedAssignment {
	lineText := stripMarkup(assignment.Description)
	cleanText := collapseWhitespace(lineText)

	analyzed := &models.AnalyzedAssignment{
		ID:               assignment.ID,
		CourseID:         courseID,
		Requirements:     extractRequirements(assignment.Description, lineText, cleanText),
		RawDescription:   assignment.Description,
		CleanDescription: cleanText,
	}

	analyzed.Type = classifyType(assignment, cleanText)
	analyzed.Submission = extractSubmissionInfo(assignment, cleanText)
	analyzed.Automatable, analyzed.AutomatableReason = determineAutomatability(analyzed)

	c.logger.Debug().
		Str("assignment_id", assignment.ID).
		Str("course_id", courseID).
		Str("type", analyzed.Type.String()).
		Bool("automatable", analyzed.Automatable).
		Str("reason", analyzed.AutomatableReason).
		Msg("Assignment classified")

	return analyzed
}

func (c *classifier) GetClassifierInfo() ClassifierInfo {
	return ClassifierInfo{
		Name:        "rule_classifier",
		Version:     "1.0",
		Description: "Ordered rule tables over assignment names, descriptions, and submission tags",
	}
}

func extractSubmissionInfo(assignment *models.Assignment, cleanText string) models.SubmissionInfo {
	info := models.SubmissionInfo{
		Types:          assignment.SubmissionTypes,
		DueAt:          assignment.DueAt,
		PointsPossible: assignment.PointsPossible,
		IsExternalTool: assignment.HasSubmissionType(models.SubmissionTypeExternalTool),
	}

	lowerDesc := strings.ToLower(cleanText)
	for _, platform := range externalToolPlatforms {
		if strings.Contains(lowerDesc, platform.keyword) {
			info.ExternalToolName = platform.name
			break
		}
	}

	return info
}
