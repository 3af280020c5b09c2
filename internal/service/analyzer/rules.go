package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/courseflow/workflow-service/internal/models"
)

// SubmissionPlatform is the submission service this tool can upload to.
// External-tool assignments are only automatable when they point here.
const SubmissionPlatform = "Gradescope"

var groupKeywordPattern = regexp.MustCompile(`(?i)\b(group|team|partner|pair)\b`)

// nameRules classify by assignment name, evaluated top to bottom with the
// first hit winning. Order is load-bearing: "Group Project Presentation"
// must come out as a project-shaped type before presentation keywords are
// consulted, and quiz/exam keywords outrank everything.
var nameRules = []struct {
	pattern *regexp.Regexp
	resolve func(name, description string) models.AssignmentType
}{
	{
		pattern: regexp.MustCompile(`(?i)\b(quiz|exam|midterm|final|test)\b`),
		resolve: constant(models.TypeQuiz),
	},
	{
		pattern: regexp.MustCompile(`(?i)\blab\b`),
		resolve: constant(models.TypeLab),
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(homework|hw|problem\s*set|pset)\b`),
		resolve: constant(models.TypeHomework),
	},
	{
		pattern: regexp.MustCompile(`(?i)\bproject\b`),
		resolve: func(name, description string) models.AssignmentType {
			if groupKeywordPattern.MatchString(name) || groupKeywordPattern.MatchString(description) {
				return models.TypeGroupProject
			}
			return models.TypeHomework
		},
	},
	{
		pattern: regexp.MustCompile(`(?i)\bpresentation\b`),
		resolve: constant(models.TypePresentation),
	},
	{
		pattern: regexp.MustCompile(`(?i)\bdiscussion\b`),
		resolve: constant(models.TypeDiscussion),
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(attendance|participation)\b`),
		resolve: constant(models.TypeAttendance),
	},
	{
		pattern: regexp.MustCompile(`(?i)\breflection\b`),
		resolve: constant(models.TypeReflection),
	},
	{
		pattern: regexp.MustCompile(`(?i)\b(essay|paper)\b`),
		resolve: constant(models.TypeEssay),
	},
}

// descriptionRules are the fallback when the name gives nothing away.
var descriptionRules = []struct {
	pattern *regexp.Regexp
	typ     models.AssignmentType
}{
	{regexp.MustCompile(`(?i)\breflection\s+(paper|essay|piece)\b`), models.TypeReflection},
	{regexp.MustCompile(`(?i)\b(write\s+an?\s+essay|\d+\s+words)\b`), models.TypeEssay},
	{regexp.MustCompile(`(?i)\b(implement|write\s+(a\s+)?(program|function|code)|coding|algorithm)\b`), models.TypeCode},
	{regexp.MustCompile(`(?i)\b(group\s+project|work\s+(in|with)\s+(groups|teams|a\s+partner))\b`), models.TypeGroupProject},
	{regexp.MustCompile(`(?i)\b(present\s+(to|in)\s+class|give\s+a\s+presentation|oral\s+presentation)\b`), models.TypePresentation},
}

func constant(t models.AssignmentType) func(string, string) models.AssignmentType {
	return func(string, string) models.AssignmentType { return t }
}

// classifyType determines the assignment type. Submission-type tags take
// priority over name patterns, which take priority over description
// fallbacks.
func classifyType(assignment *models.Assignment, cleanDescription string) models.AssignmentType {
	lowerDesc := strings.ToLower(cleanDescription)

	switch {
	case assignment.HasSubmissionType(models.SubmissionTypeOnlineQuiz):
		return models.TypeQuiz
	case assignment.HasSubmissionType(models.SubmissionTypeDiscussionTopic):
		return models.TypeDiscussion
	case assignment.HasSubmissionType(models.SubmissionTypeExternalTool) && strings.Contains(lowerDesc, "gradescope"):
		return models.TypeHomework
	}

	for _, rule := range nameRules {
		if rule.pattern.MatchString(assignment.Name) {
			return rule.resolve(assignment.Name, cleanDescription)
		}
	}

	for _, rule := range descriptionRules {
		if rule.pattern.MatchString(cleanDescription) {
			return rule.typ
		}
	}

	return models.TypeUnknown
}

// automationRule is one row of the automatability decision table.
type automationRule struct {
	applies     func(a *models.AnalyzedAssignment) bool
	automatable bool
	reason      func(a *models.AnalyzedAssignment) string
}

// automationRules is evaluated in order with the first applicable row
// winning; the order implements a fixed policy and must not be shuffled
// (a quiz with an online_upload tag is still a quiz).
var automationRules = []automationRule{
	{
		applies:     typeIn(models.TypeQuiz, models.TypeExam),
		automatable: false,
		reason:      fixed("requires real-time responses"),
	},
	{
		applies:     typeIn(models.TypeAttendance),
		automatable: false,
		reason:      fixed("requires physical presence"),
	},
	{
		applies:     typeIn(models.TypePresentation),
		automatable: false,
		reason:      fixed("requires human delivery"),
	},
	{
		applies:     typeIn(models.TypeGroupProject),
		automatable: false,
		reason:      fixed("requires coordination with team members"),
	},
	{
		applies:     typeIn(models.TypeDiscussion),
		automatable: false,
		reason:      fixed("requires interactive participation"),
	},
	{
		applies:     hasTag(models.SubmissionTypeNone),
		automatable: false,
		reason:      fixed("no submission required"),
	},
	{
		applies:     hasTag(models.SubmissionTypeOnPaper),
		automatable: false,
		reason:      fixed("requires physical paper submission"),
	},
	{
		applies: func(a *models.AnalyzedAssignment) bool {
			return a.Submission.IsExternalTool && a.Submission.ExternalToolName == SubmissionPlatform
		},
		automatable: true,
		reason:      fixed("can submit via API"),
	},
	{
		applies: func(a *models.AnalyzedAssignment) bool {
			return a.Submission.IsExternalTool
		},
		automatable: false,
		reason: func(a *models.AnalyzedAssignment) string {
			tool := a.Submission.ExternalToolName
			if tool == "" {
				tool = "an unrecognized external tool"
			}
			return fmt.Sprintf("requires submission through %s", tool)
		},
	},
	{
		applies:     typeIn(models.TypeEssay, models.TypeReflection),
		automatable: true,
		reason:      fixed("written assignments can be generated"),
	},
	{
		applies:     typeIn(models.TypeCode, models.TypeHomework, models.TypeLab),
		automatable: true,
		reason:      fixed("code/homework assignments can be completed"),
	},
	{
		applies: func(a *models.AnalyzedAssignment) bool {
			return containsTag(a.Submission.Types, models.SubmissionTypeOnlineUpload) ||
				containsTag(a.Submission.Types, models.SubmissionTypeOnlineTextEntry)
		},
		automatable: true,
		reason:      fixed("supports online submission"),
	},
}

// determineAutomatability walks the decision table; anything no row
// claims is treated as not automatable.
func determineAutomatability(a *models.AnalyzedAssignment) (bool, string) {
	for _, rule := range automationRules {
		if rule.applies(a) {
			return rule.automatable, rule.reason(a)
		}
	}
	return false, "unknown submission requirements"
}

func typeIn(types ...models.AssignmentType) func(*models.AnalyzedAssignment) bool {
	return func(a *models.AnalyzedAssignment) bool {
		for _, t := range types {
			if a.Type == t {
				return true
			}
		}
		return false
	}
}

func hasTag(tag string) func(*models.AnalyzedAssignment) bool {
	return func(a *models.AnalyzedAssignment) bool {
		return containsTag(a.Submission.Types, tag)
	}
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func fixed(reason string) func(*models.AnalyzedAssignment) string {
	return func(*models.AnalyzedAssignment) string { return reason }
}
