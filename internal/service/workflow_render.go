package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/courseflow/workflow-service/internal/models"
)

func buildSolutionContext(courseName string, assignment *models.Assignment, analysis *models.AnalyzedAssignment) *models.SolutionContext {
	return &models.SolutionContext{
		CourseName:     courseName,
		AssignmentName: assignment.Name,
		Type:           analysis.Type,
		Requirements:   analysis.Requirements,
		DueAt:          assignment.DueAt,
		PointsPossible: assignment.PointsPossible,
		Instructions:   analysis.CleanDescription,
	}
}

// buildPrompt renders the solution context as instructions for the
// external draft generator.
func buildPrompt(sc *models.SolutionContext) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Complete the assignment %q for the course %q.\n\n", sc.AssignmentName, sc.CourseName))
	sb.WriteString(fmt.Sprintf("Assignment type: %s\n", sc.Type))
	if sc.DueAt != nil {
		sb.WriteString(fmt.Sprintf("Due: %s\n", sc.DueAt.Format(time.RFC1123)))
	}
	if sc.PointsPossible > 0 {
		sb.WriteString(fmt.Sprintf("Points possible: %g\n", sc.PointsPossible))
	}

	req := sc.Requirements
	if req.WordCount > 0 {
		sb.WriteString(fmt.Sprintf("Minimum word count: %d\n", req.WordCount))
	}
	if req.PageCount > 0 {
		sb.WriteString(fmt.Sprintf("Minimum page count: %d\n", req.PageCount))
	}
	if req.Citations {
		if req.CitationStyle != "" {
			sb.WriteString(fmt.Sprintf("Citations required (%s style)\n", req.CitationStyle))
		} else {
			sb.WriteString("Citations required\n")
		}
	}
	if len(req.Topics) > 0 {
		sb.WriteString(fmt.Sprintf("Topics: %s\n", strings.Join(req.Topics, ", ")))
	}

	if len(req.RubricItems) > 0 {
		sb.WriteString("\nRubric:\n")
		for _, item := range req.RubricItems {
			sb.WriteString(fmt.Sprintf("- %s\n", item))
		}
	}

	if len(req.KeyPhrases) > 0 {
		sb.WriteString("\nKey requirements:\n")
		for _, phrase := range req.KeyPhrases {
			sb.WriteString(fmt.Sprintf("- %s\n", phrase))
		}
	}

	if len(req.Resources) > 0 {
		sb.WriteString("\nLinked resources:\n")
		for _, r := range req.Resources {
			if r.Title != "" {
				sb.WriteString(fmt.Sprintf("- %s (%s)\n", r.Title, r.URL))
			} else {
				sb.WriteString(fmt.Sprintf("- %s\n", r.URL))
			}
		}
	}

	if sc.Instructions != "" {
		sb.WriteString("\nFull instructions:\n")
		sb.WriteString(sc.Instructions)
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderDocumentation formats a session and its audit log as markdown.
func renderDocumentation(session *models.WorkflowSession) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Workflow %s\n\n", session.ID))
	sb.WriteString(fmt.Sprintf("- Request: %s\n", session.OriginalRequest))
	sb.WriteString(fmt.Sprintf("- Status: %s\n", session.Status))
	sb.WriteString(fmt.Sprintf("- Started: %s\n", session.StartedAt.Format(time.RFC3339)))
	if session.CompletedAt != nil {
		sb.WriteString(fmt.Sprintf("- Completed: %s\n", session.CompletedAt.Format(time.RFC3339)))
	}
	if session.Course != nil {
		sb.WriteString(fmt.Sprintf("- Course: %s\n", session.Course.Name))
	}
	if session.Assignment != nil {
		sb.WriteString(fmt.Sprintf("- Assignment: %s\n", session.Assignment.Name))
	}
	if session.Analysis != nil {
		sb.WriteString(fmt.Sprintf("- Type: %s\n", session.Analysis.Type))
		sb.WriteString(fmt.Sprintf("- Automatable: %t (%s)\n", session.Analysis.Automatable, session.Analysis.AutomatableReason))
	}
	if session.SubmissionURL != "" {
		sb.WriteString(fmt.Sprintf("- Submission: %s\n", session.SubmissionURL))
	}

	sb.WriteString("\n## Audit log\n\n")
	for _, entry := range session.Log {
		status := "ok"
		if !entry.Success {
			status = "failed"
		}
		sb.WriteString(fmt.Sprintf("- `%s` **%s** (%s): %s", entry.Timestamp.Format(time.RFC3339), entry.Action, status, entry.Details))
		if entry.Error != "" {
			sb.WriteString(fmt.Sprintf(" [%s]", entry.Error))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
