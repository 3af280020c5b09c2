package models

import (
	"time"
)

type Assignment struct {
	ID              string     `json:"id"`
	CourseID        string     `json:"course_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"` // may contain markup
	DueAt           *time.Time `json:"due_at,omitempty"`
	PointsPossible  float64    `json:"points_possible"`
	SubmissionTypes []string   `json:"submission_types"`
}

// Submission type tags as reported by the LMS.
const (
	SubmissionTypeOnlineUpload    = "online_upload"
	SubmissionTypeOnlineTextEntry = "online_text_entry"
	SubmissionTypeExternalTool    = "external_tool"
	SubmissionTypeOnlineQuiz      = "online_quiz"
	SubmissionTypeDiscussionTopic = "discussion_topic"
	SubmissionTypeOnPaper         = "on_paper"
	SubmissionTypeNone            = "none"
)

func (a *Assignment) HasSubmissionType(tag string) bool {
	for _, t := range a.SubmissionTypes {
		if t == tag {
			return true
		}
	}
	return false
}
