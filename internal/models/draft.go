package models

import (
	"time"
)

type DraftStatus string

const (
	DraftStatusDraft          DraftStatus = "draft"
	DraftStatusReadyForReview DraftStatus = "ready_for_review"
	DraftStatusApproved       DraftStatus = "approved"
	DraftStatusSubmitted      DraftStatus = "submitted"
)

func (ds DraftStatus) String() string {
	return string(ds)
}

func IsValidDraftStatus(status string) bool {
	switch status {
	case "draft", "ready_for_review", "approved", "submitted":
		return true
	default:
		return false
	}
}

// Draft is a staged candidate solution for one (course, assignment) pair.
// The ID is the composite key courseID-assignmentID; saving again for the
// same pair overwrites in place and preserves CreatedAt.
type Draft struct {
	ID             string      `json:"id"`
	AssignmentID   string      `json:"assignment_id"`
	CourseID       string      `json:"course_id"`
	AssignmentName string      `json:"assignment_name"`
	Content        string      `json:"content"`
	Format         string      `json:"format"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Status         DraftStatus `json:"status"`
	Feedback       string      `json:"feedback,omitempty"`
}

func DraftID(courseID, assignmentID string) string {
	return courseID + "-" + assignmentID
}
