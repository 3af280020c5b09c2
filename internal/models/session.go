package models

import (
	"time"
)

type SessionStatus string

const (
	SessionStatusInProgress     SessionStatus = "in_progress"
	SessionStatusAwaitingReview SessionStatus = "awaiting_review"
	SessionStatusApproved       SessionStatus = "approved"
	SessionStatusSubmitted      SessionStatus = "submitted"
	SessionStatusFailed         SessionStatus = "failed"
)

func (ss SessionStatus) String() string {
	return string(ss)
}

// Terminal reports whether a session in this status accepts no further
// state transitions.
func (ss SessionStatus) Terminal() bool {
	return ss == SessionStatusSubmitted || ss == SessionStatusFailed
}

// WorkflowLogEntry is one record in a session's append-only audit log.
type WorkflowLogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Action    string                 `json:"action"`
	Details   string                 `json:"details"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Success   bool                   `json:"success"`
	Error     string                 `json:"error,omitempty"`
}

// SolutionContext gathers everything an external generator needs to draft
// a solution for the resolved assignment.
type SolutionContext struct {
	CourseName     string         `json:"course_name"`
	AssignmentName string         `json:"assignment_name"`
	Type           AssignmentType `json:"type"`
	Requirements   Requirements   `json:"requirements"`
	DueAt          *time.Time     `json:"due_at,omitempty"`
	PointsPossible float64        `json:"points_possible"`
	Instructions   string         `json:"instructions"`
}

// WorkflowSession is one end-to-end attempt to resolve, draft, and submit
// a single assignment. Sessions are never deleted; the log is the audit
// trail and every state-changing call appends to it.
type WorkflowSession struct {
	ID                   string              `json:"id"`
	StartedAt            time.Time           `json:"started_at"`
	CompletedAt          *time.Time          `json:"completed_at,omitempty"`
	Status               SessionStatus       `json:"status"`
	OriginalRequest      string              `json:"original_request"`
	Course               *Course             `json:"course,omitempty"`
	Assignment           *Assignment         `json:"assignment,omitempty"`
	SubmissionCourse     *Course             `json:"submission_course,omitempty"`
	SubmissionAssignment *Assignment         `json:"submission_assignment,omitempty"`
	Analysis             *AnalyzedAssignment `json:"analysis,omitempty"`
	SolutionContext      *SolutionContext    `json:"solution_context,omitempty"`
	Prompt               string              `json:"prompt,omitempty"`
	Draft                *Draft              `json:"draft,omitempty"`
	SubmissionURL        string              `json:"submission_url,omitempty"`
	Log                  []WorkflowLogEntry  `json:"log"`
}

// SessionSummary is the lightweight list-view shape for sessions.
type SessionSummary struct {
	ID              string        `json:"id"`
	Status          SessionStatus `json:"status"`
	OriginalRequest string        `json:"original_request"`
	CourseName      string        `json:"course_name,omitempty"`
	AssignmentName  string        `json:"assignment_name,omitempty"`
	StartedAt       time.Time     `json:"started_at"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
}

func (s *WorkflowSession) Summary() SessionSummary {
	summary := SessionSummary{
		ID:              s.ID,
		Status:          s.Status,
		OriginalRequest: s.OriginalRequest,
		StartedAt:       s.StartedAt,
		CompletedAt:     s.CompletedAt,
	}
	if s.Course != nil {
		summary.CourseName = s.Course.Name
	}
	if s.Assignment != nil {
		summary.AssignmentName = s.Assignment.Name
	}
	return summary
}
