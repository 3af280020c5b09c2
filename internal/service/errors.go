package service

import (
	"errors"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrCourseNotMapped     = errors.New("course is not mapped to a submission-service course")
	ErrCourseExcluded      = errors.New("course is excluded from automation")
	ErrAssignmentNotMapped = errors.New("assignment is not mapped to a submission-service assignment")
	ErrDraftNotFound       = errors.New("draft not found")
	ErrNoDraft             = errors.New("session has no draft")
	ErrDraftNotApproved    = errors.New("draft has not been approved")
	ErrSessionTerminal     = errors.New("session is in a terminal state")
)
