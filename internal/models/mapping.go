package models

type CourseMapping struct {
	LMSCourseID          string `json:"lms_course_id"`
	LMSCourseName        string `json:"lms_course_name"`
	SubmissionCourseID   string `json:"submission_course_id"`
	SubmissionCourseName string `json:"submission_course_name"`
	Excluded             bool   `json:"excluded"`
}

type AssignmentMapping struct {
	LMSAssignmentID          string `json:"lms_assignment_id"`
	LMSAssignmentName        string `json:"lms_assignment_name"`
	SubmissionAssignmentID   string `json:"submission_assignment_id"`
	SubmissionAssignmentName string `json:"submission_assignment_name"`
}

// CourseMatchResult is the outcome of one catalog-to-catalog course match.
// Unmatched lists source courses that scored below the acceptance threshold.
type CourseMatchResult struct {
	Mappings  []CourseMapping `json:"mappings"`
	Unmatched []Course        `json:"unmatched"`
}

type AssignmentMatchResult struct {
	LMSCourseID string              `json:"lms_course_id"`
	Mappings    []AssignmentMapping `json:"mappings"`
	Unmatched   []Assignment        `json:"unmatched"`
}

// CourseResolution is the best single match for an interactive course query.
type CourseResolution struct {
	Course     Course `json:"course"`
	Confidence int    `json:"confidence"`
}

type AssignmentResolution struct {
	Assignment Assignment `json:"assignment"`
	Confidence int        `json:"confidence"`
}
