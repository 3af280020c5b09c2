package models

type StartAssignmentRequest struct {
	Request string `json:"request"`
}

type SaveReviewRequest struct {
	Content string `json:"content"`
	Format  string `json:"format,omitempty"`
}

type SubmitAssignmentRequest struct {
	FilePath string `json:"file_path,omitempty"`
}

type ManualMapCourseRequest struct {
	LMSCourseID          string `json:"lms_course_id"`
	LMSCourseName        string `json:"lms_course_name"`
	SubmissionCourseID   string `json:"submission_course_id"`
	SubmissionCourseName string `json:"submission_course_name"`
}

type AnalyzeAssignmentRequest struct {
	CourseID     string `json:"course_id"`
	AssignmentID string `json:"assignment_id"`
}

// StartAssignmentResponse reports how far the workflow got. When the
// request resolves and the assignment is automatable, Prompt carries the
// generated solution context for the external generator. When resolution
// fails on confidence, Candidates lists what was available so the caller
// can rephrase.
type StartAssignmentResponse struct {
	SessionID            string              `json:"session_id"`
	Status               SessionStatus       `json:"status"`
	Course               *Course             `json:"course,omitempty"`
	Assignment           *Assignment         `json:"assignment,omitempty"`
	Analysis             *AnalyzedAssignment `json:"analysis,omitempty"`
	Prompt               string              `json:"prompt,omitempty"`
	Message              string              `json:"message,omitempty"`
	CandidateCourses     []Course            `json:"candidate_courses,omitempty"`
	CandidateAssignments []Assignment        `json:"candidate_assignments,omitempty"`
}

type SaveReviewResponse struct {
	SessionID  string        `json:"session_id"`
	Status     SessionStatus `json:"status"`
	Draft      *Draft        `json:"draft,omitempty"`
	ReviewText string        `json:"review_text"`
}

type SubmitAssignmentResponse struct {
	SessionID     string        `json:"session_id"`
	Status        SessionStatus `json:"status"`
	SubmissionURL string        `json:"submission_url,omitempty"`
	DraftPath     string        `json:"draft_path,omitempty"`
	Message       string        `json:"message,omitempty"`
}

type UploadResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

type SubmissionFile struct {
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

type SubmissionRecord struct {
	ID          string `json:"id"`
	SubmittedAt string `json:"submitted_at"`
	Score       string `json:"score,omitempty"`
	URL         string `json:"url,omitempty"`
}
