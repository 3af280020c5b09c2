package models

// Course is a course record from either platform. IDs are scoped to the
// platform that produced them and must never be compared across platforms.
type Course struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"course_code"`
	Term string `json:"term,omitempty"`
}

// SubmissionCourseList splits courses on the submission service by the
// role the authenticated user holds in them.
type SubmissionCourseList struct {
	Instructor []Course `json:"instructor"`
	Student    []Course `json:"student"`
}
