package models

import (
	"time"
)

type AssignmentType string

const (
	TypeQuiz         AssignmentType = "quiz"
	TypeExam         AssignmentType = "exam"
	TypeLab          AssignmentType = "lab"
	TypeHomework     AssignmentType = "homework"
	TypeGroupProject AssignmentType = "group_project"
	TypePresentation AssignmentType = "presentation"
	TypeDiscussion   AssignmentType = "discussion"
	TypeAttendance   AssignmentType = "attendance"
	TypeReflection   AssignmentType = "reflection"
	TypeEssay        AssignmentType = "essay"
	TypeCode         AssignmentType = "code"
	TypeUnknown      AssignmentType = "unknown"
)

func (t AssignmentType) String() string {
	return string(t)
}

func IsValidAssignmentType(t string) bool {
	switch AssignmentType(t) {
	case TypeQuiz, TypeExam, TypeLab, TypeHomework, TypeGroupProject,
		TypePresentation, TypeDiscussion, TypeAttendance, TypeReflection,
		TypeEssay, TypeCode, TypeUnknown:
		return true
	default:
		return false
	}
}

// Resource is a hyperlink extracted from an assignment description.
type Resource struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type Requirements struct {
	WordCount     int        `json:"word_count,omitempty"`
	PageCount     int        `json:"page_count,omitempty"`
	Topics        []string   `json:"topics,omitempty"`
	Citations     bool       `json:"citations"`
	CitationStyle string     `json:"citation_style,omitempty"`
	RubricItems   []string   `json:"rubric_items,omitempty"`
	Resources     []Resource `json:"resources,omitempty"`
	KeyPhrases    []string   `json:"key_phrases,omitempty"`
}

type SubmissionInfo struct {
	Types            []string   `json:"types"`
	DueAt            *time.Time `json:"due_at,omitempty"`
	PointsPossible   float64    `json:"points_possible"`
	IsExternalTool   bool       `json:"is_external_tool"`
	ExternalToolName string     `json:"external_tool_name,omitempty"`
}

// AnalyzedAssignment is a read-only snapshot derived from one Assignment
// record. It is recomputed on every classification call, never cached.
type AnalyzedAssignment struct {
	ID                string         `json:"id"`
	CourseID          string         `json:"course_id"`
	Type              AssignmentType `json:"type"`
	Automatable       bool           `json:"automatable"`
	AutomatableReason string         `json:"automatable_reason"`
	Requirements      Requirements   `json:"requirements"`
	Submission        SubmissionInfo `json:"submission"`
	RawDescription    string         `json:"raw_description,omitempty"`
	CleanDescription  string         `json:"clean_description,omitempty"`
}
