package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseflow/workflow-service/internal/models"
	"github.com/courseflow/workflow-service/internal/repository"
	"github.com/courseflow/workflow-service/internal/service/analyzer"
	"github.com/courseflow/workflow-service/internal/service/matcher"
)

type fakeLMSClient struct {
	courses     []models.Course
	assignments map[string][]models.Assignment
	coursesErr  error
}

func (f *fakeLMSClient) ListCourses(ctx context.Context) ([]models.Course, error) {
	if f.coursesErr != nil {
		return nil, f.coursesErr
	}
	return f.courses, nil
}

func (f *fakeLMSClient) ListAssignments(ctx context.Context, courseID string) ([]models.Assignment, error) {
	return f.assignments[courseID], nil
}

func (f *fakeLMSClient) GetAssignment(ctx context.Context, courseID, assignmentID string) (*models.Assignment, error) {
	for _, a := range f.assignments[courseID] {
		if a.ID == assignmentID {
			found := a
			return &found, nil
		}
	}
	return nil, errors.New("assignment not found")
}

type fakeSubmissionClient struct {
	courses      *models.SubmissionCourseList
	assignments  map[string][]models.Assignment
	uploadResult *models.UploadResult
	uploadErr    error
	uploaded     []models.SubmissionFile
}

func (f *fakeSubmissionClient) ListCourses(ctx context.Context) (*models.SubmissionCourseList, error) {
	if f.courses == nil {
		return &models.SubmissionCourseList{}, nil
	}
	return f.courses, nil
}

func (f *fakeSubmissionClient) ListAssignments(ctx context.Context, courseID string) ([]models.Assignment, error) {
	return f.assignments[courseID], nil
}

func (f *fakeSubmissionClient) UploadSubmission(ctx context.Context, courseID, assignmentID string, files []models.SubmissionFile) (*models.UploadResult, error) {
	f.uploaded = append(f.uploaded, files...)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.uploadResult, nil
}

func (f *fakeSubmissionClient) ListSubmissionHistory(ctx context.Context, courseID, assignmentID string) ([]models.SubmissionRecord, error) {
	return nil, nil
}

type workflowFixture struct {
	svc         WorkflowService
	mappings    repository.MappingRepository
	lms         *fakeLMSClient
	submissions *fakeSubmissionClient
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	lms := &fakeLMSClient{
		courses: []models.Course{
			{ID: "c1", Name: "CS 170: Efficient Algorithms", Code: "CS 170"},
			{ID: "c2", Name: "History 7B", Code: "HIST 7B"},
		},
		assignments: map[string][]models.Assignment{
			"c1": {
				{
					ID:              "a1",
					CourseID:        "c1",
					Name:            "Homework 17",
					Description:     "Solve the problems and upload a PDF.",
					SubmissionTypes: []string{models.SubmissionTypeOnlineUpload},
				},
				{
					ID:       "a2",
					CourseID: "c1",
					Name:     "Midterm Exam 1",
				},
			},
		},
	}
	submissions := &fakeSubmissionClient{
		uploadResult: &models.UploadResult{
			Success: true,
			URL:     "https://submissions.example/courses/sc1/assignments/sa1/submissions/42",
		},
	}

	sessionRepo := repository.NewSessionRepository(zerolog.Nop())
	mappingRepo := repository.NewMappingRepository(zerolog.Nop())
	draftSvc := NewDraftService(repository.NewDraftRepository(zerolog.Nop()), t.TempDir(), zerolog.Nop())

	svc := NewWorkflowService(
		sessionRepo,
		mappingRepo,
		matcher.New(matcher.MatcherConfig{}, zerolog.Nop()),
		analyzer.NewClassifier(zerolog.Nop()),
		draftSvc,
		lms,
		submissions,
		zerolog.Nop(),
	)

	return &workflowFixture{
		svc:         svc,
		mappings:    mappingRepo,
		lms:         lms,
		submissions: submissions,
	}
}

func (f *workflowFixture) mapDefaults(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.mappings.UpsertCourseMapping(ctx, models.CourseMapping{
		LMSCourseID:          "c1",
		LMSCourseName:        "CS 170: Efficient Algorithms",
		SubmissionCourseID:   "sc1",
		SubmissionCourseName: "CS 170 Sp25",
	}))
	require.NoError(t, f.mappings.ReplaceAssignmentMappings(ctx, "c1", []models.AssignmentMapping{
		{LMSAssignmentID: "a1", LMSAssignmentName: "Homework 17", SubmissionAssignmentID: "sa1", SubmissionAssignmentName: "HW 17"},
	}))
}

func (f *workflowFixture) startHomework(t *testing.T) string {
	t.Helper()

	resp, err := f.svc.StartAssignment(context.Background(), "hw 17 from cs 170")
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusInProgress, resp.Status)
	return resp.SessionID
}

func logActions(session *models.WorkflowSession) []string {
	actions := make([]string, 0, len(session.Log))
	for _, entry := range session.Log {
		actions = append(actions, entry.Action)
	}
	return actions
}

func TestWorkflowService_StartAssignment(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves and prepares an automatable assignment", func(t *testing.T) {
		f := newWorkflowFixture(t)

		resp, err := f.svc.StartAssignment(ctx, "hw 17 from cs 170")
		require.NoError(t, err)

		assert.Equal(t, models.SessionStatusInProgress, resp.Status)
		require.NotNil(t, resp.Course)
		assert.Equal(t, "c1", resp.Course.ID)
		require.NotNil(t, resp.Assignment)
		assert.Equal(t, "a1", resp.Assignment.ID)
		require.NotNil(t, resp.Analysis)
		assert.True(t, resp.Analysis.Automatable)
		assert.NotEmpty(t, resp.Prompt)

		session, err := f.svc.GetWorkflowStatus(ctx, resp.SessionID)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"session_created",
			"parse_request",
			"course_resolved",
			"assignment_resolved",
			"assignment_analyzed",
			"prompt_generated",
		}, logActions(session))
	})

	t.Run("unparseable request fails the session without an error", func(t *testing.T) {
		f := newWorkflowFixture(t)

		resp, err := f.svc.StartAssignment(ctx, "do my homework")
		require.NoError(t, err)

		assert.Equal(t, models.SessionStatusFailed, resp.Status)
		assert.Contains(t, resp.Message, "could not parse request")

		session, err := f.svc.GetWorkflowStatus(ctx, resp.SessionID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusFailed, session.Status)
	})

	t.Run("unresolvable course returns the candidate list", func(t *testing.T) {
		f := newWorkflowFixture(t)

		resp, err := f.svc.StartAssignment(ctx, "hw 1 from basketweaving 999")
		require.NoError(t, err)

		assert.Equal(t, models.SessionStatusFailed, resp.Status)
		assert.Contains(t, resp.Message, "no course matched")
		assert.Len(t, resp.CandidateCourses, 2)
	})

	t.Run("unresolvable assignment returns the candidate list", func(t *testing.T) {
		f := newWorkflowFixture(t)

		resp, err := f.svc.StartAssignment(ctx, "capstone thesis from cs 170")
		require.NoError(t, err)

		assert.Equal(t, models.SessionStatusFailed, resp.Status)
		assert.Contains(t, resp.Message, "no assignment matched")
		require.NotNil(t, resp.Course)
		assert.Len(t, resp.CandidateAssignments, 2)
	})

	t.Run("non-automatable assignment fails but keeps resolved state", func(t *testing.T) {
		f := newWorkflowFixture(t)

		resp, err := f.svc.StartAssignment(ctx, "midterm exam from cs 170")
		require.NoError(t, err)

		assert.Equal(t, models.SessionStatusFailed, resp.Status)
		assert.Contains(t, resp.Message, "not automatable")
		require.NotNil(t, resp.Assignment)
		assert.Equal(t, "a2", resp.Assignment.ID)
		require.NotNil(t, resp.Analysis)
		assert.Equal(t, models.TypeQuiz, resp.Analysis.Type)

		session, err := f.svc.GetWorkflowStatus(ctx, resp.SessionID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusFailed, session.Status)
		assert.NotNil(t, session.Assignment)
	})

	t.Run("lms outage fails the session without an error", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.lms.coursesErr = errors.New("connection refused")

		resp, err := f.svc.StartAssignment(ctx, "hw 17 from cs 170")
		require.NoError(t, err)

		assert.Equal(t, models.SessionStatusFailed, resp.Status)
		assert.Contains(t, resp.Message, "failed to fetch courses")
	})
}

func TestWorkflowService_SaveAndReview(t *testing.T) {
	ctx := context.Background()

	t.Run("moves the session to awaiting_review", func(t *testing.T) {
		f := newWorkflowFixture(t)
		sessionID := f.startHomework(t)

		resp, err := f.svc.SaveAndReview(ctx, sessionID, "solution body", "markdown")
		require.NoError(t, err)

		assert.Equal(t, models.SessionStatusAwaitingReview, resp.Status)
		require.NotNil(t, resp.Draft)
		assert.Equal(t, models.DraftStatusReadyForReview, resp.Draft.Status)
		assert.Contains(t, resp.ReviewText, "solution body")
		assert.Contains(t, resp.ReviewText, "Homework 17")
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newWorkflowFixture(t)

		_, err := f.svc.SaveAndReview(ctx, "wf-missing", "content", "")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestWorkflowService_ApproveDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("approves a reviewed draft", func(t *testing.T) {
		f := newWorkflowFixture(t)
		sessionID := f.startHomework(t)

		_, err := f.svc.SaveAndReview(ctx, sessionID, "solution body", "")
		require.NoError(t, err)

		session, err := f.svc.ApproveDraft(ctx, sessionID)
		require.NoError(t, err)

		assert.Equal(t, models.SessionStatusApproved, session.Status)
		require.NotNil(t, session.Draft)
		assert.Equal(t, models.DraftStatusApproved, session.Draft.Status)
	})

	t.Run("refusal without a draft leaves the status untouched", func(t *testing.T) {
		f := newWorkflowFixture(t)
		sessionID := f.startHomework(t)

		_, err := f.svc.ApproveDraft(ctx, sessionID)
		assert.ErrorIs(t, err, ErrNoDraft)

		session, err := f.svc.GetWorkflowStatus(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusInProgress, session.Status)

		last := session.Log[len(session.Log)-1]
		assert.Equal(t, "draft_approved", last.Action)
		assert.False(t, last.Success)
	})
}

func TestWorkflowService_SubmitAssignment(t *testing.T) {
	ctx := context.Background()

	approve := func(t *testing.T, f *workflowFixture) string {
		t.Helper()
		sessionID := f.startHomework(t)
		_, err := f.svc.SaveAndReview(ctx, sessionID, "solution body", "markdown")
		require.NoError(t, err)
		_, err = f.svc.ApproveDraft(ctx, sessionID)
		require.NoError(t, err)
		return sessionID
	}

	t.Run("uploads the approved draft and completes the session", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.mapDefaults(t)
		sessionID := approve(t, f)

		resp, err := f.svc.SubmitAssignment(ctx, sessionID, "")
		require.NoError(t, err)

		assert.Equal(t, models.SessionStatusSubmitted, resp.Status)
		assert.Equal(t, "https://submissions.example/courses/sc1/assignments/sa1/submissions/42", resp.SubmissionURL)
		assert.NotEmpty(t, resp.DraftPath)

		require.Len(t, f.submissions.uploaded, 1)
		assert.Equal(t, "solution body", string(f.submissions.uploaded[0].Content))

		session, err := f.svc.GetWorkflowStatus(ctx, sessionID)
		require.NoError(t, err)
		assert.True(t, session.Status.Terminal())
		require.NotNil(t, session.CompletedAt)
		assert.Equal(t, models.DraftStatusSubmitted, session.Draft.Status)
		assert.Equal(t, "submission_recorded", session.Log[len(session.Log)-1].Action)
	})

	t.Run("refused before approval", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.mapDefaults(t)
		sessionID := f.startHomework(t)
		_, err := f.svc.SaveAndReview(ctx, sessionID, "solution body", "")
		require.NoError(t, err)

		_, err = f.svc.SubmitAssignment(ctx, sessionID, "")
		assert.ErrorIs(t, err, ErrDraftNotApproved)

		session, err := f.svc.GetWorkflowStatus(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusAwaitingReview, session.Status)
	})

	t.Run("refused without a draft", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.mapDefaults(t)
		sessionID := f.startHomework(t)

		_, err := f.svc.SubmitAssignment(ctx, sessionID, "")
		assert.ErrorIs(t, err, ErrNoDraft)
	})

	t.Run("refused when the course is unmapped", func(t *testing.T) {
		f := newWorkflowFixture(t)
		sessionID := approve(t, f)

		_, err := f.svc.SubmitAssignment(ctx, sessionID, "")
		assert.ErrorIs(t, err, ErrCourseNotMapped)

		session, err := f.svc.GetWorkflowStatus(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusApproved, session.Status)
	})

	t.Run("refused when the course is excluded", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.mapDefaults(t)
		require.NoError(t, f.mappings.SetCourseExcluded(ctx, "c1", true))
		sessionID := approve(t, f)

		_, err := f.svc.SubmitAssignment(ctx, sessionID, "")
		assert.ErrorIs(t, err, ErrCourseExcluded)
	})

	t.Run("refused when the assignment is unmapped", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.mapDefaults(t)
		require.NoError(t, f.mappings.ReplaceAssignmentMappings(ctx, "c1", nil))
		sessionID := approve(t, f)

		_, err := f.svc.SubmitAssignment(ctx, sessionID, "")
		assert.ErrorIs(t, err, ErrAssignmentNotMapped)
	})

	t.Run("upload failure is terminal and reports the draft path", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.mapDefaults(t)
		f.submissions.uploadErr = errors.New("503 service unavailable")
		sessionID := approve(t, f)

		resp, err := f.svc.SubmitAssignment(ctx, sessionID, "")
		require.NoError(t, err)

		assert.NotEmpty(t, resp.DraftPath)
		assert.Contains(t, resp.Message, "manual submission")

		session, err := f.svc.GetWorkflowStatus(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusFailed, session.Status)
	})

	t.Run("redirect back to the course page counts as a failed upload", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.mapDefaults(t)
		f.submissions.uploadResult = &models.UploadResult{
			Success: true,
			URL:     "https://submissions.example/courses/sc1",
		}
		sessionID := approve(t, f)

		resp, err := f.svc.SubmitAssignment(ctx, sessionID, "")
		require.NoError(t, err)

		assert.Contains(t, resp.Message, "upload rejected")

		session, err := f.svc.GetWorkflowStatus(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusFailed, session.Status)
	})

	t.Run("terminal sessions reject further calls", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.mapDefaults(t)
		sessionID := approve(t, f)

		_, err := f.svc.SubmitAssignment(ctx, sessionID, "")
		require.NoError(t, err)

		_, err = f.svc.SaveAndReview(ctx, sessionID, "more content", "")
		assert.ErrorIs(t, err, ErrSessionTerminal)

		_, err = f.svc.SubmitAssignment(ctx, sessionID, "")
		assert.ErrorIs(t, err, ErrSessionTerminal)
	})
}

func TestWorkflowService_ListWorkflows(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	f.mapDefaults(t)

	active := f.startHomework(t)

	failedResp, err := f.svc.StartAssignment(ctx, "do my homework")
	require.NoError(t, err)

	all, err := f.svc.ListWorkflows(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	activeOnly, err := f.svc.ListWorkflows(ctx, true)
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	assert.Equal(t, active, activeOnly[0].ID)
	assert.NotEqual(t, failedResp.SessionID, activeOnly[0].ID)
}

func TestWorkflowService_GetWorkflowDocumentation(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	sessionID := f.startHomework(t)
	_, err := f.svc.SaveAndReview(ctx, sessionID, "solution body", "")
	require.NoError(t, err)

	doc, err := f.svc.GetWorkflowDocumentation(ctx, sessionID)
	require.NoError(t, err)

	assert.Contains(t, doc, sessionID)
	assert.Contains(t, doc, "hw 17 from cs 170")
	assert.Contains(t, doc, "session_created")
	assert.Contains(t, doc, "draft_saved")

	_, err = f.svc.GetWorkflowDocumentation(ctx, "wf-missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
