package httpd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseflow/workflow-service/internal/models"
	"github.com/courseflow/workflow-service/internal/repository"
	"github.com/courseflow/workflow-service/internal/service"
	"github.com/courseflow/workflow-service/internal/service/analyzer"
	"github.com/courseflow/workflow-service/internal/service/matcher"
)

type stubLMSClient struct {
	courses     []models.Course
	assignments map[string][]models.Assignment
}

func (s *stubLMSClient) ListCourses(ctx context.Context) ([]models.Course, error) {
	return s.courses, nil
}

func (s *stubLMSClient) ListAssignments(ctx context.Context, courseID string) ([]models.Assignment, error) {
	return s.assignments[courseID], nil
}

func (s *stubLMSClient) GetAssignment(ctx context.Context, courseID, assignmentID string) (*models.Assignment, error) {
	for _, a := range s.assignments[courseID] {
		if a.ID == assignmentID {
			found := a
			return &found, nil
		}
	}
	return nil, errors.New("assignment not found")
}

type stubSubmissionClient struct {
	courses     *models.SubmissionCourseList
	assignments map[string][]models.Assignment
}

func (s *stubSubmissionClient) ListCourses(ctx context.Context) (*models.SubmissionCourseList, error) {
	return s.courses, nil
}

func (s *stubSubmissionClient) ListAssignments(ctx context.Context, courseID string) ([]models.Assignment, error) {
	return s.assignments[courseID], nil
}

func (s *stubSubmissionClient) UploadSubmission(ctx context.Context, courseID, assignmentID string, files []models.SubmissionFile) (*models.UploadResult, error) {
	return &models.UploadResult{Success: true, URL: "https://submissions.example/ok"}, nil
}

func (s *stubSubmissionClient) ListSubmissionHistory(ctx context.Context, courseID, assignmentID string) ([]models.SubmissionRecord, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	lms := &stubLMSClient{
		courses: []models.Course{
			{ID: "c1", Name: "CS 170: Efficient Algorithms", Code: "CS 170"},
		},
		assignments: map[string][]models.Assignment{
			"c1": {
				{
					ID:              "a1",
					CourseID:        "c1",
					Name:            "Homework 3",
					Description:     "Upload your solutions.",
					SubmissionTypes: []string{models.SubmissionTypeOnlineUpload},
				},
			},
		},
	}
	submissions := &stubSubmissionClient{
		courses: &models.SubmissionCourseList{
			Student: []models.Course{{ID: "sub-1", Name: "CS 170 Efficient Algorithms"}},
		},
		assignments: map[string][]models.Assignment{
			"sub-1": {{ID: "sa-1", Name: "Homework 3"}},
		},
	}

	logger := zerolog.Nop()
	sessionRepo := repository.NewSessionRepository(logger)
	mappingRepo := repository.NewMappingRepository(logger)
	draftRepo := repository.NewDraftRepository(logger)

	entityMatcher := matcher.New(matcher.MatcherConfig{}, logger)
	classifier := analyzer.NewClassifier(logger)
	draftService := service.NewDraftService(draftRepo, t.TempDir(), logger)

	handler := NewHandler(
		service.NewWorkflowService(sessionRepo, mappingRepo, entityMatcher, classifier, draftService, lms, submissions, logger),
		service.NewMappingService(mappingRepo, entityMatcher, lms, submissions, logger),
		service.NewAnalysisService(lms, classifier, logger),
		draftService,
		logger,
	)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestStartAssignmentEndpoint(t *testing.T) {
	t.Run("starts a workflow", func(t *testing.T) {
		router := newTestRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/workflows", models.StartAssignmentRequest{
			Request: "hw 3 from cs 170",
		})

		require.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Success bool                           `json:"success"`
			Data    models.StartAssignmentResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.True(t, envelope.Success)
		assert.Equal(t, models.SessionStatusInProgress, envelope.Data.Status)
		assert.NotEmpty(t, envelope.Data.SessionID)
		assert.NotEmpty(t, envelope.Data.Prompt)
	})

	t.Run("rejects an empty request", func(t *testing.T) {
		router := newTestRouter(t)

		rec := doJSON(t, router, http.MethodPost, "/api/v1/workflows", models.StartAssignmentRequest{})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		router := newTestRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/workflows", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestWorkflowLifecycleEndpoints(t *testing.T) {
	router := newTestRouter(t)

	start := doJSON(t, router, http.MethodPost, "/api/v1/workflows", models.StartAssignmentRequest{
		Request: "hw 3 from cs 170",
	})
	require.Equal(t, http.StatusOK, start.Code)

	var startEnvelope struct {
		Data models.StartAssignmentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(start.Body.Bytes(), &startEnvelope))
	sessionID := startEnvelope.Data.SessionID

	t.Run("approve before review conflicts", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/workflows/"+sessionID+"/approve", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("review then approve", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/workflows/"+sessionID+"/review", models.SaveReviewRequest{
			Content: "solution body",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, router, http.MethodPost, "/api/v1/workflows/"+sessionID+"/approve", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("submit without a course mapping conflicts", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/workflows/"+sessionID+"/submit", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("submit after auto-match succeeds", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/mappings/courses/auto-match", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, router, http.MethodPost, "/api/v1/mappings/courses/c1/assignments/auto-match", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, router, http.MethodPost, "/api/v1/workflows/"+sessionID+"/submit", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Data models.SubmitAssignmentResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, models.SessionStatusSubmitted, envelope.Data.Status)
		assert.Equal(t, "https://submissions.example/ok", envelope.Data.SubmissionURL)
	})

	t.Run("status and documentation", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/workflows/"+sessionID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), sessionID)

		rec = doJSON(t, router, http.MethodGet, "/api/v1/workflows/"+sessionID+"/documentation", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "# Workflow "+sessionID)
	})

	t.Run("unknown session is a 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/workflows/wf-missing", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestMappingEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("auto-match courses", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/mappings/courses/auto-match", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Data models.CourseMatchResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		require.Len(t, envelope.Data.Mappings, 1)
		assert.Equal(t, "sub-1", envelope.Data.Mappings[0].SubmissionCourseID)
	})

	t.Run("list course mappings", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/v1/mappings/courses", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "sub-1")
	})

	t.Run("exclude and include", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/mappings/courses/c1/exclude", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, router, http.MethodPost, "/api/v1/mappings/courses/c1/include", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("exclude unknown course is a 404", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/mappings/courses/ghost/exclude", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("manual mapping validation", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/mappings/courses", models.ManualMapCourseRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAnalyzeEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("classifies a known assignment", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/assignments/analyze", models.AnalyzeAssignmentRequest{
			CourseID:     "c1",
			AssignmentID: "a1",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Data models.AnalyzedAssignment `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, models.TypeHomework, envelope.Data.Type)
		assert.True(t, envelope.Data.Automatable)
	})

	t.Run("missing ids are rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/assignments/analyze", models.AnalyzeAssignmentRequest{
			CourseID: "c1",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListDraftsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/drafts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}
