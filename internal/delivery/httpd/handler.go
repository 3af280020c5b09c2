package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/courseflow/workflow-service/internal/repository"
	"github.com/courseflow/workflow-service/internal/service"
	"github.com/courseflow/workflow-service/internal/service/integration"
)

type Handler struct {
	workflowService service.WorkflowService
	mappingService  service.MappingService
	analysisService service.AnalysisService
	draftService    service.DraftService
	logger          zerolog.Logger
}

func NewHandler(
	workflowService service.WorkflowService,
	mappingService service.MappingService,
	analysisService service.AnalysisService,
	draftService service.DraftService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		workflowService: workflowService,
		mappingService:  mappingService,
		analysisService: analysisService,
		draftService:    draftService,
		logger:          logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/workflows", func(r chi.Router) {
			r.Post("/", h.StartAssignment)
			r.Get("/", h.ListWorkflows)
			r.Get("/{id}", h.GetWorkflowStatus)
			r.Post("/{id}/review", h.SaveAndReview)
			r.Post("/{id}/approve", h.ApproveDraft)
			r.Post("/{id}/submit", h.SubmitAssignment)
			r.Get("/{id}/documentation", h.GetWorkflowDocumentation)
		})

		api.Route("/mappings", func(r chi.Router) {
			r.Get("/courses", h.ListCourseMappings)
			r.Post("/courses", h.ManualMapCourse)
			r.Post("/courses/auto-match", h.AutoMatchCourses)
			r.Post("/courses/{id}/exclude", h.ExcludeCourse)
			r.Post("/courses/{id}/include", h.IncludeCourse)
			r.Get("/courses/{id}/assignments", h.ListAssignmentMappings)
			r.Post("/courses/{id}/assignments/auto-match", h.AutoMatchAssignments)
		})

		api.Route("/assignments", func(r chi.Router) {
			r.Post("/analyze", h.AnalyzeAssignment)
		})

		api.Route("/drafts", func(r chi.Router) {
			r.Get("/", h.ListDrafts)
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "workflow-service",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleServiceError maps domain errors onto HTTP statuses. Anything
// unrecognized is a 500.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrDraftNotFound),
		errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoDraft),
		errors.Is(err, service.ErrDraftNotApproved),
		errors.Is(err, service.ErrSessionTerminal),
		errors.Is(err, service.ErrCourseNotMapped),
		errors.Is(err, service.ErrCourseExcluded),
		errors.Is(err, service.ErrAssignmentNotMapped):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, integration.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Unhandled service error")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}
