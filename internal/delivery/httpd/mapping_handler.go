package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courseflow/workflow-service/internal/models"
)

func (h *Handler) AutoMatchCourses(w http.ResponseWriter, r *http.Request) {
	result, err := h.mappingService.AutoMatchCourses(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, result)
}

func (h *Handler) AutoMatchAssignments(w http.ResponseWriter, r *http.Request) {
	lmsCourseID := chi.URLParam(r, "id")
	if lmsCourseID == "" {
		writeError(w, http.StatusBadRequest, "Course ID is required")
		return
	}

	result, err := h.mappingService.AutoMatchAssignments(r.Context(), lmsCourseID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, result)
}

func (h *Handler) ManualMapCourse(w http.ResponseWriter, r *http.Request) {
	var req models.ManualMapCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.LMSCourseID == "" || req.SubmissionCourseID == "" {
		writeError(w, http.StatusBadRequest, "lms_course_id and submission_course_id are required")
		return
	}

	mapping, err := h.mappingService.ManualMapCourse(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, mapping)
}

func (h *Handler) ExcludeCourse(w http.ResponseWriter, r *http.Request) {
	lmsCourseID := chi.URLParam(r, "id")
	if lmsCourseID == "" {
		writeError(w, http.StatusBadRequest, "Course ID is required")
		return
	}

	if err := h.mappingService.ExcludeCourse(r.Context(), lmsCourseID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{"lms_course_id": lmsCourseID, "excluded": true})
}

func (h *Handler) IncludeCourse(w http.ResponseWriter, r *http.Request) {
	lmsCourseID := chi.URLParam(r, "id")
	if lmsCourseID == "" {
		writeError(w, http.StatusBadRequest, "Course ID is required")
		return
	}

	if err := h.mappingService.IncludeCourse(r.Context(), lmsCourseID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{"lms_course_id": lmsCourseID, "excluded": false})
}

func (h *Handler) ListCourseMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.mappingService.ListCourseMappings(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, mappings)
}

func (h *Handler) ListAssignmentMappings(w http.ResponseWriter, r *http.Request) {
	lmsCourseID := chi.URLParam(r, "id")
	if lmsCourseID == "" {
		writeError(w, http.StatusBadRequest, "Course ID is required")
		return
	}

	mappings, err := h.mappingService.ListAssignmentMappings(r.Context(), lmsCourseID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, mappings)
}
