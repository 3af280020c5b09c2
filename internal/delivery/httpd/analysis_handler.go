package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/courseflow/workflow-service/internal/models"
)

func (h *Handler) AnalyzeAssignment(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CourseID == "" || req.AssignmentID == "" {
		writeError(w, http.StatusBadRequest, "course_id and assignment_id are required")
		return
	}

	analyzed, err := h.analysisService.AnalyzeAssignment(r.Context(), req.CourseID, req.AssignmentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, analyzed)
}
