package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courseflow/workflow-service/internal/models"
)

func (h *Handler) StartAssignment(w http.ResponseWriter, r *http.Request) {
	var req models.StartAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Request == "" {
		writeError(w, http.StatusBadRequest, "request is required")
		return
	}

	response, err := h.workflowService.StartAssignment(r.Context(), req.Request)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) SaveAndReview(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	var req models.SaveReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	response, err := h.workflowService.SaveAndReview(r.Context(), sessionID, req.Content, req.Format)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) ApproveDraft(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	session, err := h.workflowService.ApproveDraft(r.Context(), sessionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, session)
}

func (h *Handler) SubmitAssignment(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	var req models.SubmitAssignmentRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	response, err := h.workflowService.SubmitAssignment(r.Context(), sessionID, req.FilePath)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, response)
}

func (h *Handler) GetWorkflowStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	session, err := h.workflowService.GetWorkflowStatus(r.Context(), sessionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, session)
}

func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"

	summaries, err := h.workflowService.ListWorkflows(r.Context(), activeOnly)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, summaries)
}

func (h *Handler) GetWorkflowDocumentation(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	doc, err := h.workflowService.GetWorkflowDocumentation(r.Context(), sessionID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}

func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.draftService.ListDrafts(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, drafts)
}
