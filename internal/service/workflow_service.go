package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/courseflow/workflow-service/internal/models"
	"github.com/courseflow/workflow-service/internal/repository"
	"github.com/courseflow/workflow-service/internal/service/analyzer"
	"github.com/courseflow/workflow-service/internal/service/integration"
	"github.com/courseflow/workflow-service/internal/service/matcher"
)

// WorkflowService drives one assignment from natural-language request to
// submission. Each session is a state machine (in_progress →
// awaiting_review → approved → submitted, failed from anywhere) and
// every state-changing call appends to the session's audit log.
type WorkflowService interface {
	StartAssignment(ctx context.Context, request string) (*models.StartAssignmentResponse, error)
	SaveAndReview(ctx context.Context, sessionID, content, format string) (*models.SaveReviewResponse, error)
	ApproveDraft(ctx context.Context, sessionID string) (*models.WorkflowSession, error)
	SubmitAssignment(ctx context.Context, sessionID, filePath string) (*models.SubmitAssignmentResponse, error)
	GetWorkflowStatus(ctx context.Context, sessionID string) (*models.WorkflowSession, error)
	ListWorkflows(ctx context.Context, activeOnly bool) ([]models.SessionSummary, error)
	GetWorkflowDocumentation(ctx context.Context, sessionID string) (string, error)
}

type workflowService struct {
	sessionRepo      repository.SessionRepository
	mappingRepo      repository.MappingRepository
	entityMatcher    matcher.Matcher
	classifier       analyzer.Classifier
	draftService     DraftService
	lmsClient        integration.LMSClient
	submissionClient integration.SubmissionClient
	logger           zerolog.Logger
}

func NewWorkflowService(
	sessionRepo repository.SessionRepository,
	mappingRepo repository.MappingRepository,
	entityMatcher matcher.Matcher,
	classifier analyzer.Classifier,
	draftService DraftService,
	lmsClient integration.LMSClient,
	submissionClient integration.SubmissionClient,
	logger zerolog.Logger,
) WorkflowService {
	return &workflowService{
		sessionRepo:      sessionRepo,
		mappingRepo:      mappingRepo,
		entityMatcher:    entityMatcher,
		classifier:       classifier,
		draftService:     draftService,
		lmsClient:        lmsClient,
		submissionClient: submissionClient,
		logger:           logger,
	}
}

// newSessionID builds a unique, time-ordered session id.
func newSessionID() string {
	return fmt.Sprintf("wf-%d-%s", time.Now().UnixNano(), uuid.NewString()[:8])
}

// StartAssignment resolves a natural-language request to a specific LMS
// assignment, classifies it, and prepares the solution prompt. Domain
// failures (unparseable request, no confident match, not automatable)
// come back as a structured response describing the failed session, not
// as an error; the error return is reserved for store failures.
func (s *workflowService) StartAssignment(ctx context.Context, request string) (*models.StartAssignmentResponse, error) {
	session := &models.WorkflowSession{
		ID:              newSessionID(),
		StartedAt:       time.Now(),
		Status:          models.SessionStatusInProgress,
		OriginalRequest: request,
	}
	s.appendLog(session, "session_created", fmt.Sprintf("Started workflow for request: %s", request), nil, true, "")

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	parsed, err := parseRequest(request)
	if err != nil {
		s.recordError(ctx, session, "parse_request", err.Error())
		return &models.StartAssignmentResponse{
			SessionID: session.ID,
			Status:    session.Status,
			Message:   err.Error(),
		}, nil
	}
	s.appendLog(session, "parse_request", fmt.Sprintf("Parsed course query %q, assignment query %q", parsed.CourseQuery, parsed.AssignmentQuery), nil, true, "")

	courses, err := s.lmsClient.ListCourses(ctx)
	if err != nil {
		s.recordError(ctx, session, "fetch_courses", err.Error())
		return &models.StartAssignmentResponse{
			SessionID: session.ID,
			Status:    session.Status,
			Message:   fmt.Sprintf("failed to fetch courses: %v", err),
		}, nil
	}

	courseRes := s.entityMatcher.ResolveCourse(parsed.CourseQuery, courses)
	if courseRes == nil {
		msg := fmt.Sprintf("no course matched %q with enough confidence", parsed.CourseQuery)
		s.recordError(ctx, session, "resolve_course", msg)
		return &models.StartAssignmentResponse{
			SessionID:        session.ID,
			Status:           session.Status,
			Message:          msg,
			CandidateCourses: courses,
		}, nil
	}

	course := courseRes.Course
	session.Course = &course
	s.appendLog(session, "course_resolved", fmt.Sprintf("Resolved course %q", course.Name), map[string]interface{}{
		"course_id":  course.ID,
		"confidence": courseRes.Confidence,
	}, true, "")

	assignments, err := s.lmsClient.ListAssignments(ctx, course.ID)
	if err != nil {
		s.recordError(ctx, session, "fetch_assignments", err.Error())
		return &models.StartAssignmentResponse{
			SessionID: session.ID,
			Status:    session.Status,
			Course:    session.Course,
			Message:   fmt.Sprintf("failed to fetch assignments: %v", err),
		}, nil
	}

	assignmentRes := s.entityMatcher.ResolveAssignment(parsed.AssignmentQuery, assignments)
	if assignmentRes == nil {
		msg := fmt.Sprintf("no assignment matched %q with enough confidence", parsed.AssignmentQuery)
		s.recordError(ctx, session, "resolve_assignment", msg)
		return &models.StartAssignmentResponse{
			SessionID:            session.ID,
			Status:               session.Status,
			Course:               session.Course,
			Message:              msg,
			CandidateAssignments: assignments,
		}, nil
	}

	assignment, err := s.lmsClient.GetAssignment(ctx, course.ID, assignmentRes.Assignment.ID)
	if err != nil {
		s.recordError(ctx, session, "fetch_assignment_detail", err.Error())
		return &models.StartAssignmentResponse{
			SessionID: session.ID,
			Status:    session.Status,
			Course:    session.Course,
			Message:   fmt.Sprintf("failed to fetch assignment detail: %v", err),
		}, nil
	}

	session.Assignment = assignment
	s.appendLog(session, "assignment_resolved", fmt.Sprintf("Resolved assignment %q", assignment.Name), map[string]interface{}{
		"assignment_id": assignment.ID,
		"confidence":    assignmentRes.Confidence,
	}, true, "")

	analysis := s.classifier.Classify(assignment, course.ID)
	session.Analysis = analysis
	s.appendLog(session, "assignment_analyzed", fmt.Sprintf("Classified as %s", analysis.Type), map[string]interface{}{
		"type":        analysis.Type.String(),
		"automatable": analysis.Automatable,
	}, true, "")

	if !analysis.Automatable {
		msg := fmt.Sprintf("assignment is not automatable: %s", analysis.AutomatableReason)
		s.recordError(ctx, session, "automatability_check", msg)
		return &models.StartAssignmentResponse{
			SessionID:  session.ID,
			Status:     session.Status,
			Course:     session.Course,
			Assignment: session.Assignment,
			Analysis:   analysis,
			Message:    msg,
		}, nil
	}

	session.SolutionContext = buildSolutionContext(course.Name, assignment, analysis)
	session.Prompt = buildPrompt(session.SolutionContext)
	s.appendLog(session, "prompt_generated", "Prepared solution context and prompt", nil, true, "")

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Str("course", course.Name).
		Str("assignment", assignment.Name).
		Msg("Workflow started")

	return &models.StartAssignmentResponse{
		SessionID:  session.ID,
		Status:     session.Status,
		Course:     session.Course,
		Assignment: session.Assignment,
		Analysis:   analysis,
		Prompt:     session.Prompt,
		Message:    "assignment resolved; awaiting externally generated draft",
	}, nil
}

// SaveAndReview stores externally generated draft content for the
// session's assignment and moves the session to awaiting_review.
func (s *workflowService) SaveAndReview(ctx context.Context, sessionID, content, format string) (*models.SaveReviewResponse, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, ErrSessionTerminal
	}
	if session.Course == nil || session.Assignment == nil {
		return nil, fmt.Errorf("session %s has no resolved assignment", sessionID)
	}

	draft, err := s.draftService.SaveDraft(ctx, session.Course.ID, session.Assignment.ID, session.Assignment.Name, content, format)
	if err != nil {
		s.recordError(ctx, session, "draft_saved", err.Error())
		return nil, err
	}

	draft, err = s.draftService.SetDraftStatus(ctx, session.Course.ID, session.Assignment.ID, models.DraftStatusReadyForReview)
	if err != nil {
		s.recordError(ctx, session, "draft_saved", err.Error())
		return nil, err
	}

	session.Draft = draft
	session.Status = models.SessionStatusAwaitingReview
	s.appendLog(session, "draft_saved", fmt.Sprintf("Draft saved (%d bytes), awaiting review", len(content)), map[string]interface{}{
		"draft_id": draft.ID,
	}, true, "")

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return &models.SaveReviewResponse{
		SessionID:  session.ID,
		Status:     session.Status,
		Draft:      draft,
		ReviewText: s.draftService.RenderReview(draft),
	}, nil
}

// ApproveDraft marks the session's draft as human-approved. Without a
// draft present the session status is left untouched; the refused call
// is still logged.
func (s *workflowService) ApproveDraft(ctx context.Context, sessionID string) (*models.WorkflowSession, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, ErrSessionTerminal
	}

	if session.Draft == nil {
		s.appendLog(session, "draft_approved", "Approval refused", nil, false, ErrNoDraft.Error())
		if err := s.sessionRepo.Update(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}
		return session, ErrNoDraft
	}

	draft, err := s.draftService.SetDraftStatus(ctx, session.Course.ID, session.Assignment.ID, models.DraftStatusApproved)
	if err != nil {
		return nil, err
	}

	session.Draft = draft
	session.Status = models.SessionStatusApproved
	s.appendLog(session, "draft_approved", "Draft approved for submission", nil, true, "")

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return session, nil
}

// SubmitAssignment uploads the approved draft to the submission service.
// The target course and assignment come from the mapping store; a missing
// mapping is reported without failing the session so the operator can run
// auto-match and retry. Upload failures are terminal and carry the local
// draft path for manual submission.
func (s *workflowService) SubmitAssignment(ctx context.Context, sessionID, filePath string) (*models.SubmitAssignmentResponse, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, ErrSessionTerminal
	}

	if session.Draft == nil {
		s.appendLog(session, "submit_assignment", "Submission refused", nil, false, ErrNoDraft.Error())
		s.sessionRepo.Update(ctx, session)
		return nil, ErrNoDraft
	}
	if session.Status != models.SessionStatusApproved {
		s.appendLog(session, "submit_assignment", "Submission refused", nil, false, ErrDraftNotApproved.Error())
		s.sessionRepo.Update(ctx, session)
		return nil, ErrDraftNotApproved
	}

	courseMapping, err := s.mappingRepo.GetCourseMappingByLMSID(ctx, session.Course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up course mapping: %w", err)
	}
	if courseMapping == nil {
		s.appendLog(session, "resolve_submission_target", "Submission refused", nil, false, ErrCourseNotMapped.Error())
		s.sessionRepo.Update(ctx, session)
		return nil, ErrCourseNotMapped
	}
	if courseMapping.Excluded {
		s.appendLog(session, "resolve_submission_target", "Submission refused", nil, false, ErrCourseExcluded.Error())
		s.sessionRepo.Update(ctx, session)
		return nil, ErrCourseExcluded
	}

	assignmentMapping, err := s.mappingRepo.GetAssignmentMappingByLMSID(ctx, session.Course.ID, session.Assignment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up assignment mapping: %w", err)
	}
	if assignmentMapping == nil {
		s.appendLog(session, "resolve_submission_target", "Submission refused", nil, false, ErrAssignmentNotMapped.Error())
		s.sessionRepo.Update(ctx, session)
		return nil, ErrAssignmentNotMapped
	}

	s.appendLog(session, "resolve_submission_target", fmt.Sprintf("Submitting to %q / %q", courseMapping.SubmissionCourseName, assignmentMapping.SubmissionAssignmentName), map[string]interface{}{
		"submission_course_id":     courseMapping.SubmissionCourseID,
		"submission_assignment_id": assignmentMapping.SubmissionAssignmentID,
	}, true, "")

	draftPath := filePath
	var fileContent []byte
	var fileName string

	if draftPath == "" {
		draftPath, err = s.draftService.WriteToFile(session.Draft)
		if err != nil {
			s.recordError(ctx, session, "write_draft", err.Error())
			return nil, err
		}
	}

	fileContent, err = os.ReadFile(draftPath)
	if err != nil {
		s.recordError(ctx, session, "read_submission_file", err.Error())
		return nil, fmt.Errorf("failed to read submission file: %w", err)
	}
	fileName = filepath.Base(draftPath)

	files := []models.SubmissionFile{{Name: fileName, Content: fileContent}}
	result, err := s.submissionClient.UploadSubmission(ctx, courseMapping.SubmissionCourseID, assignmentMapping.SubmissionAssignmentID, files)
	if err != nil {
		msg := fmt.Sprintf("upload failed: %v; draft saved at %s for manual submission", err, draftPath)
		s.recordError(ctx, session, "upload_submission", msg)
		return &models.SubmitAssignmentResponse{
			SessionID: session.ID,
			Status:    session.Status,
			DraftPath: draftPath,
			Message:   msg,
		}, nil
	}

	if !result.Success || isSilentFailureURL(result.URL, courseMapping.SubmissionCourseID) {
		reason := result.Error
		if reason == "" {
			reason = fmt.Sprintf("submission landed on %s instead of a confirmation page", result.URL)
		}
		msg := fmt.Sprintf("upload rejected: %s; draft saved at %s for manual submission", reason, draftPath)
		s.recordError(ctx, session, "upload_submission", msg)
		return &models.SubmitAssignmentResponse{
			SessionID: session.ID,
			Status:    session.Status,
			DraftPath: draftPath,
			Message:   msg,
		}, nil
	}

	now := time.Now()
	session.SubmissionURL = result.URL
	session.Status = models.SessionStatusSubmitted
	session.CompletedAt = &now

	draft, err := s.draftService.SetDraftStatus(ctx, session.Course.ID, session.Assignment.ID, models.DraftStatusSubmitted)
	if err == nil {
		session.Draft = draft
	}

	s.appendLog(session, "submission_recorded", fmt.Sprintf("Submitted to %s", result.URL), map[string]interface{}{
		"url": result.URL,
	}, true, "")

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Str("url", result.URL).
		Msg("Workflow completed")

	return &models.SubmitAssignmentResponse{
		SessionID:     session.ID,
		Status:        session.Status,
		SubmissionURL: result.URL,
		DraftPath:     draftPath,
		Message:       "submission recorded",
	}, nil
}

func (s *workflowService) GetWorkflowStatus(ctx context.Context, sessionID string) (*models.WorkflowSession, error) {
	return s.getSession(ctx, sessionID)
}

func (s *workflowService) ListWorkflows(ctx context.Context, activeOnly bool) ([]models.SessionSummary, error) {
	sessions, err := s.sessionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	summaries := make([]models.SessionSummary, 0, len(sessions))
	for i := range sessions {
		if activeOnly && sessions[i].Status.Terminal() {
			continue
		}
		summaries = append(summaries, sessions[i].Summary())
	}

	return summaries, nil
}

func (s *workflowService) GetWorkflowDocumentation(ctx context.Context, sessionID string) (string, error) {
	session, err := s.getSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return renderDocumentation(session), nil
}

func (s *workflowService) getSession(ctx context.Context, sessionID string) (*models.WorkflowSession, error) {
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// appendLog adds one audit entry. Entries are append-only and ordered by
// wall-clock time.
func (s *workflowService) appendLog(session *models.WorkflowSession, action, details string, data map[string]interface{}, success bool, errMsg string) {
	session.Log = append(session.Log, models.WorkflowLogEntry{
		Timestamp: time.Now(),
		Action:    action,
		Details:   details,
		Data:      data,
		Success:   success,
		Error:     errMsg,
	})
}

// recordError marks the session failed and logs the failure. Already
// resolved fields are left in place so the partial state stays
// inspectable.
func (s *workflowService) recordError(ctx context.Context, session *models.WorkflowSession, action, message string) {
	if !session.Status.Terminal() {
		session.Status = models.SessionStatusFailed
	}
	s.appendLog(session, action, "Workflow failed", nil, false, message)

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("Failed to persist failed session")
	}

	s.logger.Warn().
		Str("session_id", session.ID).
		Str("action", action).
		Str("error", message).
		Msg("Workflow step failed")
}

// isSilentFailureURL detects uploads that returned 2xx but landed back on
// the course page or the submissions index instead of a submission
// confirmation.
func isSilentFailureURL(url, submissionCourseID string) bool {
	if url == "" {
		return true
	}

	trimmed := strings.TrimRight(url, "/")
	if strings.HasSuffix(trimmed, "/courses/"+submissionCourseID) {
		return true
	}
	if strings.HasSuffix(trimmed, "/submissions") {
		return true
	}

	return false
}
