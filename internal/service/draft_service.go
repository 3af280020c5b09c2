package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/courseflow/workflow-service/internal/models"
	"github.com/courseflow/workflow-service/internal/repository"
)

type DraftService interface {
	SaveDraft(ctx context.Context, courseID, assignmentID, assignmentName, content, format string) (*models.Draft, error)
	UpdateDraftContent(ctx context.Context, courseID, assignmentID, content string) (*models.Draft, error)
	GetDraft(ctx context.Context, courseID, assignmentID string) (*models.Draft, error)
	SetDraftStatus(ctx context.Context, courseID, assignmentID string, status models.DraftStatus) (*models.Draft, error)
	ListDrafts(ctx context.Context) ([]models.Draft, error)
	RenderReview(draft *models.Draft) string
	WriteToFile(draft *models.Draft) (string, error)
}

type draftService struct {
	draftRepo repository.DraftRepository
	draftsDir string
	logger    zerolog.Logger
}

func NewDraftService(draftRepo repository.DraftRepository, draftsDir string, logger zerolog.Logger) DraftService {
	return &draftService{
		draftRepo: draftRepo,
		draftsDir: draftsDir,
		logger:    logger,
	}
}

// SaveDraft creates or overwrites the draft for one (course, assignment)
// pair. Overwriting keeps the original CreatedAt; status always resets to
// draft so revised content goes back through review.
func (s *draftService) SaveDraft(ctx context.Context, courseID, assignmentID, assignmentName, content, format string) (*models.Draft, error) {
	if format == "" {
		format = "markdown"
	}

	now := time.Now()
	draft := &models.Draft{
		ID:             models.DraftID(courseID, assignmentID),
		AssignmentID:   assignmentID,
		CourseID:       courseID,
		AssignmentName: assignmentName,
		Content:        content,
		Format:         format,
		CreatedAt:      now,
		UpdatedAt:      now,
		Status:         models.DraftStatusDraft,
	}

	existing, err := s.draftRepo.Get(ctx, draft.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing draft: %w", err)
	}
	if existing != nil {
		draft.CreatedAt = existing.CreatedAt
		if assignmentName == "" {
			draft.AssignmentName = existing.AssignmentName
		}
	}

	if err := s.draftRepo.Put(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	s.logger.Info().
		Str("draft_id", draft.ID).
		Int("content_length", len(content)).
		Msg("Draft saved")

	return draft, nil
}

func (s *draftService) UpdateDraftContent(ctx context.Context, courseID, assignmentID, content string) (*models.Draft, error) {
	draft, err := s.draftRepo.Get(ctx, models.DraftID(courseID, assignmentID))
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}

	draft.Content = content
	draft.UpdatedAt = time.Now()
	draft.Status = models.DraftStatusDraft

	if err := s.draftRepo.Put(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to update draft: %w", err)
	}

	return draft, nil
}

func (s *draftService) GetDraft(ctx context.Context, courseID, assignmentID string) (*models.Draft, error) {
	draft, err := s.draftRepo.Get(ctx, models.DraftID(courseID, assignmentID))
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	return draft, nil
}

func (s *draftService) SetDraftStatus(ctx context.Context, courseID, assignmentID string, status models.DraftStatus) (*models.Draft, error) {
	draft, err := s.draftRepo.Get(ctx, models.DraftID(courseID, assignmentID))
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}

	draft.Status = status
	draft.UpdatedAt = time.Now()

	if err := s.draftRepo.Put(ctx, draft); err != nil {
		return nil, fmt.Errorf("failed to update draft status: %w", err)
	}

	return draft, nil
}

func (s *draftService) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	return s.draftRepo.List(ctx)
}

// RenderReview formats a draft for human review.
func (s *draftService) RenderReview(draft *models.Draft) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Draft Review: %s\n\n", draft.AssignmentName))
	sb.WriteString(fmt.Sprintf("- Draft ID: %s\n", draft.ID))
	sb.WriteString(fmt.Sprintf("- Status: %s\n", draft.Status))
	sb.WriteString(fmt.Sprintf("- Created: %s\n", draft.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("- Updated: %s\n\n", draft.UpdatedAt.Format(time.RFC3339)))
	sb.WriteString("---\n\n")
	sb.WriteString(draft.Content)
	sb.WriteString("\n")

	return sb.String()
}

// WriteToFile saves the draft to the local drafts directory so the
// operator can submit manually if the upload path fails.
func (s *draftService) WriteToFile(draft *models.Draft) (string, error) {
	if err := os.MkdirAll(s.draftsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create drafts directory: %w", err)
	}

	ext := ".md"
	if draft.Format == "text" {
		ext = ".txt"
	}

	path := filepath.Join(s.draftsDir, draft.ID+ext)
	if err := os.WriteFile(path, []byte(draft.Content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write draft file: %w", err)
	}

	s.logger.Info().Str("path", path).Msg("Draft written to disk")
	return path, nil
}
