package repository

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/courseflow/workflow-service/internal/models"
)

// DraftRepository stores at most one draft per (course, assignment) pair,
// keyed by the composite draft id.
type DraftRepository interface {
	Put(ctx context.Context, draft *models.Draft) error
	Get(ctx context.Context, draftID string) (*models.Draft, error)
	List(ctx context.Context) ([]models.Draft, error)
}

type draftRepository struct {
	mu     sync.RWMutex
	drafts map[string]models.Draft
	logger zerolog.Logger
}

func NewDraftRepository(logger zerolog.Logger) DraftRepository {
	return &draftRepository{
		drafts: make(map[string]models.Draft),
		logger: logger,
	}
}

func (r *draftRepository) Put(ctx context.Context, draft *models.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drafts[draft.ID] = *draft
	return nil
}

func (r *draftRepository) Get(ctx context.Context, draftID string) (*models.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	draft, ok := r.drafts[draftID]
	if !ok {
		return nil, nil
	}
	return &draft, nil
}

func (r *draftRepository) List(ctx context.Context) ([]models.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drafts := make([]models.Draft, 0, len(r.drafts))
	for _, d := range r.drafts {
		drafts = append(drafts, d)
	}
	return drafts, nil
}
