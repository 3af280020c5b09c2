package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/courseflow/workflow-service/internal/models"
)

// SessionRepository stores workflow sessions for the process lifetime.
// Sessions are never deleted; their logs are the audit trail.
type SessionRepository interface {
	Create(ctx context.Context, session *models.WorkflowSession) error
	Get(ctx context.Context, sessionID string) (*models.WorkflowSession, error)
	Update(ctx context.Context, session *models.WorkflowSession) error
	List(ctx context.Context) ([]models.WorkflowSession, error)
}

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.WorkflowSession
	logger   zerolog.Logger
}

func NewSessionRepository(logger zerolog.Logger) SessionRepository {
	return &sessionRepository{
		sessions: make(map[string]*models.WorkflowSession),
		logger:   logger,
	}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.WorkflowSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return ErrAlreadyExists
	}

	stored := *session
	r.sessions[session.ID] = &stored

	r.logger.Debug().Str("session_id", session.ID).Msg("Session created")
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, sessionID string) (*models.WorkflowSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.sessions[sessionID]
	if !ok {
		return nil, nil
	}

	session := *stored
	session.Log = make([]models.WorkflowLogEntry, len(stored.Log))
	copy(session.Log, stored.Log)
	return &session, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *models.WorkflowSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; !ok {
		return ErrNotFound
	}

	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

// List returns all sessions ordered by start time; ids are time-ordered
// so the sort keeps ties stable.
func (r *sessionRepository) List(ctx context.Context) ([]models.WorkflowSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]models.WorkflowSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, *s)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})

	return sessions, nil
}
