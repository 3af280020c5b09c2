package repository

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/courseflow/workflow-service/internal/models"
)

// MappingRepository stores the course and assignment associations between
// the two platforms. Mappings live in process memory for the lifetime of
// the hosting application; they are replaced, never deleted.
type MappingRepository interface {
	ReplaceCourseMappings(ctx context.Context, mappings []models.CourseMapping) error
	UpsertCourseMapping(ctx context.Context, mapping models.CourseMapping) error
	GetCourseMappings(ctx context.Context) ([]models.CourseMapping, error)
	GetCourseMappingByLMSID(ctx context.Context, lmsCourseID string) (*models.CourseMapping, error)
	SetCourseExcluded(ctx context.Context, lmsCourseID string, excluded bool) error
	ReplaceAssignmentMappings(ctx context.Context, lmsCourseID string, mappings []models.AssignmentMapping) error
	GetAssignmentMappings(ctx context.Context, lmsCourseID string) ([]models.AssignmentMapping, error)
	GetAssignmentMappingByLMSID(ctx context.Context, lmsCourseID, lmsAssignmentID string) (*models.AssignmentMapping, error)
}

type mappingRepository struct {
	mu                 sync.RWMutex
	courseMappings     []models.CourseMapping
	assignmentMappings map[string][]models.AssignmentMapping
	logger             zerolog.Logger
}

func NewMappingRepository(logger zerolog.Logger) MappingRepository {
	return &mappingRepository{
		assignmentMappings: make(map[string][]models.AssignmentMapping),
		logger:             logger,
	}
}

// ReplaceCourseMappings swaps in a full new course mapping set. Auto-match
// produces the whole set at once, so prior state (manual overrides
// included) is discarded rather than merged.
func (r *mappingRepository) ReplaceCourseMappings(ctx context.Context, mappings []models.CourseMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.courseMappings = make([]models.CourseMapping, len(mappings))
	copy(r.courseMappings, mappings)

	r.logger.Debug().Int("count", len(mappings)).Msg("Replaced course mappings")
	return nil
}

// UpsertCourseMapping drops any existing mapping for the same LMS course
// before inserting, so a manual mapping always wins over a prior one.
func (r *mappingRepository) UpsertCourseMapping(ctx context.Context, mapping models.CourseMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.courseMappings[:0]
	for _, m := range r.courseMappings {
		if m.LMSCourseID != mapping.LMSCourseID {
			kept = append(kept, m)
		}
	}
	r.courseMappings = append(kept, mapping)

	return nil
}

func (r *mappingRepository) GetCourseMappings(ctx context.Context) ([]models.CourseMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mappings := make([]models.CourseMapping, len(r.courseMappings))
	copy(mappings, r.courseMappings)
	return mappings, nil
}

func (r *mappingRepository) GetCourseMappingByLMSID(ctx context.Context, lmsCourseID string) (*models.CourseMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.courseMappings {
		if m.LMSCourseID == lmsCourseID {
			mapping := m
			return &mapping, nil
		}
	}
	return nil, nil
}

func (r *mappingRepository) SetCourseExcluded(ctx context.Context, lmsCourseID string, excluded bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.courseMappings {
		if r.courseMappings[i].LMSCourseID == lmsCourseID {
			r.courseMappings[i].Excluded = excluded
			return nil
		}
	}
	return ErrNotFound
}

// ReplaceAssignmentMappings swaps the full assignment mapping list for one
// course; the prior list is not merged.
func (r *mappingRepository) ReplaceAssignmentMappings(ctx context.Context, lmsCourseID string, mappings []models.AssignmentMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]models.AssignmentMapping, len(mappings))
	copy(stored, mappings)
	r.assignmentMappings[lmsCourseID] = stored

	r.logger.Debug().
		Str("lms_course_id", lmsCourseID).
		Int("count", len(mappings)).
		Msg("Replaced assignment mappings")
	return nil
}

func (r *mappingRepository) GetAssignmentMappings(ctx context.Context, lmsCourseID string) ([]models.AssignmentMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.assignmentMappings[lmsCourseID]
	if !ok {
		return nil, nil
	}

	mappings := make([]models.AssignmentMapping, len(stored))
	copy(mappings, stored)
	return mappings, nil
}

func (r *mappingRepository) GetAssignmentMappingByLMSID(ctx context.Context, lmsCourseID, lmsAssignmentID string) (*models.AssignmentMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.assignmentMappings[lmsCourseID] {
		if m.LMSAssignmentID == lmsAssignmentID {
			mapping := m
			return &mapping, nil
		}
	}
	return nil, nil
}
