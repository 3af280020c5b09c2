package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/courseflow/workflow-service/internal/models"
	"github.com/courseflow/workflow-service/internal/repository"
	"github.com/courseflow/workflow-service/internal/service/integration"
	"github.com/courseflow/workflow-service/internal/service/matcher"
)

type MappingService interface {
	AutoMatchCourses(ctx context.Context) (*models.CourseMatchResult, error)
	AutoMatchAssignments(ctx context.Context, lmsCourseID string) (*models.AssignmentMatchResult, error)
	ManualMapCourse(ctx context.Context, req *models.ManualMapCourseRequest) (*models.CourseMapping, error)
	ExcludeCourse(ctx context.Context, lmsCourseID string) error
	IncludeCourse(ctx context.Context, lmsCourseID string) error
	ListCourseMappings(ctx context.Context) ([]models.CourseMapping, error)
	ListAssignmentMappings(ctx context.Context, lmsCourseID string) ([]models.AssignmentMapping, error)
}

type mappingService struct {
	mappingRepo      repository.MappingRepository
	entityMatcher    matcher.Matcher
	lmsClient        integration.LMSClient
	submissionClient integration.SubmissionClient
	logger           zerolog.Logger
}

func NewMappingService(
	mappingRepo repository.MappingRepository,
	entityMatcher matcher.Matcher,
	lmsClient integration.LMSClient,
	submissionClient integration.SubmissionClient,
	logger zerolog.Logger,
) MappingService {
	return &mappingService{
		mappingRepo:      mappingRepo,
		entityMatcher:    entityMatcher,
		lmsClient:        lmsClient,
		submissionClient: submissionClient,
		logger:           logger,
	}
}

// AutoMatchCourses fetches both catalogs, matches them, and replaces the
// stored course mapping set with the result. Running it again discards
// prior mappings for the whole scope, manual overrides included.
func (s *mappingService) AutoMatchCourses(ctx context.Context) (*models.CourseMatchResult, error) {
	lmsCourses, err := s.lmsClient.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch LMS courses: %w", err)
	}

	submissionCourses, err := s.submissionClient.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submission-service courses: %w", err)
	}

	result := s.entityMatcher.MatchCourses(lmsCourses, submissionCourses.Student)

	if err := s.mappingRepo.ReplaceCourseMappings(ctx, result.Mappings); err != nil {
		return nil, fmt.Errorf("failed to store course mappings: %w", err)
	}

	s.logger.Info().
		Int("matched", len(result.Mappings)).
		Int("unmatched", len(result.Unmatched)).
		Msg("Auto-matched courses")

	return result, nil
}

// AutoMatchAssignments matches assignment lists for one already-mapped
// course and replaces the stored list for that course.
func (s *mappingService) AutoMatchAssignments(ctx context.Context, lmsCourseID string) (*models.AssignmentMatchResult, error) {
	courseMapping, err := s.mappingRepo.GetCourseMappingByLMSID(ctx, lmsCourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up course mapping: %w", err)
	}
	if courseMapping == nil {
		return nil, ErrCourseNotMapped
	}

	lmsAssignments, err := s.lmsClient.ListAssignments(ctx, lmsCourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch LMS assignments: %w", err)
	}

	submissionAssignments, err := s.submissionClient.ListAssignments(ctx, courseMapping.SubmissionCourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submission-service assignments: %w", err)
	}

	result := s.entityMatcher.MatchAssignments(lmsCourseID, lmsAssignments, submissionAssignments)

	if err := s.mappingRepo.ReplaceAssignmentMappings(ctx, lmsCourseID, result.Mappings); err != nil {
		return nil, fmt.Errorf("failed to store assignment mappings: %w", err)
	}

	return result, nil
}

func (s *mappingService) ManualMapCourse(ctx context.Context, req *models.ManualMapCourseRequest) (*models.CourseMapping, error) {
	mapping := models.CourseMapping{
		LMSCourseID:          req.LMSCourseID,
		LMSCourseName:        req.LMSCourseName,
		SubmissionCourseID:   req.SubmissionCourseID,
		SubmissionCourseName: req.SubmissionCourseName,
	}

	if err := s.mappingRepo.UpsertCourseMapping(ctx, mapping); err != nil {
		return nil, fmt.Errorf("failed to store manual mapping: %w", err)
	}

	s.logger.Info().
		Str("lms_course_id", mapping.LMSCourseID).
		Str("submission_course_id", mapping.SubmissionCourseID).
		Msg("Manually mapped course")

	return &mapping, nil
}

func (s *mappingService) ExcludeCourse(ctx context.Context, lmsCourseID string) error {
	if err := s.mappingRepo.SetCourseExcluded(ctx, lmsCourseID, true); err != nil {
		return fmt.Errorf("failed to exclude course %s: %w", lmsCourseID, err)
	}
	return nil
}

func (s *mappingService) IncludeCourse(ctx context.Context, lmsCourseID string) error {
	if err := s.mappingRepo.SetCourseExcluded(ctx, lmsCourseID, false); err != nil {
		return fmt.Errorf("failed to include course %s: %w", lmsCourseID, err)
	}
	return nil
}

func (s *mappingService) ListCourseMappings(ctx context.Context) ([]models.CourseMapping, error) {
	return s.mappingRepo.GetCourseMappings(ctx)
}

func (s *mappingService) ListAssignmentMappings(ctx context.Context, lmsCourseID string) ([]models.AssignmentMapping, error) {
	return s.mappingRepo.GetAssignmentMappings(ctx, lmsCourseID)
}
