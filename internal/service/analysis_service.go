package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/courseflow/workflow-service/internal/models"
	"github.com/courseflow/workflow-service/internal/service/analyzer"
	"github.com/courseflow/workflow-service/internal/service/integration"
)

type AnalysisService interface {
	AnalyzeAssignment(ctx context.Context, courseID, assignmentID string) (*models.AnalyzedAssignment, error)
}

type analysisService struct {
	lmsClient  integration.LMSClient
	classifier analyzer.Classifier
	logger     zerolog.Logger
}

func NewAnalysisService(lmsClient integration.LMSClient, classifier analyzer.Classifier, logger zerolog.Logger) AnalysisService {
	return &analysisService{
		lmsClient:  lmsClient,
		classifier: classifier,
		logger:     logger,
	}
}

// AnalyzeAssignment fetches the full assignment record and classifies it.
func (s *analysisService) AnalyzeAssignment(ctx context.Context, courseID, assignmentID string) (*models.AnalyzedAssignment, error) {
	assignment, err := s.lmsClient.GetAssignment(ctx, courseID, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment %s: %w", assignmentID, err)
	}

	analyzed := s.classifier.Classify(assignment, courseID)

	s.logger.Info().
		Str("assignment_id", assignmentID).
		Str("type", analyzed.Type.String()).
		Bool("automatable", analyzed.Automatable).
		Msg("Assignment analyzed")

	return analyzed, nil
}
