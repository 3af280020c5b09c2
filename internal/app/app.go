package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/courseflow/workflow-service/internal/config"
	"github.com/courseflow/workflow-service/internal/delivery/httpd"
	"github.com/courseflow/workflow-service/internal/repository"
	"github.com/courseflow/workflow-service/internal/service"
	"github.com/courseflow/workflow-service/internal/service/analyzer"
	"github.com/courseflow/workflow-service/internal/service/integration"
	"github.com/courseflow/workflow-service/internal/service/matcher"
)

type App struct {
	server *http.Server
	logger zerolog.Logger
	config *config.Config
}

func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	lmsClient := integration.NewLMSClient(
		cfg.Services.LMS.URL,
		cfg.Services.LMS.Token,
		cfg.Services.LMS.Timeout,
		cfg.Services.LMS.RetryCount,
		cfg.Services.LMS.RetryDelay,
		log,
	)

	submissionClient := integration.NewSubmissionClient(
		cfg.Services.Submission.URL,
		cfg.Services.Submission.Token,
		cfg.Services.Submission.Timeout,
		cfg.Services.Submission.RetryCount,
		cfg.Services.Submission.RetryDelay,
		log,
	)

	mappingRepo := repository.NewMappingRepository(log)
	draftRepo := repository.NewDraftRepository(log)
	sessionRepo := repository.NewSessionRepository(log)

	entityMatcher := matcher.New(matcher.MatcherConfig{
		CourseThreshold:     cfg.Matching.CourseThreshold,
		AssignmentThreshold: cfg.Matching.AssignmentThreshold,
	}, log)
	classifier := analyzer.NewClassifier(log)

	draftService := service.NewDraftService(draftRepo, cfg.Drafts.Dir, log)
	mappingService := service.NewMappingService(mappingRepo, entityMatcher, lmsClient, submissionClient, log)
	analysisService := service.NewAnalysisService(lmsClient, classifier, log)
	workflowService := service.NewWorkflowService(
		sessionRepo,
		mappingRepo,
		entityMatcher,
		classifier,
		draftService,
		lmsClient,
		submissionClient,
		log,
	)

	handler := httpd.NewHandler(
		workflowService,
		mappingService,
		analysisService,
		draftService,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server: server,
		logger: log,
		config: cfg,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Msgf("Starting workflow service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down workflow service...")
	return a.server.Shutdown(ctx)
}
