package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clusterscope/evidence-core/internal/api/handlers"
	"github.com/clusterscope/evidence-core/internal/api/middleware"
	"github.com/clusterscope/evidence-core/internal/config"
	"github.com/clusterscope/evidence-core/internal/intake"
	"github.com/clusterscope/evidence-core/internal/knowledge"
	"github.com/clusterscope/evidence-core/internal/monitoring"
	"github.com/clusterscope/evidence-core/internal/services"
	"github.com/clusterscope/evidence-core/pkg/cache"
	"github.com/clusterscope/evidence-core/pkg/logger"
)

type Server struct {
	config     *config.Config
	logger     logger.Logger
	cache      cache.DedupCache
	intake     *intake.Intake
	releases   *services.ReleaseStoreService
	logStore   *services.LogStoreService
	knowledge  *knowledge.Store
	router     *gin.Engine
	httpServer *http.Server
}

func NewServer(
	cfg *config.Config,
	log logger.Logger,
	dedupCache cache.DedupCache,
	alertIntake *intake.Intake,
	releases *services.ReleaseStoreService,
	logStore *services.LogStoreService,
	knowledgeStore *knowledge.Store,
) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &Server{
		config:    cfg,
		logger:    log,
		cache:     dedupCache,
		intake:    alertIntake,
		releases:  releases,
		logStore:  logStore,
		knowledge: knowledgeStore,
		router:    gin.New(),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORSMiddleware(s.config.CORS))
	s.router.Use(middleware.RequestLogger(s.logger))

	if s.config.Monitoring.Enabled {
		s.router.Use(monitoring.HTTPMetricsMiddleware())
		monitoring.SetupPrometheusMetrics(s.router)
	}
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.cache, s.logger)
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)

	v1 := s.router.Group("/api/v1")

	webhookHandler := handlers.NewWebhookHandler(s.intake, s.logger)
	v1.POST("/webhook/alertmanager", webhookHandler.ReceiveAlertmanager)
	v1.POST("/webhook/test", webhookHandler.ReceiveTest)

	evidenceHandler := handlers.NewEvidenceHandler(s.releases, s.logStore, s.logger)
	tools := v1.Group("/tools")
	tools.POST("/diff", evidenceHandler.DiffRevisions)
	tools.POST("/logs/analyze", evidenceHandler.AnalyzeLogs)
	tools.GET("/exitcode/:code", evidenceHandler.ClassifyExitCode)

	knowledgeHandler := handlers.NewKnowledgeHandler(s.knowledge, s.logger)
	kb := v1.Group("/knowledge")
	kb.GET("/files", knowledgeHandler.ListFiles)
	kb.GET("/files/*name", knowledgeHandler.ReadFile)
	kb.PUT("/files/*name", knowledgeHandler.WriteFile)
	kb.GET("/search", knowledgeHandler.Search)
	kb.POST("/reports", knowledgeHandler.SaveReport)
	kb.GET("/reports/recent", knowledgeHandler.RecentReports)
}

func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("EVIDENCE-CORE API server starting", "port", s.config.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("Shutting down EVIDENCE-CORE gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

// Handler returns the underlying Gin engine so tests (or embedders) can mount it.
func (s *Server) Handler() http.Handler {
	return s.router
}
