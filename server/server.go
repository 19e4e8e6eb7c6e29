package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dinerozz/nudge-engine/config"
	"github.com/dinerozz/nudge-engine/docs"
	activityHandler "github.com/dinerozz/nudge-engine/internal/handler/activity"
	focusHandler "github.com/dinerozz/nudge-engine/internal/handler/focus"
	insightHandler "github.com/dinerozz/nudge-engine/internal/handler/insight"
	ledgerHandler "github.com/dinerozz/nudge-engine/internal/handler/ledger"
	promptHandler "github.com/dinerozz/nudge-engine/internal/handler/prompt"
	tasksHandler "github.com/dinerozz/nudge-engine/internal/handler/tasks"
	"github.com/dinerozz/nudge-engine/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 30 * time.Second

type RouterHandler struct {
	activityHandler *activityHandler.ActivityHandler
	focusHandler    *focusHandler.FocusHandler
	tasksHandler    *tasksHandler.TaskHandler
	ledgerHandler   *ledgerHandler.LedgerHandler
	insightHandler  *insightHandler.InsightHandler
	promptHandler   *promptHandler.PromptHandler
}

func newRouterHandler(app *App) *RouterHandler {
	return &RouterHandler{
		activityHandler: activityHandler.NewActivityHandler(app.Registry, app.Hub, app.Clock),
		focusHandler:    focusHandler.NewFocusHandler(app.Registry),
		tasksHandler:    tasksHandler.NewTaskHandler(app.Analyzer),
		ledgerHandler:   ledgerHandler.NewLedgerHandler(app.Ledger),
		insightHandler:  insightHandler.NewInsightHandler(app.Registry),
		promptHandler:   promptHandler.NewPromptHandler(app.Selector, app.Clock),
	}
}

func RunServer(cfg *config.Config, logger *zap.Logger) error {
	switch cfg.Env {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
		logger.Info("starting server in production mode")
	default:
		gin.SetMode(gin.DebugMode)
		logger.Info("starting server in development mode", zap.String("env", cfg.Env))
	}

	app, err := NewApp(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty, trusting the X-User-ID header")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: setupRouter(newRouterHandler(app), cfg, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return gracefulShutdown(srv, app, logger, errCh)
}

func gracefulShutdown(srv *http.Server, app *App, logger *zap.Logger, errCh <-chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var serveErr error
	select {
	case <-quit:
		logger.Info("shutting down server")
	case serveErr = <-errCh:
		logger.Error("server failed", zap.Error(serveErr))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := app.Close(ctx); err != nil {
		logger.Error("failed to release resources", zap.Error(err))
	}

	if serveErr != nil {
		return fmt.Errorf("failed to start server: %w", serveErr)
	}
	logger.Info("server gracefully stopped")
	return nil
}

func setupRouter(routerHandler *RouterHandler, cfg *config.Config, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(middleware.CORS(cfg.Server.BaseURL))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "nudge-engine",
		})
	})

	docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.Server.BaseURL, "https://"), "http://")
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.Identity(cfg.Auth.JWTSecret))

	activityRoutes := api.Group("/activity")
	{
		activityRoutes.PUT("/permissions", routerHandler.activityHandler.UpdatePermissions)
		activityRoutes.GET("/permissions", routerHandler.activityHandler.GetPermissions)
		activityRoutes.GET("/monitoring", routerHandler.activityHandler.GetMonitoringStatus)
		activityRoutes.POST("/events", routerHandler.activityHandler.IngestEvents)
		activityRoutes.GET("/events", routerHandler.activityHandler.GetEvents)
		activityRoutes.GET("/summary", routerHandler.activityHandler.GetSummary)
		activityRoutes.GET("/metrics", routerHandler.activityHandler.GetMetrics)
	}

	focusRoutes := api.Group("/focus")
	{
		focusRoutes.POST("/start", routerHandler.focusHandler.StartSession)
		focusRoutes.POST("/signal", routerHandler.focusHandler.SendSignal)
		focusRoutes.GET("/stats", routerHandler.focusHandler.GetStats)
		focusRoutes.POST("/stop", routerHandler.focusHandler.StopSession)
		focusRoutes.GET("/sessions", routerHandler.focusHandler.GetSessions)
	}

	taskRoutes := api.Group("/tasks")
	{
		taskRoutes.POST("/analyze", routerHandler.tasksHandler.AnalyzeTask)
		taskRoutes.POST("/schedule", routerHandler.tasksHandler.ScheduleTask)
	}

	actionRoutes := api.Group("/actions")
	{
		actionRoutes.POST("", routerHandler.ledgerHandler.LogAction)
		actionRoutes.GET("", routerHandler.ledgerHandler.GetActions)
		actionRoutes.GET("/analytics", routerHandler.ledgerHandler.GetAnalytics)
		actionRoutes.GET("/streak", routerHandler.ledgerHandler.GetStreak)
		actionRoutes.GET("/integrity", routerHandler.ledgerHandler.GetIntegrity)
		actionRoutes.GET("/achievements", routerHandler.ledgerHandler.GetAchievements)
	}

	insightRoutes := api.Group("/insights")
	{
		insightRoutes.GET("", routerHandler.insightHandler.GetInsights)
		insightRoutes.GET("/context", routerHandler.insightHandler.GetContext)
		insightRoutes.GET("/recommendations", routerHandler.insightHandler.GetRecommendations)
		insightRoutes.GET("/trends", routerHandler.insightHandler.GetTrends)
		insightRoutes.POST("/analyze", routerHandler.insightHandler.Analyze)
	}

	promptRoutes := api.Group("/prompts")
	{
		promptRoutes.POST("/contextual", routerHandler.promptHandler.GetContextualPrompt)
		promptRoutes.GET("/personas", routerHandler.promptHandler.GetPersonas)
	}

	return r
}
