package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appmiddleware "github.com/johnquangdev/meeting-actions/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-actions/pkg/config"
	"github.com/johnquangdev/meeting-actions/pkg/jwt"
)

// Router holds all handlers
type Router struct {
	cfg        *config.Config
	jwtManager *jwt.Manager
	pipeline   *PipelineController
	assistant  *AssistantController
	webhook    *TranscriptWebhookHandler
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	jwtManager *jwt.Manager,
	pipelineController *PipelineController,
	assistantController *AssistantController,
	webhookHandler *TranscriptWebhookHandler,
) *Router {
	return &Router{
		cfg:        cfg,
		jwtManager: jwtManager,
		pipeline:   pipelineController,
		assistant:  assistantController,
		webhook:    webhookHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")

	// The webhook authenticates via signature, not bearer token
	v1.POST("/webhooks/assemblyai", rt.webhook.HandleAssemblyAIWebhook)

	authed := v1.Group("", appmiddleware.EchoAuth(rt.jwtManager))
	rt.setupMeetingRoutes(authed)
	rt.setupTaskRoutes(authed)
}

func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")

	meetings.POST("", rt.pipeline.CreateMeeting)
	meetings.GET("/:id", rt.pipeline.GetMeeting)
	meetings.POST("/:id/audio", rt.pipeline.UploadAudio)
	meetings.POST("/:id/extract", rt.pipeline.ExtractTasks)
	meetings.GET("/:id/tasks", rt.pipeline.ListTasks)
	meetings.GET("/:id/progress", rt.pipeline.GetProgress)
	meetings.POST("/:id/chat", rt.assistant.Chat)
	meetings.POST("/:id/messages", rt.assistant.Message)
}

func (rt *Router) setupTaskRoutes(g *echo.Group) {
	tasks := g.Group("/tasks")
	tasks.GET("/pending/stream", rt.pipeline.StreamPendingTasks)
	tasks.POST("/:id/recommendation", rt.pipeline.GenerateRecommendation)
	tasks.POST("/:id/email", rt.pipeline.SendRecommendationEmail)

	g.POST("/recommendations/retry", rt.pipeline.RetryRecommendations)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
