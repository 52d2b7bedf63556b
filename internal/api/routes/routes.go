package routes

import (
	"net/http"
	"time"

	"resume-parser/internal/api/handlers"
	"resume-parser/internal/api/middleware"
	"resume-parser/internal/background"
	"resume-parser/internal/config"
	"resume-parser/internal/grpc/interceptors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// Dependencies are the services the routes dispatch to
type Dependencies struct {
	Resume           handlers.ResumeService
	LLM              handlers.ProviderStatus
	Tasks            background.TaskManager
	SupportedFormats []string
	GRPCMetrics      *interceptors.MetricsCollector
}

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, deps Dependencies) {
	defaultTimeout := cfg.Server.ReadTimeout
	if defaultTimeout <= 0 {
		defaultTimeout = 30 * time.Second
	}
	parseTimeout := cfg.Server.ParseTimeout
	if parseTimeout <= 0 {
		parseTimeout = 2 * time.Minute
	}

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation(cfg.Parser.MaxUploadBytes))
	e.Use(middleware.RequestLogger())
	// LLM-backed routes get the longer budget
	e.Use(middleware.SelectiveTimeoutConfig(defaultTimeout, parseTimeout, "/api/v1/resume"))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(deps.LLM, deps.Tasks))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(deps.LLM, deps.Tasks, deps.SupportedFormats, deps.GRPCMetrics))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		resume := v1.Group("/resume")
		{
			resume.POST("/parse", handlers.ParseResumeHandler(cfg, deps.Resume))
			resume.POST("/parse/async", handlers.ParseResumeAsyncHandler(cfg, deps.Tasks))
			resume.POST("/extract", handlers.ExtractResumeHandler(deps.Resume))
		}

		documents := v1.Group("/documents")
		{
			documents.POST("/convert", handlers.ConvertDocumentHandler(cfg, deps.Resume))
		}

		tasks := v1.Group("/tasks")
		{
			tasks.GET("", handlers.ListTasksHandler(deps.Tasks))
			tasks.GET("/:processId", handlers.TaskStatusHandler(deps.Tasks))
		}
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"service":           "Resume Parser",
			"version":           handlers.Version,
			"status":            "running",
			"supported_formats": deps.SupportedFormats,
		})
	})
}
