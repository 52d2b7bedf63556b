package handlers

import (
	"net/http"
	"runtime"
	"time"

	"resume-parser/internal/api/middleware"
	"resume-parser/internal/background"
	"resume-parser/internal/grpc/interceptors"
	"resume-parser/internal/logging"
	"resume-parser/pkg/models"

	"github.com/labstack/echo/v4"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

var startTime = time.Now()

// ProviderStatus reports on the completion backend
type ProviderStatus interface {
	IsHealthy() bool
	GetProviderName() string
}

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	logging.GetGlobalLogger().Debug("Health check requested", map[string]interface{}{
		"request_id": middleware.RequestID(c),
	})

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	}

	return c.JSON(http.StatusOK, response)
}

// ReadinessHandler reports ready only when the LLM provider and task workers are up
func ReadinessHandler(llmStatus ProviderStatus, taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{
			"api":     "ok",
			"llm":     "ok",
			"workers": "ok",
		}
		ready := true

		if llmStatus == nil || !llmStatus.IsHealthy() {
			checks["llm"] = "unavailable"
			ready = false
		}
		if taskManager == nil || !taskManager.IsHealthy() {
			checks["workers"] = "unavailable"
			ready = false
		}

		response := models.HealthResponse{
			Status:    "ready",
			Timestamp: time.Now(),
			Version:   Version,
			Uptime:    time.Since(startTime),
			Checks:    checks,
		}

		if !ready {
			response.Status = "not_ready"
			logging.GetGlobalLogger().Warn("Readiness check failed", map[string]interface{}{
				"request_id": middleware.RequestID(c),
				"checks":     checks,
			})
			return c.JSON(http.StatusServiceUnavailable, response)
		}

		return c.JSON(http.StatusOK, response)
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	response := models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(startTime),
	}

	return c.JSON(http.StatusOK, response)
}

// StatusHandler provides detailed service status; grpcMetrics may be nil
func StatusHandler(llmStatus ProviderStatus, taskManager background.TaskManager, formats []string, grpcMetrics *interceptors.MetricsCollector) echo.HandlerFunc {
	return func(c echo.Context) error {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		llmState := "unavailable"
		provider := "none"
		if llmStatus != nil {
			provider = llmStatus.GetProviderName()
			if llmStatus.IsHealthy() {
				llmState = "operational"
			}
		}

		workerState := "stopped"
		if taskManager != nil && taskManager.IsHealthy() {
			workerState = "operational"
		}

		body := map[string]interface{}{
			"status":    "operational",
			"timestamp": time.Now(),
			"version":   Version,
			"uptime":    time.Since(startTime).String(),
			"checks": map[string]string{
				"api":     "operational",
				"llm":     llmState,
				"workers": workerState,
			},
			"llm_provider":      provider,
			"supported_formats": formats,
			"goroutines":        runtime.NumGoroutine(),
			"heap_alloc_bytes":  mem.HeapAlloc,
		}
		if grpcMetrics != nil {
			body["grpc"] = grpcMetrics.Snapshot()
		}

		return c.JSON(http.StatusOK, body)
	}
}
