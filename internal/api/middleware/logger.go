package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"resume-parser/internal/logging"
)

// RequestLogger writes one access log entry per request through the global logger
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogMethod:   true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := map[string]interface{}{
				"request_id": RequestID(c),
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"remote_ip":  v.RemoteIP,
			}

			logger := logging.GetGlobalLogger()
			if v.Error != nil {
				logger.WithError(v.Error).Warn("HTTP request", fields)
				return nil
			}
			logger.Info("HTTP request", fields)
			return nil
		},
	})
}
