package middleware

import (
	"net/http"
	"time"

	"resume-parser/pkg/models"
	"resume-parser/pkg/utils"

	"github.com/labstack/echo/v4"
)

// multipartOverhead leaves room for boundaries and part headers around the document
const multipartOverhead = 64 << 10

// RequestValidation assigns a request ID and rejects bodies larger than the upload cap
func RequestValidation(maxUploadBytes int64) echo.MiddlewareFunc {
	limit := maxUploadBytes + multipartOverhead

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = utils.GenerateRequestID()
			}
			c.Set("request_id", requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			if c.Request().Method == http.MethodPost && maxUploadBytes > 0 {
				if c.Request().ContentLength > limit {
					return c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
						Error:     "request_too_large",
						Message:   utils.NewPayloadTooLargeError(maxUploadBytes).Error(),
						RequestID: requestID,
						Timestamp: time.Now(),
					})
				}
				// chunked bodies carry no Content-Length
				c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, limit)
			}

			return next(c)
		}
	}
}

// RequestID returns the ID assigned by RequestValidation, generating one if absent
func RequestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}
