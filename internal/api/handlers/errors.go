package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"resume-parser/pkg/models"
	"resume-parser/pkg/utils"
)

// errorCode turns an HTTP status into a stable snake_case error code
func errorCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	return strings.ToLower(strings.ReplaceAll(text, " ", "_"))
}

// respondError writes a CustomError as the common error body
func respondError(c echo.Context, requestID string, err *utils.CustomError) error {
	return c.JSON(err.Code, models.ErrorResponse{
		Error:     errorCode(err.Code),
		Message:   err.Error(),
		RequestID: requestID,
		Timestamp: time.Now(),
	})
}
