package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"resume-parser/internal/api/middleware"
	"resume-parser/internal/background"
	"resume-parser/internal/logging"
	"resume-parser/pkg/models"
)

// TaskStatusHandler handles GET /api/v1/tasks/:processId
func TaskStatusHandler(taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		processID := c.Param("processId")

		if err := requestValidator.Var(processID, "required,process_id"); err != nil {
			return c.JSON(http.StatusBadRequest, models.CreateAsyncErrorResponse(
				"invalid_process_id",
				"Process ID is malformed",
				processID,
			))
		}

		result, err := taskManager.GetTaskResult(c.Request().Context(), processID)
		if err != nil {
			if errors.Is(err, background.ErrTaskNotFound) {
				return c.JSON(http.StatusNotFound, models.CreateAsyncErrorResponse(
					background.ErrTaskNotFound.Code,
					"No task exists for this process ID",
					processID,
				))
			}

			logging.LogWithRequestID(middleware.RequestID(c)).WithError(err).Error("Failed to load task", map[string]interface{}{
				"process_id": processID,
			})
			return c.JSON(http.StatusInternalServerError, models.CreateAsyncErrorResponse(
				"task_lookup_failed",
				"Failed to load task status",
				processID,
			))
		}

		return c.JSON(http.StatusOK, toStatusResponse(result))
	}
}

// ListTasksHandler handles GET /api/v1/tasks
func ListTasksHandler(taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		results, err := taskManager.ListTasks(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.CreateAsyncErrorResponse(
				"task_lookup_failed",
				"Failed to list tasks",
			))
		}

		// Listing is for monitoring; payloads stay behind the per-task endpoint
		tasks := make([]models.AsyncTaskStatusResponse, 0, len(results))
		for _, result := range results {
			status := toStatusResponse(result)
			status.Data = nil
			tasks = append(tasks, *status)
		}

		return c.JSON(http.StatusOK, models.AsyncTaskListResponse{
			Success: true,
			Tasks:   tasks,
			Count:   len(tasks),
		})
	}
}

func toStatusResponse(result *background.TaskResult) *models.AsyncTaskStatusResponse {
	response := &models.AsyncTaskStatusResponse{
		ProcessID:   result.ProcessID,
		Status:      models.AsyncStatus(result.Status),
		Error:       result.Error,
		CreatedAt:   result.CreatedAt,
		CompletedAt: result.CompletedAt,
		Metadata:    result.Metadata,
	}

	if result.ProcessingTime != nil {
		ms := result.ProcessingTime.Milliseconds()
		response.ProcessingTimeMs = &ms
	}

	if data, ok := result.Data.(*background.ParseTaskData); ok && data != nil {
		response.Data = &models.AsyncParseCompletionData{
			Resume:   data.Resume,
			Markdown: data.Markdown,
			Filename: data.Filename,
		}
	} else if result.Data != nil {
		response.Data = result.Data
	}

	return response
}
