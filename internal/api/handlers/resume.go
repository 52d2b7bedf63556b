package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"resume-parser/internal/api/middleware"
	"resume-parser/internal/api/validation"
	"resume-parser/internal/background"
	"resume-parser/internal/config"
	"resume-parser/internal/converter"
	"resume-parser/internal/logging"
	"resume-parser/internal/resume"
	"resume-parser/pkg/models"
	"resume-parser/pkg/utils"
)

var requestValidator = validator.New()

func init() {
	validation.RegisterRequestValidators(requestValidator)
}

// ResumeService is the parsing pipeline the handlers drive
type ResumeService interface {
	ConvertDocument(ctx context.Context, content []byte, filename string) (string, error)
	ParseResumeToJSON(ctx context.Context, markdown string) (*models.ResumeData, error)
	ParseResume(ctx context.Context, content []byte, filename string) (*resume.Result, error)
}

// ParseResumeHandler handles POST /api/v1/resume/parse: upload in, ResumeData out
func ParseResumeHandler(cfg *config.Config, svc ResumeService) echo.HandlerFunc {
	return func(c echo.Context) error {
		startTime := time.Now()
		requestID := middleware.RequestID(c)
		logger := logging.LogWithRequestID(requestID)

		var opts models.ParseOptions
		if err := (&echo.DefaultBinder{}).BindQueryParams(c, &opts); err != nil {
			return respondError(c, requestID, utils.NewBadRequestError("invalid query parameters"))
		}

		filename, content, uploadErr := readUpload(c, cfg.Parser.MaxUploadBytes)
		if uploadErr != nil {
			logger.Warn("Rejected resume upload", map[string]interface{}{
				"error": uploadErr.Error(),
			})
			return respondError(c, requestID, uploadErr)
		}

		logger.Info("Processing resume parse request", map[string]interface{}{
			"filename":   filename,
			"size_bytes": len(content),
		})

		result, err := svc.ParseResume(c.Request().Context(), content, filename)
		if err != nil {
			logger.WithError(err).Error("Resume parsing failed", map[string]interface{}{
				"filename": filename,
			})
			return respondError(c, requestID, utils.ErrorFromParse(err))
		}

		response := models.ParseResumeResponse{
			Success:        true,
			Resume:         result.Resume,
			ProcessingTime: time.Since(startTime),
			RequestID:      requestID,
		}
		if opts.IncludeMarkdown {
			response.Markdown = result.Markdown
		}

		logger.Info("Resume parsed", map[string]interface{}{
			"filename":        filename,
			"processing_time": utils.FormatDuration(response.ProcessingTime),
		})

		return c.JSON(http.StatusOK, response)
	}
}

// ParseResumeAsyncHandler handles POST /api/v1/resume/parse/async
func ParseResumeAsyncHandler(cfg *config.Config, taskManager background.TaskManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)
		logger := logging.LogWithRequestID(requestID)

		var opts models.ParseOptions
		if err := (&echo.DefaultBinder{}).BindQueryParams(c, &opts); err != nil {
			return c.JSON(http.StatusBadRequest, models.CreateAsyncErrorResponse(
				"invalid_request",
				"Invalid query parameters: "+err.Error(),
			))
		}

		filename, content, uploadErr := readUpload(c, cfg.Parser.MaxUploadBytes)
		if uploadErr != nil {
			return c.JSON(uploadErr.Code, models.CreateAsyncErrorResponse(
				errorCode(uploadErr.Code),
				uploadErr.Error(),
			))
		}

		processID := utils.GenerateProcessID()

		logger.Info("Submitting resume parse task for background processing", map[string]interface{}{
			"process_id": processID,
			"filename":   filename,
			"size_bytes": len(content),
		})

		// The task outlives the request, so it must not inherit its context
		err := taskManager.SubmitParseTask(context.Background(), processID, background.ParseTaskInput{
			Filename:        filename,
			Content:         content,
			IncludeMarkdown: opts.IncludeMarkdown,
		})
		if err != nil {
			logger.WithError(err).Error("Failed to submit background parse task")

			status, code := http.StatusInternalServerError, "task_submission_failed"
			var taskErr *background.TaskError
			if errors.As(err, &taskErr) {
				code = taskErr.Code
				if errors.Is(err, background.ErrQueueFull) || errors.Is(err, background.ErrNotRunning) {
					status = http.StatusServiceUnavailable
				}
			}
			return c.JSON(status, models.CreateAsyncErrorResponse(
				code,
				"Failed to submit resume parsing task: "+err.Error(),
				processID,
			))
		}

		return c.JSON(http.StatusAccepted, models.CreateAsyncParseResponse(processID))
	}
}

// ConvertDocumentHandler handles POST /api/v1/documents/convert: conversion only
func ConvertDocumentHandler(cfg *config.Config, svc ResumeService) echo.HandlerFunc {
	return func(c echo.Context) error {
		startTime := time.Now()
		requestID := middleware.RequestID(c)
		logger := logging.LogWithRequestID(requestID)

		filename, content, uploadErr := readUpload(c, cfg.Parser.MaxUploadBytes)
		if uploadErr != nil {
			return respondError(c, requestID, uploadErr)
		}

		markdown, err := svc.ConvertDocument(c.Request().Context(), content, filename)
		if err != nil {
			logger.WithError(err).Warn("Document conversion failed", map[string]interface{}{
				"filename": filename,
			})
			return respondError(c, requestID, utils.ErrorFromParse(err))
		}

		return c.JSON(http.StatusOK, models.ConvertResponse{
			Success:        true,
			Markdown:       markdown,
			Format:         converter.Extension(filename),
			ProcessingTime: time.Since(startTime),
			RequestID:      requestID,
		})
	}
}

// ExtractResumeHandler handles POST /api/v1/resume/extract: Markdown in, ResumeData out
func ExtractResumeHandler(svc ResumeService) echo.HandlerFunc {
	return func(c echo.Context) error {
		startTime := time.Now()
		requestID := middleware.RequestID(c)
		logger := logging.LogWithRequestID(requestID)

		var req models.ExtractRequest
		if err := c.Bind(&req); err != nil {
			logger.WithError(err).Warn("Failed to bind extract request")
			return respondError(c, requestID, utils.NewBadRequestError("Invalid request body"))
		}

		if err := requestValidator.Struct(&req); err != nil {
			return respondError(c, requestID, utils.NewValidationError(err.Error()))
		}

		resumeData, err := svc.ParseResumeToJSON(c.Request().Context(), req.Markdown)
		if err != nil {
			logger.WithError(err).Error("Resume extraction failed")
			return respondError(c, requestID, utils.ErrorFromParse(err))
		}

		return c.JSON(http.StatusOK, models.ExtractResponse{
			Success:        true,
			Resume:         resumeData,
			ProcessingTime: time.Since(startTime),
			RequestID:      requestID,
		})
	}
}
