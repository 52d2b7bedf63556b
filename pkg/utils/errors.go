package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"resume-parser/internal/converter"
	"resume-parser/internal/llm"
	"resume-parser/internal/resume"
)

// CustomError represents a custom application error
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Common error constructors
func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewTimeoutError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusRequestTimeout,
		Message: message,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "Validation failed",
		Detail:  detail,
	}
}

func NewPayloadTooLargeError(limit int64) *CustomError {
	return &CustomError{
		Code:    http.StatusRequestEntityTooLarge,
		Message: "Uploaded document is too large",
		Detail:  fmt.Sprintf("limit is %d bytes", limit),
	}
}

// Parsing specific errors
func NewUnsupportedFormatError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnsupportedMediaType,
		Message: "Unsupported document format",
		Detail:  detail,
	}
}

func NewConversionError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Document conversion failed",
		Detail:  detail,
	}
}

func NewLLMError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Message: "LLM processing failed",
		Detail:  detail,
	}
}

// NewSchemaValidationError reports model output that does not fit the resume schema
func NewSchemaValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Message: "Extracted resume failed schema validation",
		Detail:  detail,
	}
}

func NewServiceUnavailableError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusServiceUnavailable,
		Message: "LLM provider unavailable",
		Detail:  detail,
	}
}

// ErrorFromParse maps a pipeline error onto the HTTP error it should surface as
func ErrorFromParse(err error) *CustomError {
	var custom *CustomError
	switch {
	case errors.As(err, &custom):
		return custom
	case errors.Is(err, converter.ErrUnsupportedFormat):
		return NewUnsupportedFormatError(err.Error())
	case errors.Is(err, converter.ErrEmptyDocument), errors.Is(err, converter.ErrConversion):
		return NewConversionError(err.Error())
	case errors.Is(err, resume.ErrEmptyInput):
		return NewValidationError(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return NewTimeoutError("Resume parsing timed out")
	case errors.Is(err, llm.ErrProviderUnavailable):
		return NewServiceUnavailableError(err.Error())
	case errors.Is(err, resume.ErrSchemaValidation):
		return NewSchemaValidationError(err.Error())
	case errors.Is(err, llm.ErrInvalidJSON), errors.Is(err, llm.ErrEmptyResponse):
		return NewLLMError(err.Error())
	default:
		return NewLLMError(err.Error())
	}
}
