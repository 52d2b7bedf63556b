package server

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"resume-parser/internal/converter"
	"resume-parser/internal/llm"
	"resume-parser/internal/resume"
)

// toStatus maps a pipeline error onto a gRPC status
func toStatus(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, converter.ErrUnsupportedFormat), errors.Is(err, resume.ErrEmptyInput):
		code = codes.InvalidArgument
	case errors.Is(err, converter.ErrEmptyDocument), errors.Is(err, converter.ErrConversion):
		code = codes.FailedPrecondition
	case errors.Is(err, llm.ErrProviderUnavailable):
		code = codes.Unavailable
	}
	return status.Error(code, err.Error())
}
