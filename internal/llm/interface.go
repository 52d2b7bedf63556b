package llm

import (
	"context"

	"resume-parser/internal/llm/types"
)

type CompletionRequest = types.CompletionRequest

var (
	ErrInvalidJSON         = types.ErrInvalidJSON
	ErrEmptyResponse       = types.ErrEmptyResponse
	ErrProviderUnavailable = types.ErrProviderUnavailable
)

// LLMProvider defines the interface for LLM providers
type LLMProvider interface {
	// CompleteJSON sends a single-turn request and returns the JSON object the model produced
	CompleteJSON(ctx context.Context, req CompletionRequest) (map[string]interface{}, error)

	// IsHealthy checks if the LLM provider is healthy and available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the LLM provider
	GetProviderName() string
}
