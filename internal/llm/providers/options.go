package providers

import (
	"resume-parser/internal/config"
	llmtypes "resume-parser/internal/llm/types"
)

func maxTokens(req llmtypes.CompletionRequest, cfg *config.Config) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return cfg.LLM.MaxTokens
}

func temperature(req llmtypes.CompletionRequest, cfg *config.Config) float32 {
	if req.Temperature != nil {
		return *req.Temperature
	}
	return cfg.LLM.Temperature
}
