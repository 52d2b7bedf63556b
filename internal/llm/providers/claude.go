package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"resume-parser/internal/config"
	llmtypes "resume-parser/internal/llm/types"
	"resume-parser/internal/logging"
	"resume-parser/internal/logging/types"
)

// ClaudeProvider implements the LLM provider interface using Anthropic's Claude
type ClaudeProvider struct {
	client anthropic.Client
	config *config.Config
	logger types.Logger
}

// NewClaudeProvider creates a new Claude provider instance
func NewClaudeProvider(cfg *config.Config) *ClaudeProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.LLM.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.LLM.BaseURL))
	}

	return &ClaudeProvider{
		client: anthropic.NewClient(opts...),
		config: cfg,
		logger: logging.GetGlobalLogger().WithField("provider", "claude"),
	}
}

// CompleteJSON asks Claude for a JSON object and decodes it
func (cp *ClaudeProvider) CompleteJSON(ctx context.Context, req llmtypes.CompletionRequest) (map[string]interface{}, error) {
	startTime := time.Now()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(cp.config.LLM.Model),
		MaxTokens:   int64(maxTokens(req, cp.config)),
		Temperature: anthropic.Float(float64(temperature(req, cp.config))),
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: req.Prompt},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	response, err := cp.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to call Claude API: %w", err)
	}

	responseText := cp.responseText(response)
	cp.logger.Debug("Claude response received", map[string]interface{}{
		"model":           cp.config.LLM.Model,
		"stop_reason":     string(response.StopReason),
		"input_tokens":    response.Usage.InputTokens,
		"output_tokens":   response.Usage.OutputTokens,
		"response_chars":  len(responseText),
		"processing_time": time.Since(startTime).String(),
	})

	result, err := llmtypes.ParseJSONObject(responseText)
	if err != nil {
		if response.StopReason == anthropic.StopReasonMaxTokens {
			return nil, fmt.Errorf("Claude response truncated at max_tokens: %w", err)
		}
		return nil, fmt.Errorf("failed to parse Claude response: %w", err)
	}

	return result, nil
}

// responseText concatenates the text blocks of a message
func (cp *ClaudeProvider) responseText(response *anthropic.Message) string {
	var b strings.Builder
	for _, content := range response.Content {
		if content.Type == "text" {
			b.WriteString(content.AsText().Text)
		}
	}
	return b.String()
}

// IsHealthy checks if the Claude provider is healthy and available
func (cp *ClaudeProvider) IsHealthy(ctx context.Context) error {
	if cp.config.LLM.APIKey == "" {
		return fmt.Errorf("Claude API key not configured - set LLM_API_KEY environment variable")
	}

	_, err := cp.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(cp.config.LLM.Model),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{{
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: "Hello"},
			}},
			Role: anthropic.MessageParamRoleUser,
		}},
	})
	if err != nil {
		return fmt.Errorf("Claude API health check failed: %w", err)
	}

	return nil
}

// GetProviderName returns the name of the LLM provider
func (cp *ClaudeProvider) GetProviderName() string {
	return "claude"
}
