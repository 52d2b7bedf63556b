package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"resume-parser/internal/config"
	llmtypes "resume-parser/internal/llm/types"
	"resume-parser/internal/logging"
	"resume-parser/internal/logging/types"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider implements the LLM provider interface using the Gemini API. Requests
// set the application/json response MIME type.
type GeminiProvider struct {
	client *genai.Client
	config *config.Config
	model  string
	logger types.Logger
}

// NewGeminiProvider creates a new Gemini provider instance
func NewGeminiProvider(ctx context.Context, cfg *config.Config) (*GeminiProvider, error) {
	model := cfg.LLM.Model
	if model == "" || strings.HasPrefix(model, "claude") {
		model = defaultGeminiModel
	}

	gp := &GeminiProvider{
		config: cfg,
		model:  model,
		logger: logging.GetGlobalLogger().WithField("provider", "gemini"),
	}

	// Without a key the client cannot be built; IsHealthy reports the missing key
	if cfg.LLM.APIKey == "" {
		return gp, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.LLM.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.LLM.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.LLM.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	gp.client = client

	return gp, nil
}

// CompleteJSON asks Gemini for a JSON object and decodes it
func (gp *GeminiProvider) CompleteJSON(ctx context.Context, req llmtypes.CompletionRequest) (map[string]interface{}, error) {
	if gp.client == nil {
		return nil, fmt.Errorf("%w: Gemini API key not configured", llmtypes.ErrProviderUnavailable)
	}

	startTime := time.Now()

	genConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(temperature(req, gp.config)),
		MaxOutputTokens:  int32(maxTokens(req, gp.config)),
		ResponseMIMEType: "application/json",
	}
	if req.SystemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	result, err := gp.client.Models.GenerateContent(ctx, gp.model, genai.Text(req.Prompt), genConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to call Gemini API: %w", err)
	}

	responseText := result.Text()

	var finishReason genai.FinishReason
	if len(result.Candidates) > 0 {
		finishReason = result.Candidates[0].FinishReason
	}

	gp.logger.Debug("Gemini response received", map[string]interface{}{
		"model":           gp.model,
		"finish_reason":   string(finishReason),
		"response_chars":  len(responseText),
		"processing_time": time.Since(startTime).String(),
	})

	parsed, err := llmtypes.ParseJSONObject(responseText)
	if err != nil {
		if finishReason == genai.FinishReasonMaxTokens {
			return nil, fmt.Errorf("Gemini response truncated at max output tokens: %w", err)
		}
		return nil, fmt.Errorf("failed to parse Gemini response: %w", err)
	}

	return parsed, nil
}

// IsHealthy looks up the configured model, which does not consume tokens
func (gp *GeminiProvider) IsHealthy(ctx context.Context) error {
	if gp.config.LLM.APIKey == "" {
		return fmt.Errorf("Gemini API key not configured - set LLM_API_KEY environment variable")
	}
	if gp.client == nil {
		return llmtypes.ErrProviderUnavailable
	}

	if _, err := gp.client.Models.Get(ctx, gp.model, nil); err != nil {
		return fmt.Errorf("Gemini API health check failed: %w", err)
	}

	return nil
}

// GetProviderName returns the name of the LLM provider
func (gp *GeminiProvider) GetProviderName() string {
	return "gemini"
}
