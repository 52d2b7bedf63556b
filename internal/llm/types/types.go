package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidJSON is returned when a completion does not contain a JSON object
	ErrInvalidJSON = errors.New("completion is not a valid JSON object")
	// ErrEmptyResponse is returned when the provider answers without text
	ErrEmptyResponse = errors.New("empty completion response")
	// ErrProviderUnavailable is returned when no healthy provider is configured
	ErrProviderUnavailable = errors.New("LLM provider unavailable")
)

// CompletionRequest is a single-turn JSON completion request
type CompletionRequest struct {
	Prompt       string
	SystemPrompt string
	// MaxTokens caps the completion length; 0 uses the configured default
	MaxTokens int
	// Temperature overrides the configured temperature when set
	Temperature *float32
}

// ParseJSONObject extracts the first JSON object from model output. Code fences and
// prose before or after the object are skipped; only the first complete value is decoded.
func ParseJSONObject(text string) (map[string]interface{}, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var firstErr error
	for offset := 0; offset < len(text); {
		i := strings.IndexByte(text[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i

		result, err := decodeObject(text[start:])
		if err == nil {
			return result, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		offset = start + 1
	}

	if firstErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, firstErr)
	}
	return nil, fmt.Errorf("%w: no object found in %q", ErrInvalidJSON, preview(text))
}

// decodeObject decodes the object at the start of s and ignores whatever follows it
func decodeObject(s string) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := json.NewDecoder(strings.NewReader(s)).Decode(&result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errors.New("null object")
	}
	return result, nil
}

func preview(s string) string {
	const max = 120
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
