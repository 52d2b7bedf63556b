package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"resume-parser/internal/config"
	"resume-parser/internal/logging"
	"resume-parser/internal/logging/types"
)

// Manager manages the LLM provider and its lifecycle. It paces outgoing requests
// with a token bucket sized from llm.rate_limit.
type Manager struct {
	config   *config.Config
	factory  *LLMFactory
	provider LLMProvider
	limiter  *rate.Limiter
	logger   types.Logger
	mu       sync.RWMutex
	healthy  bool
}

// NewManager creates a new LLM manager instance
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		config:  cfg,
		factory: NewLLMFactory(cfg),
		limiter: newLimiter(cfg.LLM.RateLimit),
		logger:  logging.GetGlobalLogger().WithField("component", "llm_manager"),
	}
}

// NewManagerWithProvider wraps an existing provider, marking it healthy
func NewManagerWithProvider(cfg *config.Config, provider LLMProvider) *Manager {
	m := NewManager(cfg)
	m.provider = provider
	m.healthy = true
	return m
}

// newLimiter converts a per-minute budget into a limiter; non-positive disables pacing
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
}

// Start initializes the LLM manager and creates the provider
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Starting LLM manager", map[string]interface{}{
		"provider": m.config.LLM.Provider,
		"model":    m.config.LLM.Model,
	})

	provider, err := m.factory.CreateProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}
	m.provider = provider

	if m.config.LLM.SkipHealthCheck {
		m.healthy = true
		m.logger.Info("LLM health check skipped", map[string]interface{}{
			"provider": provider.GetProviderName(),
		})
		return nil
	}

	checkCtx, cancel := context.WithTimeout(ctx, m.config.LLM.Timeout)
	defer cancel()

	if err := provider.IsHealthy(checkCtx); err != nil {
		// The server still starts; extraction requests fail until a health check passes
		m.healthy = false
		m.logger.Warn("LLM provider health check failed - resume extraction will be disabled", map[string]interface{}{
			"provider": provider.GetProviderName(),
			"error":    err.Error(),
		})
	} else {
		m.healthy = true
		m.logger.Info("LLM manager started successfully", map[string]interface{}{
			"provider": provider.GetProviderName(),
		})
	}

	return nil
}

// Stop shuts down the LLM manager
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Stopping LLM manager")
	m.provider = nil
	m.healthy = false
	return nil
}

// CompleteJSON forwards req to the provider once the rate limiter admits it. Errors
// are returned as-is; nothing is retried.
func (m *Manager) CompleteJSON(ctx context.Context, req CompletionRequest) (map[string]interface{}, error) {
	m.mu.RLock()
	provider := m.provider
	healthy := m.healthy
	m.mu.RUnlock()

	if provider == nil {
		return nil, fmt.Errorf("%w: manager not started", ErrProviderUnavailable)
	}
	if !healthy {
		return nil, fmt.Errorf("%w: check API key configuration (set LLM_API_KEY environment variable)", ErrProviderUnavailable)
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	if m.config.LLM.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.LLM.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := provider.CompleteJSON(ctx, req)
	fields := map[string]interface{}{
		"provider":     provider.GetProviderName(),
		"prompt_chars": len(req.Prompt),
		"duration":     time.Since(start).String(),
		"max_tokens":   req.MaxTokens,
	}
	if err != nil {
		fields["error"] = err.Error()
		m.logger.Error("LLM completion failed", fields)
		return nil, err
	}

	m.logger.Debug("LLM completion finished", fields)
	return result, nil
}

// IsHealthy checks if the LLM manager and provider are healthy
func (m *Manager) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy && m.provider != nil
}

// GetProviderName returns the name of the current LLM provider
func (m *Manager) GetProviderName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.provider != nil {
		return m.provider.GetProviderName()
	}
	return "none"
}

// CheckHealth performs a health check on the LLM provider
func (m *Manager) CheckHealth(ctx context.Context) error {
	m.mu.RLock()
	provider := m.provider
	m.mu.RUnlock()

	if provider == nil {
		return ErrProviderUnavailable
	}

	err := provider.IsHealthy(ctx)

	m.mu.Lock()
	m.healthy = (err == nil)
	m.mu.Unlock()

	return err
}
