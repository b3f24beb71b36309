// Package aiclient implements the AI Assessment and AI Question services the engine
// augments its results with.
package aiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/maturity-engine/internal/assessment"
)

const (
	ProviderNone   = "none"
	ProviderMCP    = "mcp"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Backend serves both engine capabilities.
type Backend interface {
	assessment.Augmenter
	assessment.QuestionGenerator
}

type Config struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// New builds the backend for cfg.Provider. The returned close function is never nil.
// ProviderNone yields a nil backend, which leaves the engine on its fallback path.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Backend, func() error, error) {
	noop := func() error { return nil }
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Provider {
	case "", ProviderNone:
		return nil, noop, nil
	case ProviderMCP:
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = assessment.DefaultAITimeout
		}
		return NewMCPClient(cfg.BaseURL,
			WithHTTPClient(&http.Client{Timeout: timeout}),
			WithMCPLogger(logger)), noop, nil
	case ProviderGemini:
		c, err := NewGeminiCompleter(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, noop, err
		}
		return NewLLMService(c, logger), c.Close, nil
	case ProviderOpenAI:
		c, err := NewOpenAICompleter(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout)
		if err != nil {
			return nil, noop, err
		}
		return NewLLMService(c, logger), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
