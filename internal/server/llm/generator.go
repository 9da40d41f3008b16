// Package llm is the reply collaborator: it turns one user message into one
// reply by calling an OpenAI-compatible chat completions endpoint.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/logging"
	"github.com/dmitrijs2005/chatrelay/internal/server/config"
)

// Generator produces a reply for a single message. Every failure it
// returns matches common.ErrorGeneration.
type Generator interface {
	GenerateResponse(ctx context.Context, text string) (string, error)
}

var (
	_ Generator = (*Client)(nil)
	_ Generator = (*MockGenerator)(nil)
	_ Generator = (*Breaker)(nil)
)

// NewGenerator builds the generator selected by cfg.LLMMode, wrapped in a
// circuit breaker.
func NewGenerator(cfg *config.Config, logger logging.Logger) (*Breaker, error) {
	var g Generator

	switch cfg.LLMMode {
	case config.LLMModeMock:
		logger.Info(context.Background(), "using mock reply generator")
		g = NewMockGenerator()
	case config.LLMModeDeepSeek, "":
		if cfg.LLMAPIKey == "" {
			logger.Warn(context.Background(), "reply collaborator API key is not set, requests will be rejected upstream")
		}
		g = NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout)
	default:
		return nil, fmt.Errorf("unknown llm mode %q", cfg.LLMMode)
	}

	return NewBreaker(g, DefaultBreakerSettings("llm"), logger), nil
}

// DefaultBreakerSettings trips after most of a small window fails and probes
// again after half a minute.
func DefaultBreakerSettings(name string) BreakerSettings {
	return BreakerSettings{
		Name:             name,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}
