package ai

import (
	"context"

	"paperhulp/internal/config"
	"paperhulp/internal/domain/ports/adapter"
)

// NewFromConfig selects the extraction backend by which keys are configured:
// OpenAI first, then a generic OpenAI-compatible gateway, then Gemini.
// With no keys at all the noop adapter is returned so dev setups still run.
func NewFromConfig(ctx context.Context, cfg config.AIConfig) (adapter.ChatModel, error) {
	switch {
	case cfg.OpenAIKey != "":
		return NewOpenAIAdapter(cfg.OpenAIKey, cfg.Model, cfg.Temperature)
	case cfg.GatewayKey != "":
		return NewGatewayAdapter(cfg.GatewayKey, cfg.Model, cfg.GatewayURL, cfg.Temperature)
	case cfg.GeminiKey != "":
		return NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.Model, cfg.Temperature)
	default:
		return NewNoopAdapter(), nil
	}
}
