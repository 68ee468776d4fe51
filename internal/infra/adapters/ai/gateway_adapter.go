package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"paperhulp/internal/domain"
	"paperhulp/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.ChatModel = (*GatewayAdapter)(nil)

// GatewayAdapter implements adapter.ChatModel against any OpenAI-compatible
// gateway. The chat completions path is the same as OpenAI's:
// /chat/completions with Authorization: Bearer <key>.
type GatewayAdapter struct {
	apiKey      string
	base        string
	model       string
	temperature float64
	client      *http.Client
}

func NewGatewayAdapter(apiKey, model, base string, temperature float64) (*GatewayAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gateway api key empty")
	}
	if base == "" {
		return nil, errors.New("gateway base url empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &GatewayAdapter{
		apiKey:      apiKey,
		base:        strings.TrimRight(base, "/"),
		model:       model,
		temperature: temperature,
		client:      &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (g *GatewayAdapter) Name() string { return "gateway" }

func (g *GatewayAdapter) Complete(ctx context.Context, messages []adapter.Message) (string, adapter.Usage, error) {
	// Build the request using the shared adapter.Message with JSON tags
	reqBody := struct {
		Model       string            `json:"model"`
		Messages    []adapter.Message `json:"messages"`
		Temperature float64           `json:"temperature"`
	}{Model: g.model, Messages: messages, Temperature: g.temperature}

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", adapter.Usage{}, &domain.TransportError{Provider: g.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", adapter.Usage{}, &domain.TransportError{Provider: g.Name(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", adapter.Usage{}, &domain.TransportError{Provider: g.Name(), Err: fmt.Errorf("http %d", resp.StatusCode)}
	}

	var payload struct {
		Choices []struct {
			Message adapter.Message `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", adapter.Usage{}, &domain.TransportError{Provider: g.Name(), Err: err}
	}

	usage := adapter.Usage{
		PromptTokens:     payload.Usage.PromptTokens,
		CompletionTokens: payload.Usage.CompletionTokens,
		TotalTokens:      payload.Usage.TotalTokens,
	}
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, usage, nil
		}
	}
	return "", usage, domain.ErrEmptyModelOutput
}
