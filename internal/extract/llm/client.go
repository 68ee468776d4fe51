// Package llm implements the structured extraction client: prompting, schema
// validation and the single bounded repair round on top of a ChatModel.
package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"paperhulp/internal/config"
	"paperhulp/internal/domain"
	"paperhulp/internal/domain/model"
	"paperhulp/internal/domain/ports/adapter"
	"paperhulp/internal/infra/logging"
	"paperhulp/internal/infra/metrics"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"
)

type Client struct {
	chat    adapter.ChatModel
	cfg     config.AIConfig
	logger  *zerolog.Logger
	encoder *tiktoken.Tiktoken
}

func NewClient(chat adapter.ChatModel, cfg config.AIConfig, logger *zerolog.Logger) *Client {
	if cfg.MaxInputLen <= 0 {
		cfg.MaxInputLen = 12000
	}
	// encoder is used for usage estimation only, so a load failure is not fatal
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn().Err(err).Msg("tiktoken encoding unavailable, token estimates disabled")
	}
	return &Client{chat: chat, cfg: cfg, logger: logger, encoder: enc}
}

// Extract turns raw document text into a validated ExtractionResult.
// Invalid model output triggers exactly one repair round; a second failure
// surfaces the first validation error as the fatal outcome.
func (c *Client) Extract(ctx context.Context, text, lang string) (*model.ExtractionResult, error) {
	logger := logging.With(ctx, c.logger)

	first, err := c.complete(ctx, []adapter.Message{
		{Role: "system", Content: systemPrompt(lang)},
		{Role: "user", Content: userPrompt(text, c.cfg.MaxInputLen)},
	})
	if err != nil {
		return nil, err
	}

	res, firstErr := parseResult(first)
	if firstErr == nil {
		return res, nil
	}

	logger.Warn().Str("detail", firstErr.Detail).Msg("extraction output invalid, starting repair round")
	metrics.ExtractionRepair()

	repaired, err := c.complete(ctx, []adapter.Message{
		{Role: "system", Content: repairSystemPrompt},
		{Role: "user", Content: repairUserPrompt(first, firstErr)},
	})
	if err != nil {
		return nil, err
	}

	res, secondErr := parseResult(repaired)
	if secondErr == nil {
		return res, nil
	}

	metrics.ExtractionRejected()
	logger.Error().Str("detail", secondErr.Detail).Msg("repair round failed, giving up")
	// the stored job error carries the first failure, not the repair's
	return nil, firstErr
}

func (c *Client) complete(ctx context.Context, messages []adapter.Message) (string, error) {
	start := time.Now()
	out, usage, err := c.chat.Complete(ctx, messages)
	latency := int(time.Since(start).Milliseconds())

	if usage.TotalTokens == 0 && c.encoder != nil {
		// provider did not report usage, estimate from the payload
		for _, m := range messages {
			usage.PromptTokens += len(c.encoder.Encode(m.Content, nil, nil))
		}
		usage.CompletionTokens = len(c.encoder.Encode(out, nil, nil))
	}
	metrics.ObserveChatUsage(c.chat.Name(), c.cfg.Model, usage.PromptTokens, usage.CompletionTokens, latency, err == nil)

	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", domain.ErrEmptyModelOutput
	}
	return out, nil
}

// parseResult runs the two-phase check (structural parse, then schema
// validation) and only then binds the bytes to the typed result.
func parseResult(raw string) (*model.ExtractionResult, *domain.ValidationError) {
	data := []byte(strings.TrimSpace(raw))
	if err := validateRaw(data); err != nil {
		return nil, err.(*domain.ValidationError)
	}
	var res model.ExtractionResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, &domain.ValidationError{Detail: err.Error()}
	}
	return &res, nil
}
