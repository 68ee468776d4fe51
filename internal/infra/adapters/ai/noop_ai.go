package ai

import (
	"context"
	"time"

	"paperhulp/internal/domain/ports/adapter"
)

var _ adapter.ChatModel = (*NoopAdapter)(nil)

// NoopAdapter implements adapter.ChatModel for local/dev runs without an API
// key. It always answers with the same well-formed extraction payload.
type NoopAdapter struct{}

func NewNoopAdapter() *NoopAdapter { return &NoopAdapter{} }

func (a *NoopAdapter) Name() string { return "noop" }

func (a *NoopAdapter) Complete(ctx context.Context, messages []adapter.Message) (string, adapter.Usage, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", adapter.Usage{}, ctx.Err()
	}
	const reply = `{
  "docType": "OVERIG",
  "sender": null,
  "summary": "Dit is een testdocument. Er is geen echte verwerking uitgevoerd.",
  "actions": [],
  "amountEUR": null,
  "deadline": null,
  "confidence": 1
}`
	return reply, adapter.Usage{}, nil
}
