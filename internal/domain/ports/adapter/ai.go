package adapter

import "context"

// Message is one chat turn sent to a model provider.
type Message struct {
	Role    string `json:"role"` // "system" | "user"
	Content string `json:"content"`
}

// Usage for a single completion call, as reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatModel is the port for the generative extraction backend. The
// structured-extraction client layers prompting, schema validation and the
// single repair round on top of this; adapters stay dumb transports.
type ChatModel interface {
	// Name identifies the provider for logs and metrics.
	Name() string

	// Complete returns the assistant text plus usage for one request.
	// Transport-level failures come back as *domain.TransportError.
	Complete(ctx context.Context, messages []Message) (string, Usage, error)
}
