//go:build !integration

package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"paperhulp/internal/config"
	"paperhulp/internal/domain"
	"paperhulp/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// fakeChat replays scripted responses and records every request.
type fakeChat struct {
	responses []string
	err       error
	requests  [][]adapter.Message
}

func (f *fakeChat) Name() string { return "fake" }

func (f *fakeChat) Complete(_ context.Context, messages []adapter.Message) (string, adapter.Usage, error) {
	f.requests = append(f.requests, messages)
	if f.err != nil {
		return "", adapter.Usage{}, f.err
	}
	i := len(f.requests) - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], adapter.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, nil
}

func newTestClient(chat adapter.ChatModel) *Client {
	logger := zerolog.Nop()
	return NewClient(chat, config.AIConfig{Model: "gpt-4o-mini"}, &logger)
}

func TestExtract_ValidFirstResponse(t *testing.T) {
	chat := &fakeChat{responses: []string{validResponse}}
	c := newTestClient(chat)

	res, err := c.Extract(context.Background(), "CJIB boete €79 betaal voor 2026-01-20", "nl")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.DocType != "BOETE" {
		t.Errorf("docType: %s", res.DocType)
	}
	if len(chat.requests) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(chat.requests))
	}
	sys := chat.requests[0][0]
	if sys.Role != "system" || !strings.Contains(sys.Content, "ONLY valid JSON") {
		t.Errorf("system prompt missing json-only instruction: %q", sys.Content)
	}
	if !strings.Contains(chat.requests[0][1].Content, "CJIB boete") {
		t.Error("document text missing from user prompt")
	}
}

func TestExtract_RepairRoundRecovers(t *testing.T) {
	chat := &fakeChat{responses: []string{"```json\nnot quite\n```", validResponse}}
	c := newTestClient(chat)

	res, err := c.Extract(context.Background(), "tekst", "nl")
	if err != nil {
		t.Fatalf("repair should have recovered: %v", err)
	}
	if res.DocType != "BOETE" {
		t.Errorf("docType: %s", res.DocType)
	}
	if len(chat.requests) != 2 {
		t.Fatalf("expected two requests, got %d", len(chat.requests))
	}
	repair := chat.requests[1][1].Content
	if !strings.Contains(repair, "INVALID OUTPUT") || !strings.Contains(repair, "not quite") {
		t.Error("repair prompt must carry the invalid output")
	}
	if !strings.Contains(repair, "ERROR") {
		t.Error("repair prompt must carry the validation error")
	}
}

func TestExtract_BoundedRepair(t *testing.T) {
	bad := `{"docType":"FACTUUR","sender":null,"summary":"x","actions":[],"amountEUR":null,"deadline":null,"confidence":50}`
	alsoBad := `{"docType":"NOTA","sender":null,"summary":"x","actions":[],"amountEUR":null,"deadline":null,"confidence":50}`
	chat := &fakeChat{responses: []string{bad, alsoBad}}
	c := newTestClient(chat)

	_, err := c.Extract(context.Background(), "tekst", "nl")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(chat.requests) != 2 {
		t.Fatalf("no third request allowed, got %d", len(chat.requests))
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *domain.ValidationError, got %T", err)
	}
	// the surfaced detail is the first failure, not the repair's
	if !strings.Contains(verr.Detail, "FACTUUR") && !strings.Contains(verr.Detail, "docType") {
		t.Errorf("detail should reference the first enum failure: %q", verr.Detail)
	}
}

func TestExtract_TransportErrorPropagates(t *testing.T) {
	wrapped := &domain.TransportError{Provider: "fake", Err: errors.New("connection refused")}
	chat := &fakeChat{err: wrapped}
	c := newTestClient(chat)

	_, err := c.Extract(context.Background(), "tekst", "nl")
	var terr *domain.TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *domain.TransportError, got %v", err)
	}
	if len(chat.requests) != 1 {
		t.Errorf("no repair on transport failure, got %d requests", len(chat.requests))
	}
}

func TestExtract_EmptyOutput(t *testing.T) {
	chat := &fakeChat{responses: []string{"   \n"}}
	c := newTestClient(chat)

	_, err := c.Extract(context.Background(), "tekst", "nl")
	if !errors.Is(err, domain.ErrEmptyModelOutput) {
		t.Fatalf("expected ErrEmptyModelOutput, got %v", err)
	}
}

func TestExtract_LanguageSelectsPromptLanguage(t *testing.T) {
	cases := map[string]string{"nl": "Dutch", "ar": "Arabic", "en": "English"}
	for lang, want := range cases {
		chat := &fakeChat{responses: []string{validResponse}}
		c := newTestClient(chat)
		if _, err := c.Extract(context.Background(), "tekst", lang); err != nil {
			t.Fatalf("lang %s: %v", lang, err)
		}
		if !strings.Contains(chat.requests[0][0].Content, want) {
			t.Errorf("lang %s: system prompt should mention %s", lang, want)
		}
	}
}
