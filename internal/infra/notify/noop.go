package notify

import (
	"context"

	"paperhulp/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier logs instead of delivering; used when no bot token is set.
type NoopNotifier struct {
	logger *zerolog.Logger
}

func NewNoopNotifier(logger *zerolog.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

func (n *NoopNotifier) NotifyProcessed(ctx context.Context, userID, documentID, summary string) error {
	n.logger.Debug().Str("user_id", userID).Str("document_id", documentID).Msg("document processed (notification suppressed)")
	return nil
}

func (n *NoopNotifier) NotifyFailed(ctx context.Context, userID, documentID, reason string) error {
	n.logger.Debug().Str("user_id", userID).Str("document_id", documentID).Str("reason", reason).Msg("document failed (notification suppressed)")
	return nil
}
