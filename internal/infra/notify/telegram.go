// Package notify delivers best-effort processing-outcome messages.
package notify

import (
	"context"
	"fmt"

	"paperhulp/internal/config"
	"paperhulp/internal/domain/ports/adapter"
	"paperhulp/internal/infra/i18n"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var _ adapter.Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier pushes outcome messages to users who linked a chat id.
// Users without a mapping are silently skipped; delivery never fails a job.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs map[string]int64
	bundle  *i18n.Bundle
	logger  *zerolog.Logger
}

func NewTelegramNotifier(cfg config.NotifyConfig, bundle *i18n.Bundle, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramNotifier{
		bot:     bot,
		chatIDs: cfg.ChatIDs,
		bundle:  bundle,
		logger:  logger,
	}, nil
}

func (n *TelegramNotifier) NotifyProcessed(ctx context.Context, userID, documentID, summary string) error {
	return n.send(userID, documentID, n.bundle.For("").T("notify_processed", summary))
}

func (n *TelegramNotifier) NotifyFailed(ctx context.Context, userID, documentID, reason string) error {
	return n.send(userID, documentID, n.bundle.For("").T("notify_failed", reason))
}

func (n *TelegramNotifier) send(userID, documentID, text string) error {
	chatID, ok := n.chatIDs[userID]
	if !ok {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Warn().
			Str("user_id", userID).
			Str("document_id", documentID).
			Err(err).
			Msg("telegram notification failed")
		return err
	}
	return nil
}
