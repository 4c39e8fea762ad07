package telegram

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-agency-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter logs outbound messages instead of calling Telegram.
// Used in dev mode and by local fan-out experiments.
type NoopBotAdapter struct {
	log   *zerolog.Logger
	delay time.Duration
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	return &NoopBotAdapter{log: logger, delay: 50 * time.Millisecond}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-time.After(b.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	b.log.Info().Int64("chat_id", chatID).Str("text", text).Msg("noop send")
	return nil
}

func (b *NoopBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-time.After(b.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	b.log.Info().Int64("chat_id", chatID).Str("text", text).Int("rows", len(rows)).Msg("noop send buttons")
	return nil
}

func (b *NoopBotAdapter) EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]adapter.InlineButton) error {
	b.log.Info().Int64("chat_id", chatID).Int("message_id", messageID).Str("text", text).Msg("noop edit")
	return nil
}

func (b *NoopBotAdapter) AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error {
	b.log.Debug().Str("callback_id", callbackID).Bool("alert", alert).Msg("noop answer callback")
	return nil
}
