package adapter

import "context"

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// TelegramBotAdapter is the outbound messaging port. SendMessage returns
// ErrRecipientBlocked-class failures as plain errors; the dispatcher
// classifies them by inspecting the platform error text.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, rows [][]InlineButton) error
	// AnswerCallback acknowledges a callback query; alert pops a blocking
	// dialog instead of a toast.
	AnswerCallback(ctx context.Context, callbackID string, text string, alert bool) error
}
