package middleware

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// LoggingMiddleware logs every update once it was handled.
type LoggingMiddleware struct {
	logger *zap.Logger
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger *zap.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger,
	}
}

// Handle logs the update
func (m *LoggingMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	start := time.Now()

	var userID, chatID int64
	var kind string

	switch {
	case update.Message != nil && update.Message.IsCommand():
		userID = update.Message.From.ID
		chatID = update.Message.Chat.ID
		kind = "command"
	case update.Message != nil:
		userID = update.Message.From.ID
		chatID = update.Message.Chat.ID
		kind = "message"
	case update.CallbackQuery != nil:
		userID = update.CallbackQuery.From.ID
		if update.CallbackQuery.Message != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
		kind = "callback"
	default:
		kind = "other"
	}

	next(update)

	m.logger.Info("telegram update handled",
		zap.Int64("user_id", userID),
		zap.Int64("chat_id", chatID),
		zap.String("type", kind),
		zap.Int("update_id", update.UpdateID),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
}
