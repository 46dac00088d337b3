// Package telegram runs conversational interviews over Telegram chats.
// Each chat maps to one conversation thread, so the checkpoint store
// carries all state and the bot itself stays stateless.
package telegram

import (
	"context"
	"fmt"

	"github.com/chatfield/chatfield-go/internal/config"
	"github.com/chatfield/chatfield-go/internal/telegram/bot"
	"go.uber.org/zap"
)

// Bot is what the process entrypoint drives: start consuming updates,
// stop and wait for in-flight handlers.
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

var _ Bot = (*bot.Bot)(nil)

// NewBot wires the conversation usecase into a polling bot.
func NewBot(
	cfg *config.TelegramConfig,
	sessionUC bot.SessionUsecase,
	logger *zap.Logger,
) (Bot, error) {
	b, err := bot.New(cfg, sessionUC, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	logger.Info("telegram bot initialized successfully")

	return b, nil
}
