package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// typingNotifier sends periodic "typing" actions while a model round
// is in flight, so the chat shows activity during slow turns.
type typingNotifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	ticker  *time.Ticker
	done    chan struct{}
	logger  *zap.Logger
	started bool
}

func newTypingNotifier(bot *tgbotapi.BotAPI, chatID int64, logger *zap.Logger) *typingNotifier {
	return &typingNotifier{
		bot:    bot,
		chatID: chatID,
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start begins sending typing indicators every 4 seconds.
// Telegram expires a typing action after 5 seconds, so 4 keeps it alive.
func (t *typingNotifier) Start(ctx context.Context) {
	if t.started {
		return
	}

	t.started = true
	t.ticker = time.NewTicker(4 * time.Second)

	t.sendAction()

	go func() {
		for {
			select {
			case <-t.ticker.C:
				t.sendAction()
			case <-t.done:
				t.ticker.Stop()
				return
			case <-ctx.Done():
				t.ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops sending typing indicators
func (t *typingNotifier) Stop() {
	if !t.started {
		return
	}

	close(t.done)
	t.started = false
}

func (t *typingNotifier) sendAction() {
	action := tgbotapi.NewChatAction(t.chatID, tgbotapi.ChatTyping)
	if _, err := t.bot.Request(action); err != nil {
		t.logger.Warn("failed to send typing action",
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}
}
