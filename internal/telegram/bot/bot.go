package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chatfield/chatfield-go/internal/config"
	"github.com/chatfield/chatfield-go/internal/entity"
	"github.com/chatfield/chatfield-go/internal/telegram/keyboard"
	"github.com/chatfield/chatfield-go/internal/telegram/middleware"
	"github.com/chatfield/chatfield-go/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Bot represents the Telegram bot. Each chat maps to one conversation
// thread, so a user can leave and pick up where they stopped.
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.TelegramConfig
	usecase     SessionUsecase
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// New creates a new Telegram bot
func New(
	cfg *config.TelegramConfig,
	usecase SessionUsecase,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	bot := &Bot{
		api:      api,
		cfg:      cfg,
		usecase:  usecase,
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	bot.loggingMW = middleware.NewLoggingMiddleware(logger)
	bot.recoveryMW = middleware.NewRecoveryMiddleware(logger, api)
	bot.rateLimitMW = middleware.NewRateLimiterMiddleware(
		cfg.RateLimitPerMinute,
		cfg.RateLimitBurst,
		logger,
		api,
	)

	return bot, nil
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)
	b.updatesChan = updates

	ctx = ctxzap.ToContext(ctx, b.logger)

	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()

	// Wait for all active handlers to complete
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// processUpdates processes incoming updates
func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update := <-b.updatesChan:
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware processes update through middleware chain
func (b *Bot) handleUpdateWithMiddleware(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(u3)
			})
		})
	})
}

// handleUpdate routes update to appropriate handler
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(context.Background(), b.logger)

	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
		return
	}
}

// handleMessage treats any plain text as the user's next answer and
// runs one conversation round with it.
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	chatID := message.Chat.ID

	if message.Text == "" {
		b.sendError(chatID, "I can only read text here. Type your answer as a message.")
		return
	}

	notifier := newTypingNotifier(b.api, chatID, b.logger)
	notifier.Start(ctx)
	resp, err := b.usecase.Chat(ctx, &entity.ChatRequest{
		ThreadID: threadID(chatID),
		Message:  message.Text,
	})
	notifier.Stop()

	if err != nil {
		if errors.Is(err, entity.ErrSessionNotFound) {
			b.sendError(chatID, render.MsgNoConversation)
			return
		}
		ctxzap.Error(ctx, "chat round failed",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		b.sendError(chatID, render.ErrGeneric)
		return
	}

	if resp.Response != "" {
		if _, err := b.sendMessage(chatID, resp.Response, nil); err != nil {
			ctxzap.Error(ctx, "failed to send reply",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
			)
		}
	} else if resp.Done {
		b.sendMessage(chatID, render.MsgConversationDone, nil)
	}

	if resp.Done && resp.Results != nil {
		b.sendRecord(ctx, chatID, *resp.Results)
	}
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()

	ctxzap.Info(ctx, "command received",
		zap.String("command", command),
		zap.Int64("user_id", message.From.ID),
	)

	switch command {
	case "start":
		b.handleStartCommand(ctx, message)
	case "done":
		b.handleDoneCommand(ctx, message)
	case "export":
		b.handleExportCommand(ctx, message)
	case "help":
		b.sendMessage(message.Chat.ID, render.MsgHelp, nil)
	default:
		b.sendError(message.Chat.ID, "Unknown command. Send /help for the list.")
	}
}

// handleStartCommand begins the conversation for this chat, resuming a
// checkpointed thread when one exists.
func (b *Bot) handleStartCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	thread := threadID(chatID)

	notifier := newTypingNotifier(b.api, chatID, b.logger)
	notifier.Start(ctx)
	resp, err := b.usecase.StartSession(ctx, &entity.StartSessionRequest{ThreadID: &thread})
	notifier.Stop()

	if err != nil {
		if errors.Is(err, entity.ErrSessionExists) {
			b.sendError(chatID, render.MsgAlreadyRunning)
			return
		}
		ctxzap.Error(ctx, "failed to start session",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		b.sendError(chatID, render.ErrGeneric)
		return
	}

	if _, err := b.sendMessage(chatID, render.MsgWelcome, nil); err != nil {
		ctxzap.Error(ctx, "failed to send welcome message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
	if resp.Message != "" {
		b.sendMessage(chatID, resp.Message, nil)
	}
}

// handleDoneCommand finishes the conversation early and shows whatever
// was collected.
func (b *Bot) handleDoneCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	resp, err := b.usecase.EndSession(ctx, &entity.EndSessionRequest{ThreadID: threadID(chatID)})
	if err != nil {
		if errors.Is(err, entity.ErrSessionNotFound) {
			b.sendError(chatID, render.MsgNoConversation)
			return
		}
		ctxzap.Error(ctx, "failed to end session",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		b.sendError(chatID, render.ErrGeneric)
		return
	}

	header := render.MsgConversationEnded
	if resp.Done {
		header = render.MsgConversationDone
	}
	b.sendMessage(chatID, header, nil)

	if resp.Results != nil {
		b.sendRecord(ctx, chatID, *resp.Results)
	}
}

// handleExportCommand handles /export with an optional format argument
func (b *Bot) handleExportCommand(ctx context.Context, message *tgbotapi.Message) {
	format := strings.TrimSpace(message.CommandArguments())
	if format == "" {
		format = "md"
	}

	b.exportToChat(ctx, message.Chat.ID, format)
}

// handleCallbackQuery handles callback button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Keyboards are only ever attached to chat messages; a callback
	// without one has no conversation to act on.
	if query.Message == nil {
		b.answerCallback(query.ID, render.ErrGeneric)
		return
	}

	callbackData, err := keyboard.ParseCallback(query.Data)
	if err != nil {
		ctxzap.Error(ctx, "invalid callback data",
			zap.Error(err),
			zap.String("data", query.Data),
		)
		b.answerCallback(query.ID, render.ErrGeneric)
		return
	}

	ctxzap.Info(ctx, "callback query received",
		zap.String("action", callbackData.Action),
		zap.String("value", callbackData.Value),
		zap.Int64("user_id", query.From.ID),
	)

	switch callbackData.Action {
	case keyboard.ActionExport:
		// Answer right away so Telegram does not mark the tap as stale
		// while the document renders.
		b.answerCallback(query.ID, "Preparing your document...")
		b.exportToChat(ctx, query.Message.Chat.ID, callbackData.Value)
	default:
		b.answerCallback(query.ID, render.ErrGeneric)
	}
}

// exportToChat renders the chat's record and uploads it as a file.
func (b *Bot) exportToChat(ctx context.Context, chatID int64, format string) {
	res, err := b.usecase.ExportSession(ctx, threadID(chatID), format)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrSessionNotFound):
			b.sendError(chatID, render.MsgNoConversation)
		case errors.Is(err, entity.ErrInvalidFormat):
			b.sendMessage(chatID, render.MsgPickExport, keyboard.ExportKeyboard())
		default:
			ctxzap.Error(ctx, "export failed",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
				zap.String("format", format),
			)
			b.sendError(chatID, render.ErrExportFailed)
		}
		return
	}

	if err := b.sendDocument(chatID, res.Filename, res.Data); err != nil {
		ctxzap.Error(ctx, "failed to send document",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		b.sendError(chatID, render.ErrExportFailed)
	}
}

// sendRecord sends the collected record followed by the export prompt.
func (b *Bot) sendRecord(ctx context.Context, chatID int64, results string) {
	msg := tgbotapi.NewMessage(chatID, render.Record(results))
	msg.ParseMode = "Markdown"
	if _, err := b.api.Send(msg); err != nil {
		ctxzap.Error(ctx, "failed to send record",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}

	b.sendMessage(chatID, render.MsgPickExport, keyboard.ExportKeyboard())
}

// sendMessage sends a message to chat
func (b *Bot) sendMessage(chatID int64, text string, replyMarkup interface{}) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	return b.api.Send(msg)
}

// sendError sends an error message
func (b *Bot) sendError(chatID int64, text string) {
	if _, err := b.sendMessage(chatID, text, nil); err != nil {
		b.logger.Error("failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// sendDocument sends a document
func (b *Bot) sendDocument(chatID int64, filename string, data []byte) error {
	doc := tgbotapi.FileBytes{
		Name:  filename,
		Bytes: data,
	}

	msg := tgbotapi.NewDocument(chatID, doc)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send document: %w", err)
	}

	return nil
}

// answerCallback answers a callback query
func (b *Bot) answerCallback(callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}

// threadID derives the conversation thread for a chat. One chat, one
// thread, so checkpoint resume works across bot restarts.
func threadID(chatID int64) string {
	return fmt.Sprintf("telegram:%d", chatID)
}
