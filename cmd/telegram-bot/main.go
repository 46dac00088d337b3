// telegram-bot runs conversational interviews over Telegram. Each chat
// drives one conversation thread against the checkpoint store, so the
// bot can restart without losing progress.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/chatfield/chatfield-go/internal/builder"
	"go.uber.org/zap"
)

func main() {
	bot, logger, err := builder.BuildTelegramBot()
	if err != nil {
		log.Fatal("Failed to build telegram bot:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("starting telegram bot")
		if err := bot.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := bot.Stop(); err != nil {
			logger.Error("error stopping bot", zap.Error(err))
		}
		logger.Info("telegram bot stopped gracefully")
	case err := <-errChan:
		logger.Error("telegram bot error", zap.Error(err))
		os.Exit(1)
	}
}
