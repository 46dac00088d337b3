package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chatfield/chatfield-go/checkpoint"
	"github.com/chatfield/chatfield-go/internal/api"
	sessionapi "github.com/chatfield/chatfield-go/internal/api/session"
	"github.com/chatfield/chatfield-go/internal/config"
	"github.com/chatfield/chatfield-go/internal/pkg/export"
	"github.com/chatfield/chatfield-go/internal/pkg/validator"
	"github.com/chatfield/chatfield-go/internal/telegram"
	"github.com/chatfield/chatfield-go/internal/usecase/session"
	"github.com/chatfield/chatfield-go/interviewer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("interview", cfg.Interview.Type),
	)

	// Setup checkpoint store
	store, closeStore, err := setupStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup checkpoint store: %w", err)
	}

	// Initialize use cases
	sessionUC := buildSessionUsecase(cfg, store, logger)
	logger.Info("Use cases initialized")

	// Setup API handlers
	sessionHandler := sessionapi.NewHandler(sessionUC)
	logger.Info("API handlers initialized")

	// Setup router
	router := api.SetupRouter(sessionHandler, logger)
	logger.Info("HTTP router configured")

	// Create HTTP server. WriteTimeout must outlive the router's 60s
	// request timeout or slow model rounds die with a dropped socket.
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:     server,
		closeStore: closeStore,
		logger:     logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (telegram.Bot, *zap.Logger, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
		zap.String("interview", cfg.Interview.Type),
	)

	if cfg.TelegramCfg.BotToken == "" {
		return nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	// The store lives for the life of the process; the bot has no
	// shutdown path that outlasts it.
	store, _, err := setupStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("setup checkpoint store: %w", err)
	}

	sessionUC := buildSessionUsecase(cfg, store, logger)
	logger.Info("Use cases initialized")

	bot, err := telegram.NewBot(&cfg.TelegramCfg, sessionUC, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	logger.Info("Telegram bot built successfully",
		zap.String("environment", cfg.Environment),
	)

	return bot, logger, nil
}

// buildSessionUsecase wires the conversation factory and its
// collaborators into the session use case.
func buildSessionUsecase(cfg *config.Config, store checkpoint.Store, logger *zap.Logger) *session.SessionUsecase {
	factory := newConversationFactory(cfg, store, logger)
	v := validator.New(cfg.ValidationCfg)
	return session.NewUsecase(factory, store, v, export.NewFactory(), logger)
}

// newConversationFactory builds one orchestrator per thread. Every
// conversation gets its own copy of the configured interview, so
// threads never share collected values.
func newConversationFactory(cfg *config.Config, store checkpoint.Store, logger *zap.Logger) session.ConversationFactory {
	return func(ctx context.Context, threadID string) (session.Conversation, error) {
		opts := []interviewer.Option{
			interviewer.WithThreadID(threadID),
			interviewer.WithModelID(cfg.ModelCfg.ID),
			interviewer.WithTemperature(cfg.ModelCfg.Temperature),
			interviewer.WithEndpointSecurity(interviewer.SecurityMode(cfg.ModelCfg.EndpointSecurity)),
			interviewer.WithCheckpointStore(store),
			interviewer.WithLogger(logger),
			interviewer.WithRetry(&cfg.ModelCfg.Retry),
		}
		if cfg.ModelCfg.APIKey != "" {
			opts = append(opts, interviewer.WithAPIKey(cfg.ModelCfg.APIKey))
		}
		if cfg.ModelCfg.BaseURL != "" {
			opts = append(opts, interviewer.WithBaseURL(cfg.ModelCfg.BaseURL))
		}

		return interviewer.New(ctx, cfg.Interview.Copy(), opts...)
	}
}

// setupLogger builds the process logger at the configured level
func setupLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zcfg.Build()
}
