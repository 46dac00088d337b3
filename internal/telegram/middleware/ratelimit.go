package middleware

import (
	"sync"
	"time"

	"github.com/chatfield/chatfield-go/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	warningInterval   = 30 * time.Second
	cleanupInterval   = 10 * time.Minute
	inactiveThreshold = time.Hour
)

// userLimit tracks rate limit state for a single user
type userLimit struct {
	mu            sync.Mutex
	tokens        float64
	lastRefill    time.Time
	lastWarningAt time.Time
}

// RateLimiterMiddleware implements per-user token bucket rate
// limiting: the bucket holds a burst of tokens and refills at the
// per-minute rate.
type RateLimiterMiddleware struct {
	mu         sync.RWMutex
	limits     map[int64]*userLimit
	burst      float64
	refillRate float64 // tokens per second
	logger     *zap.Logger
	api        *tgbotapi.BotAPI
}

// NewRateLimiterMiddleware creates a new rate limiter middleware
func NewRateLimiterMiddleware(
	requestsPerMinute int,
	burstSize int,
	logger *zap.Logger,
	api *tgbotapi.BotAPI,
) *RateLimiterMiddleware {
	rl := &RateLimiterMiddleware{
		limits:     make(map[int64]*userLimit),
		burst:      float64(burstSize),
		refillRate: float64(requestsPerMinute) / 60.0,
		logger:     logger,
		api:        api,
	}

	go rl.cleanupInactiveUsers()

	return rl
}

// Handle processes the update through rate limiting
func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	var userID, chatID int64

	if update.Message != nil {
		userID = update.Message.From.ID
		chatID = update.Message.Chat.ID
	} else if update.CallbackQuery != nil {
		userID = update.CallbackQuery.From.ID
		if update.CallbackQuery.Message != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
	} else {
		next(update)
		return
	}

	if !rl.allowRequest(userID, chatID) {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		return
	}

	next(update)
}

// allowRequest checks if request is allowed under rate limit
func (rl *RateLimiterMiddleware) allowRequest(userID, chatID int64) bool {
	rl.mu.Lock()
	limit, exists := rl.limits[userID]
	if !exists {
		limit = &userLimit{
			tokens:     rl.burst,
			lastRefill: time.Now(),
		}
		rl.limits[userID] = limit
	}
	rl.mu.Unlock()

	limit.mu.Lock()
	defer limit.mu.Unlock()

	now := time.Now()

	elapsed := now.Sub(limit.lastRefill).Seconds()
	limit.tokens += elapsed * rl.refillRate
	if limit.tokens > rl.burst {
		limit.tokens = rl.burst
	}
	limit.lastRefill = now

	if limit.tokens >= 1.0 {
		limit.tokens -= 1.0
		return true
	}

	// Warn the user at most once per interval so the warning itself
	// does not become spam.
	if chatID != 0 && now.Sub(limit.lastWarningAt) > warningInterval {
		limit.lastWarningAt = now
		rl.sendWarning(chatID)
	}

	return false
}

func (rl *RateLimiterMiddleware) sendWarning(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, render.ErrRateLimited)
	if _, err := rl.api.Send(msg); err != nil {
		rl.logger.Error("failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// cleanupInactiveUsers drops users that have not sent anything for a
// while, so the limits map does not grow without bound.
func (rl *RateLimiterMiddleware) cleanupInactiveUsers() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for userID, limit := range rl.limits {
			limit.mu.Lock()
			inactive := now.Sub(limit.lastRefill) > inactiveThreshold
			limit.mu.Unlock()
			if inactive {
				delete(rl.limits, userID)
			}
		}
		rl.mu.Unlock()
	}
}
