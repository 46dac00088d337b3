// Package logger enriches the ctxzap context logger with the fields a
// conversation turn is tracked by.
package logger

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// AddFields returns a context whose logger carries the extra fields.
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	return ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(fields...))
}

// WithAction tags the context logger with the operation being served.
func WithAction(ctx context.Context, action string) context.Context {
	return AddFields(ctx, zap.String("action", action))
}

// WithThread tags the context logger with the conversation thread ID
// so every line of a turn carries it.
func WithThread(ctx context.Context, threadID string) context.Context {
	return AddFields(ctx, zap.String("thread_id", threadID))
}
