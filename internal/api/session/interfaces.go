package session

import (
	"context"

	"github.com/chatfield/chatfield-go/internal/entity"
)

type SessionUsecase interface {
	StartSession(ctx context.Context, req *entity.StartSessionRequest) (*entity.StartSessionResponse, error)
	Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error)
	EndSession(ctx context.Context, req *entity.EndSessionRequest) (*entity.EndSessionResponse, error)
	GetSession(ctx context.Context, threadID string) (*entity.Session, error)
	ExportSession(ctx context.Context, threadID, format string) (*entity.ExportResult, error)
}
