package bot

import (
	"context"

	"github.com/chatfield/chatfield-go/internal/entity"
)

// SessionUsecase is the slice of the session use case the bot drives.
type SessionUsecase interface {
	StartSession(ctx context.Context, req *entity.StartSessionRequest) (*entity.StartSessionResponse, error)
	Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error)
	EndSession(ctx context.Context, req *entity.EndSessionRequest) (*entity.EndSessionResponse, error)
	ExportSession(ctx context.Context, threadID, format string) (*entity.ExportResult, error)
}
