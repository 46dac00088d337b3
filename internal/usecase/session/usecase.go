package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chatfield/chatfield-go/checkpoint"
	"github.com/chatfield/chatfield-go/internal/entity"
	"github.com/chatfield/chatfield-go/internal/pkg/export"
	"github.com/chatfield/chatfield-go/internal/pkg/validator"
	"github.com/chatfield/chatfield-go/interviewer"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// SessionUsecase owns the live conversations, one per thread ID. Each
// entry pairs the orchestrator with its session metadata; the entry
// mutex serializes turns on a thread while the registry lock only
// guards the map itself.
type SessionUsecase struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry

	factory   ConversationFactory
	store     checkpoint.Store
	validator *validator.Validator
	exporters *export.Factory
	logger    *zap.Logger
}

type sessionEntry struct {
	mu   sync.Mutex
	conv Conversation
	meta entity.Session
}

// NewUsecase creates a new session use case
func NewUsecase(
	factory ConversationFactory,
	store checkpoint.Store,
	validator *validator.Validator,
	exporters *export.Factory,
	logger *zap.Logger,
) *SessionUsecase {
	return &SessionUsecase{
		entries:   make(map[string]*sessionEntry),
		factory:   factory,
		store:     store,
		validator: validator,
		exporters: exporters,
		logger:    logger,
	}
}

// StartSession registers a thread and produces the opening message.
// Without a caller-chosen thread ID a fresh one is generated. A thread
// already checkpointed by an earlier process resumes where it left off
// instead of greeting again.
func (uc *SessionUsecase) StartSession(ctx context.Context, req *entity.StartSessionRequest) (*entity.StartSessionResponse, error) {
	if err := uc.validator.ValidateStartSession(req); err != nil {
		return nil, err
	}

	threadID := uuid.New().String()
	if req.ThreadID != nil {
		threadID = *req.ThreadID
	}

	now := time.Now().UTC()
	entry := &sessionEntry{meta: entity.Session{
		ThreadID:  threadID,
		Status:    entity.SessionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}}

	// Reserve the slot before the slow work so a concurrent start on
	// the same thread fails fast. Chat callers block on entry.mu until
	// the opening round lands.
	entry.mu.Lock()
	defer entry.mu.Unlock()

	uc.mu.Lock()
	if _, ok := uc.entries[threadID]; ok {
		uc.mu.Unlock()
		return nil, fmt.Errorf("thread %q: %w", threadID, entity.ErrSessionExists)
	}
	uc.entries[threadID] = entry
	uc.mu.Unlock()

	conv, err := uc.factory(ctx, threadID)
	if err != nil {
		uc.remove(threadID)
		return nil, fmt.Errorf("start conversation: %w", err)
	}
	entry.conv = conv

	var message string
	st, err := uc.loadState(ctx, threadID)
	switch {
	case err == nil:
		message = lastAssistantText(st)
		entry.meta.Status = statusFromState(st)
		ctxzap.Info(ctx, "session resumed from checkpoint",
			zap.String("thread_id", threadID),
			zap.String("status", string(entry.meta.Status)),
		)
	case errors.Is(err, entity.ErrSessionNotFound):
		message, err = conv.Go(ctx, nil)
		if err != nil {
			uc.remove(threadID)
			return nil, fmt.Errorf("opening round: %w", err)
		}
		if conv.Interview().Done() {
			entry.meta.Status = entity.SessionStatusDone
		}
		ctxzap.Info(ctx, "session started", zap.String("thread_id", threadID))
	default:
		uc.remove(threadID)
		return nil, err
	}

	return &entity.StartSessionResponse{
		ThreadID: threadID,
		Message:  message,
	}, nil
}

// Chat runs one conversation round with the user's message. Once the
// interview is done or the session was ended, Done flips to true and
// Results carries the collected record.
func (uc *SessionUsecase) Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	if err := uc.validator.ValidateChat(req); err != nil {
		return nil, err
	}

	entry, err := uc.lookup(req.ThreadID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.conv == nil {
		return nil, fmt.Errorf("thread %q: %w", req.ThreadID, entity.ErrSessionNotFound)
	}

	reply, err := entry.conv.Go(ctx, &req.Message)
	if err != nil {
		return nil, fmt.Errorf("conversation round: %w", err)
	}

	done := entry.conv.Interview().Done() || entry.meta.Status == entity.SessionStatusEnded
	if done && entry.meta.Status == entity.SessionStatusActive {
		entry.meta.Status = entity.SessionStatusDone
	}
	entry.meta.UpdatedAt = time.Now().UTC()

	resp := &entity.ChatResponse{
		Response: reply,
		Done:     done,
	}
	if done {
		pretty := entry.conv.Interview().Pretty()
		resp.Results = &pretty
	}

	ctxzap.Info(ctx, "chat round complete",
		zap.String("thread_id", req.ThreadID),
		zap.Bool("done", done),
	)

	return resp, nil
}

// EndSession tears a conversation down for good, returning whatever
// was collected so far.
func (uc *SessionUsecase) EndSession(ctx context.Context, req *entity.EndSessionRequest) (*entity.EndSessionResponse, error) {
	if err := uc.validator.ValidateEndSession(req); err != nil {
		return nil, err
	}

	entry, err := uc.lookup(req.ThreadID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.conv == nil {
		return nil, fmt.Errorf("thread %q: %w", req.ThreadID, entity.ErrSessionNotFound)
	}

	if err := entry.conv.End(ctx); err != nil {
		return nil, fmt.Errorf("end conversation: %w", err)
	}

	done := entry.conv.Interview().Done()
	if done {
		entry.meta.Status = entity.SessionStatusDone
	} else {
		entry.meta.Status = entity.SessionStatusEnded
	}
	entry.meta.UpdatedAt = time.Now().UTC()

	pretty := entry.conv.Interview().Pretty()

	ctxzap.Info(ctx, "session ended",
		zap.String("thread_id", req.ThreadID),
		zap.Bool("done", done),
	)

	return &entity.EndSessionResponse{
		Done:    done,
		Results: &pretty,
	}, nil
}

// GetSession returns the registry metadata for a live thread.
func (uc *SessionUsecase) GetSession(ctx context.Context, threadID string) (*entity.Session, error) {
	if err := uc.validator.ValidateThreadID(threadID); err != nil {
		return nil, err
	}

	entry, err := uc.lookup(threadID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	meta := entry.meta
	return &meta, nil
}

// ExportSession renders a thread's record as a downloadable document.
// It reads the checkpoint store directly, so threads from earlier
// processes export too, live registry entry or not.
func (uc *SessionUsecase) ExportSession(ctx context.Context, threadID, format string) (*entity.ExportResult, error) {
	if err := uc.validator.ValidateThreadID(threadID); err != nil {
		return nil, err
	}
	f, err := uc.validator.ValidateExportFormat(format)
	if err != nil {
		return nil, err
	}

	st, err := uc.loadState(ctx, threadID)
	if err != nil {
		return nil, err
	}

	formatter, err := uc.exporters.Create(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrInvalidFormat, format)
	}

	data, err := formatter.Format(stateToDocument(st))
	if err != nil {
		return nil, fmt.Errorf("render %s export: %w", format, err)
	}

	ctxzap.Info(ctx, "session exported",
		zap.String("thread_id", threadID),
		zap.String("format", format),
		zap.Int("bytes", len(data)),
	)

	return &entity.ExportResult{
		Data:        data,
		ContentType: formatter.ContentType(),
		Filename:    exportFilename(threadID, formatter.FileExtension()),
	}, nil
}

func (uc *SessionUsecase) lookup(threadID string) (*sessionEntry, error) {
	uc.mu.RLock()
	entry, ok := uc.entries[threadID]
	uc.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("thread %q: %w", threadID, entity.ErrSessionNotFound)
	}
	return entry, nil
}

func (uc *SessionUsecase) remove(threadID string) {
	uc.mu.Lock()
	delete(uc.entries, threadID)
	uc.mu.Unlock()
}

func (uc *SessionUsecase) loadState(ctx context.Context, threadID string) (*interviewer.ConversationState, error) {
	data, err := uc.store.Get(ctx, threadID)
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, fmt.Errorf("thread %q: %w", threadID, entity.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	st, err := interviewer.RestoreState(data)
	if err != nil {
		return nil, fmt.Errorf("restore thread %q: %w", threadID, err)
	}
	return st, nil
}
