package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/chatfield/chatfield-go/internal/entity"
	"github.com/chatfield/chatfield-go/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase SessionUsecase
}

func NewHandler(usecase SessionUsecase) *Handler {
	return &Handler{
		usecase: usecase,
	}
}

// StartSession handles POST /api/start
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	// An empty body starts a session on a generated thread ID.
	var req entity.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := h.usecase.StartSession(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session started", zap.String("thread_id", resp.ThreadID))
	h.respondJSON(w, http.StatusOK, resp)
}

// Chat handles POST /api/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx = logger.WithThread(ctx, req.ThreadID)

	resp, err := h.usecase.Chat(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "chat round handled", zap.Bool("done", resp.Done))
	h.respondJSON(w, http.StatusOK, resp)
}

// EndSession handles POST /api/end
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "EndSession")

	var req entity.EndSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx = logger.WithThread(ctx, req.ThreadID)

	resp, err := h.usecase.EndSession(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session ended")
	h.respondJSON(w, http.StatusOK, resp)
}

// GetSession handles GET /api/sessions/{thread_id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "thread_id")
	ctx := logger.WithThread(logger.WithAction(r.Context(), "GetSession"), threadID)

	sess, err := h.usecase.GetSession(ctx, threadID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, sess)
}

// ExportSession handles GET /api/export/{thread_id}?format=md|pdf|docx
func (h *Handler) ExportSession(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "thread_id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "md"
	}
	ctx := logger.WithThread(logger.WithAction(r.Context(), "ExportSession"), threadID)

	res, err := h.usecase.ExportSession(ctx, threadID, format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "session exported",
		zap.String("format", format),
		zap.Int("bytes", len(res.Data)),
	)

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}

// Helper methods
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Error(ctx, message)
	}
	h.respondJSON(w, status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrSessionNotFound) {
		h.respondError(ctx, w, http.StatusNotFound, "session not found", err)
	} else if errors.Is(err, entity.ErrSessionExists) {
		h.respondError(ctx, w, http.StatusConflict, "session already exists", err)
	} else if errors.Is(err, entity.ErrMissingField) || errors.Is(err, entity.ErrInvalidParameter) || errors.Is(err, entity.ErrInvalidFormat) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	} else {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
