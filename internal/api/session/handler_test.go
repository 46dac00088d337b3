package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chatfield/chatfield-go/internal/entity"
	"github.com/go-chi/chi/v5"
)

type stubUsecase struct {
	start  func(req *entity.StartSessionRequest) (*entity.StartSessionResponse, error)
	chat   func(req *entity.ChatRequest) (*entity.ChatResponse, error)
	end    func(req *entity.EndSessionRequest) (*entity.EndSessionResponse, error)
	get    func(threadID string) (*entity.Session, error)
	export func(threadID, format string) (*entity.ExportResult, error)
}

func (s *stubUsecase) StartSession(_ context.Context, req *entity.StartSessionRequest) (*entity.StartSessionResponse, error) {
	return s.start(req)
}

func (s *stubUsecase) Chat(_ context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	return s.chat(req)
}

func (s *stubUsecase) EndSession(_ context.Context, req *entity.EndSessionRequest) (*entity.EndSessionResponse, error) {
	return s.end(req)
}

func (s *stubUsecase) GetSession(_ context.Context, threadID string) (*entity.Session, error) {
	return s.get(threadID)
}

func (s *stubUsecase) ExportSession(_ context.Context, threadID, format string) (*entity.ExportResult, error) {
	return s.export(threadID, format)
}

func serve(t *testing.T, stub *stubUsecase, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(stub))

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestStartSessionHandler(t *testing.T) {
	stub := &stubUsecase{
		start: func(req *entity.StartSessionRequest) (*entity.StartSessionResponse, error) {
			id := "generated"
			if req.ThreadID != nil {
				id = *req.ThreadID
			}
			return &entity.StartSessionResponse{ThreadID: id, Message: "Hello!"}, nil
		},
	}

	rec := serve(t, stub, http.MethodPost, "/api/start", `{"thread_id":"walk-in"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp entity.StartSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ThreadID != "walk-in" || resp.Message != "Hello!" {
		t.Errorf("response = %+v", resp)
	}

	// An empty body is a start on a fresh thread.
	rec = serve(t, stub, http.MethodPost, "/api/start", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("empty body status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ThreadID != "generated" {
		t.Errorf("thread_id = %q, want generated", resp.ThreadID)
	}
}

func TestStartSessionHandlerConflict(t *testing.T) {
	stub := &stubUsecase{
		start: func(req *entity.StartSessionRequest) (*entity.StartSessionResponse, error) {
			return nil, entity.ErrSessionExists
		},
	}

	rec := serve(t, stub, http.MethodPost, "/api/start", `{"thread_id":"dup"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var errResp entity.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.Message != "session already exists" {
		t.Errorf("message = %q", errResp.Message)
	}
}

func TestChatHandler(t *testing.T) {
	results := "Survey\n\nname: Alice\n"
	stub := &stubUsecase{
		chat: func(req *entity.ChatRequest) (*entity.ChatResponse, error) {
			if req.ThreadID != "t-1" || req.Message != "I'm Alice" {
				t.Errorf("request = %+v", req)
			}
			return &entity.ChatResponse{Response: "Thanks!", Done: true, Results: &results}, nil
		},
	}

	rec := serve(t, stub, http.MethodPost, "/api/chat", `{"thread_id":"t-1","message":"I'm Alice"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp entity.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != "Thanks!" || !resp.Done || resp.Results == nil {
		t.Errorf("response = %+v", resp)
	}
}

func TestChatHandlerErrors(t *testing.T) {
	stub := &stubUsecase{
		chat: func(req *entity.ChatRequest) (*entity.ChatResponse, error) {
			return nil, entity.ErrSessionNotFound
		},
	}

	rec := serve(t, stub, http.MethodPost, "/api/chat", `{"thread_id":"ghost","message":"hi"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown thread status = %d, want 404", rec.Code)
	}

	rec = serve(t, stub, http.MethodPost, "/api/chat", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad body status = %d, want 400", rec.Code)
	}
}

func TestEndSessionHandler(t *testing.T) {
	partial := "Survey\n\nname: <not collected>\n"
	stub := &stubUsecase{
		end: func(req *entity.EndSessionRequest) (*entity.EndSessionResponse, error) {
			if req.ThreadID != "t-1" {
				t.Errorf("thread_id = %q", req.ThreadID)
			}
			return &entity.EndSessionResponse{Done: false, Results: &partial}, nil
		},
	}

	rec := serve(t, stub, http.MethodPost, "/api/end", `{"thread_id":"t-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp entity.EndSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Done || resp.Results == nil {
		t.Errorf("response = %+v", resp)
	}
}

func TestGetSessionHandler(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubUsecase{
		get: func(threadID string) (*entity.Session, error) {
			if threadID != "t-1" {
				return nil, entity.ErrSessionNotFound
			}
			return &entity.Session{ThreadID: "t-1", Status: entity.SessionStatusActive, CreatedAt: now, UpdatedAt: now}, nil
		},
	}

	rec := serve(t, stub, http.MethodGet, "/api/sessions/t-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var sess entity.Session
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sess.Status != entity.SessionStatusActive {
		t.Errorf("status = %q", sess.Status)
	}

	rec = serve(t, stub, http.MethodGet, "/api/sessions/ghost", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown thread status = %d, want 404", rec.Code)
	}
}

func TestExportSessionHandler(t *testing.T) {
	stub := &stubUsecase{
		export: func(threadID, format string) (*entity.ExportResult, error) {
			if threadID != "t-1" {
				t.Errorf("thread_id = %q", threadID)
			}
			return &entity.ExportResult{
				Data:        []byte("# Survey\n"),
				ContentType: "text/markdown; charset=utf-8",
				Filename:    "interview-t-1.md",
			}, nil
		},
	}

	rec := serve(t, stub, http.MethodGet, "/api/export/t-1?format=md", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/markdown; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `"interview-t-1.md"`) {
		t.Errorf("content disposition = %q", cd)
	}
	if rec.Body.String() != "# Survey\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestExportSessionHandlerDefaultFormat(t *testing.T) {
	var gotFormat string
	stub := &stubUsecase{
		export: func(threadID, format string) (*entity.ExportResult, error) {
			gotFormat = format
			return nil, entity.ErrInvalidFormat
		},
	}

	rec := serve(t, stub, http.MethodGet, "/api/export/t-1", "")
	if gotFormat != "md" {
		t.Errorf("default format = %q, want md", gotFormat)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
