package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	pkgRetry "github.com/chatfield/chatfield-go/internal/pkg/retry"
)

func fastRetry() *pkgRetry.RetryConfig {
	return &pkgRetry.RetryConfig{
		Attempts: 3,
		Delay:    time.Millisecond,
		MaxDelay: 5 * time.Millisecond,
	}
}

func TestSchemaMarshalPreservesPropertyOrder(t *testing.T) {
	s := &Schema{
		Type: "object",
		Properties: []Property{
			{Name: "zulu", Schema: &Schema{Type: "string"}},
			{Name: "alpha", Schema: &Schema{Type: "integer"}},
			{Name: "mike", Schema: &Schema{Type: "boolean"}},
		},
		Required: []string{"zulu"},
	}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	got := string(raw)

	zi := strings.Index(got, `"zulu"`)
	ai := strings.Index(got, `"alpha"`)
	mi := strings.Index(got, `"mike"`)
	if zi < 0 || ai < 0 || mi < 0 {
		t.Fatalf("missing properties in %s", got)
	}
	if !(zi < ai && ai < mi) {
		t.Errorf("properties out of order: %s", got)
	}

	var back Schema
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("schema output is not valid JSON: %v", err)
	}
}

func TestSchemaMarshalCardinality(t *testing.T) {
	s := &Schema{
		Type:        "array",
		Items:       &Schema{Type: "string", Enum: []string{"red", "blue"}},
		MinItems:    IntPtr(1),
		UniqueItems: true,
	}
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	got := string(raw)
	for _, want := range []string{`"minItems":1`, `"uniqueItems":true`, `"enum":["red","blue"]`} {
		if !strings.Contains(got, want) {
			t.Errorf("schema %s missing %s", got, want)
		}
	}
}

func TestOpenAIInvoke(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "update_Contact", "arguments": "{\"field_name\": {\"value\": \"Ada\"}}"}
					}]
				}
			}]
		}`))
	}))
	defer srv.Close()

	client, err := NewOpenAI(OpenAIConfig{
		BaseURL:     srv.URL,
		APIKey:      "sk-test",
		Model:       "gpt-4o",
		Temperature: 0.0,
		Retry:       fastRetry(),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}

	resp, err := client.Invoke(context.Background(),
		[]Message{
			SystemMessage("collect the contact"),
			UserMessage("hi, I'm Ada"),
		},
		[]Tool{{Name: "update_Contact", Description: "record info", Parameters: &Schema{Type: "object"}}},
		&Options{ForceTool: "update_Contact"},
	)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["model"] != "gpt-4o" {
		t.Errorf("model = %v", gotBody["model"])
	}
	if _, ok := gotBody["temperature"]; !ok {
		t.Error("temperature not sent for standard model")
	}
	tc, ok := gotBody["tool_choice"].(map[string]any)
	if !ok {
		t.Fatalf("tool_choice = %v", gotBody["tool_choice"])
	}
	fn := tc["function"].(map[string]any)
	if fn["name"] != "update_Contact" {
		t.Errorf("forced tool = %v", fn["name"])
	}

	if len(resp.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(resp.ToolCalls))
	}
	call := resp.ToolCalls[0]
	if call.ID != "call_1" || call.Name != "update_Contact" {
		t.Errorf("call = %+v", call)
	}
	slot, ok := call.Arguments["field_name"].(map[string]any)
	if !ok {
		t.Fatalf("arguments not decoded: %v", call.Arguments)
	}
	if slot["value"] != "Ada" {
		t.Errorf("value = %v", slot["value"])
	}
}

func TestOpenAIReasoningModelOmitsTemperature(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "ok"}}]}`))
	}))
	defer srv.Close()

	client, err := NewOpenAI(OpenAIConfig{
		BaseURL: srv.URL,
		Model:   "o3-mini",
		Retry:   fastRetry(),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}

	resp, err := client.Invoke(context.Background(), []Message{UserMessage("hi")}, nil, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("content = %q", resp.Content)
	}
	if _, ok := gotBody["temperature"]; ok {
		t.Error("temperature sent for reasoning model")
	}
}

func TestOpenAIRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "recovered"}}]}`))
	}))
	defer srv.Close()

	client, err := NewOpenAI(OpenAIConfig{
		BaseURL: srv.URL,
		Model:   "gpt-4o",
		Retry:   fastRetry(),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}

	resp, err := client.Invoke(context.Background(), []Message{UserMessage("hi")}, nil, nil)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Content != "recovered" {
		t.Errorf("content = %q", resp.Content)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestOpenAIDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "bad schema"}}`))
	}))
	defer srv.Close()

	client, err := NewOpenAI(OpenAIConfig{
		BaseURL: srv.URL,
		Model:   "gpt-4o",
		Retry:   fastRetry(),
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}

	if _, err := client.Invoke(context.Background(), []Message{UserMessage("hi")}, nil, nil); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestFakeScriptedResponses(t *testing.T) {
	fake := NewFake(
		TextResponse("first"),
		CallResponse("update_X", map[string]any{"field_a": map[string]any{"value": "v"}}),
	)

	r1, err := fake.Invoke(context.Background(), []Message{UserMessage("hi")}, nil, nil)
	if err != nil {
		t.Fatalf("first invoke: %v", err)
	}
	if r1.Content != "first" {
		t.Errorf("content = %q", r1.Content)
	}

	r2, err := fake.Invoke(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("second invoke: %v", err)
	}
	if len(r2.ToolCalls) != 1 || r2.ToolCalls[0].Name != "update_X" {
		t.Errorf("tool calls = %+v", r2.ToolCalls)
	}
	if r2.ToolCalls[0].ID == "" {
		t.Error("tool call ID not generated")
	}

	if _, err := fake.Invoke(context.Background(), nil, nil, nil); err == nil {
		t.Error("expected error when script is exhausted")
	}
	if got := len(fake.Calls()); got != 3 {
		t.Errorf("recorded calls = %d, want 3", got)
	}
}
