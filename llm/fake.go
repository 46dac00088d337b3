package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Fake is a scripted ChatModel. Each Invoke consumes the next queued
// response and records the call; when the queue runs dry it falls back
// to Fallback, or fails the invocation if none is set.
type Fake struct {
	mu        sync.Mutex
	queue     []*Response
	calls     []FakeCall
	Fallback  *Response
	InvokeErr error
}

// FakeCall captures one recorded invocation.
type FakeCall struct {
	Messages []Message
	Tools    []Tool
	Opts     *Options
}

// NewFake queues the given responses in order.
func NewFake(responses ...*Response) *Fake {
	return &Fake{queue: responses}
}

// Enqueue appends further scripted responses.
func (f *Fake) Enqueue(responses ...*Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, responses...)
}

// Invoke pops the next scripted response.
func (f *Fake) Invoke(ctx context.Context, messages []Message, tools []Tool, opts *Options) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, FakeCall{
		Messages: append([]Message(nil), messages...),
		Tools:    append([]Tool(nil), tools...),
		Opts:     opts,
	})
	if f.InvokeErr != nil {
		return nil, f.InvokeErr
	}
	if len(f.queue) == 0 {
		if f.Fallback != nil {
			return f.Fallback, nil
		}
		return nil, fmt.Errorf("fake model: no scripted response for call %d", len(f.calls))
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	return next, nil
}

// Calls returns a snapshot of the recorded invocations.
func (f *Fake) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeCall(nil), f.calls...)
}

// LastCall returns the most recent invocation, or nil.
func (f *Fake) LastCall() *FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	c := f.calls[len(f.calls)-1]
	return &c
}

// TextResponse scripts a plain assistant reply.
func TextResponse(content string) *Response {
	return &Response{Content: content}
}

// CallResponse scripts an assistant turn invoking one tool with the
// given arguments. The call ID is freshly generated.
func CallResponse(tool string, args map[string]any) *Response {
	return &Response{ToolCalls: []ToolCall{{
		ID:        uuid.NewString(),
		Name:      tool,
		Arguments: args,
	}}}
}

var _ ChatModel = &Fake{}
