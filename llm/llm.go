// Package llm is the boundary to conversational language models with
// tool binding. It defines the transcript message shape, the tool
// schema surface, and the ChatModel interface the interviewer drives;
// backends live in this package (OpenAI-compatible HTTP, Gemini) along
// with a scripted fake for tests.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
)

// Role labels one transcript entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation transcript. Assistant
// messages may carry tool calls; tool-result messages reference the
// call they answer through ToolCallID and name the tool for backends
// that require it.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is the model's request to invoke one bound tool. Arguments
// hold the decoded JSON object; absent and explicitly-null entries are
// distinguishable, which the update flow relies on.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// Tool describes one bindable function schema.
type Tool struct {
	Name        string
	Description string
	Parameters  *Schema
}

// Options control a single Invoke call.
type Options struct {
	// ForceTool requires the model to answer by calling the named
	// tool instead of replying with text.
	ForceTool string
}

// Response is one model turn: plain content, tool calls, or both.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// ChatModel is implemented by every model backend.
type ChatModel interface {
	Invoke(ctx context.Context, messages []Message, tools []Tool, opts *Options) (*Response, error)
}

// SystemMessage builds a system transcript entry.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user transcript entry.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant transcript entry.
func AssistantMessage(content string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// ToolMessage builds a tool-result entry answering the given call.
func ToolMessage(call ToolCall, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: call.ID, Name: call.Name}
}

// Schema is a JSON-schema fragment for tool parameters. Properties
// keep declaration order, which MarshalJSON preserves; generated
// schemas must list fields the way the interview declares them.
type Schema struct {
	Type        string
	Title       string
	Description string
	Enum        []string
	Items       *Schema
	AnyOf       []*Schema
	Properties  []Property
	Required    []string
	MinItems    *int
	MaxItems    *int
	UniqueItems bool
}

// Property is one named, ordered entry of an object schema.
type Property struct {
	Name   string
	Schema *Schema
}

// MarshalJSON writes the fragment with properties in declaration
// order. The stock encoder cannot do that for maps, hence the manual
// assembly.
func (s *Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	field := func(key string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(vb)
		return nil
	}

	if s.Type != "" {
		if err := field("type", s.Type); err != nil {
			return nil, err
		}
	}
	if s.Title != "" {
		if err := field("title", s.Title); err != nil {
			return nil, err
		}
	}
	if s.Description != "" {
		if err := field("description", s.Description); err != nil {
			return nil, err
		}
	}
	if len(s.Enum) > 0 {
		if err := field("enum", s.Enum); err != nil {
			return nil, err
		}
	}
	if s.Items != nil {
		if err := field("items", s.Items); err != nil {
			return nil, err
		}
	}
	if len(s.AnyOf) > 0 {
		if err := field("anyOf", s.AnyOf); err != nil {
			return nil, err
		}
	}
	if len(s.Properties) > 0 {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(`"properties":{`)
		for i, p := range s.Properties {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(p.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := json.Marshal(p.Schema)
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
	}
	if len(s.Required) > 0 {
		if err := field("required", s.Required); err != nil {
			return nil, err
		}
	}
	if s.MinItems != nil {
		if err := field("minItems", *s.MinItems); err != nil {
			return nil, err
		}
	}
	if s.MaxItems != nil {
		if err := field("maxItems", *s.MaxItems); err != nil {
			return nil, err
		}
	}
	if s.UniqueItems {
		if err := field("uniqueItems", true); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Prop returns the named property's schema, or nil. Test helper shared
// by schema construction checks.
func (s *Schema) Prop(name string) *Schema {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

// IsRequired reports whether the named property is mandatory.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// IntPtr returns a pointer to n, for MinItems/MaxItems literals.
func IntPtr(n int) *int {
	return &n
}
