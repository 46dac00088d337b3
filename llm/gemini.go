package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Gemini drives Google models through the genai SDK.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float64
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
}

func NewGemini(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini: model is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	logger.Debug("gemini client created", zap.String("model", cfg.Model))
	return &Gemini{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

func (c *Gemini) Invoke(ctx context.Context, messages []Message, tools []Tool, opts *Options) (*Response, error) {
	temp := float32(c.temperature)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}

	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			// System prompts travel out of band
			config.SystemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
		case RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		case RoleAssistant:
			var parts []*genai.Part
			if m.Content != "" {
				parts = append(parts, &genai.Part{Text: m.Content})
			}
			for _, call := range m.ToolCalls {
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   call.ID,
					Name: call.Name,
					Args: call.Arguments,
				}})
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
		case RoleTool:
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
					ID:       m.ToolCallID,
					Name:     m.Name,
					Response: map[string]any{"result": m.Content},
				}}},
			})
		default:
			return nil, fmt.Errorf("gemini: unsupported message role %q", m.Role)
		}
	}

	if len(tools) > 0 {
		tool := &genai.Tool{}
		for _, t := range tools {
			tool.FunctionDeclarations = append(tool.FunctionDeclarations, &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  toGenaiSchema(t.Parameters),
			})
		}
		config.Tools = []*genai.Tool{tool}
	}

	if opts != nil && opts.ForceTool != "" {
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{opts.ForceTool},
			},
		}
	}

	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return nil, fmt.Errorf("generate content: response has no candidates")
	}

	out := &Response{}
	var text strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if part.FunctionCall != nil {
			id := part.FunctionCall.ID
			if id == "" {
				id = uuid.NewString()
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        id,
				Name:      part.FunctionCall.Name,
				Arguments: part.FunctionCall.Args,
			})
		}
	}
	out.Content = text.String()

	ctxzap.Debug(ctx, "content generated",
		zap.String("model", c.model),
		zap.String("finish_reason", string(res.Candidates[0].FinishReason)),
		zap.Int("tool_calls", len(out.ToolCalls)),
	)

	return out, nil
}

// toGenaiSchema maps the wire schema onto the SDK's type. Property
// order survives through PropertyOrdering; nullable anyOf wrappers
// collapse to the Nullable flag because the SDK has no null type.
func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	if inner, ok := nullableBranch(s); ok {
		gs := toGenaiSchema(inner)
		nullable := true
		gs.Nullable = &nullable
		return gs
	}

	gs := &genai.Schema{
		Title:       s.Title,
		Description: s.Description,
		Enum:        append([]string(nil), s.Enum...),
		Required:    append([]string(nil), s.Required...),
	}
	switch s.Type {
	case "string":
		gs.Type = genai.TypeString
	case "integer":
		gs.Type = genai.TypeInteger
	case "number":
		gs.Type = genai.TypeNumber
	case "boolean":
		gs.Type = genai.TypeBoolean
	case "array":
		gs.Type = genai.TypeArray
	case "object":
		gs.Type = genai.TypeObject
	}
	if s.Items != nil {
		gs.Items = toGenaiSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		gs.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for _, p := range s.Properties {
			gs.Properties[p.Name] = toGenaiSchema(p.Schema)
			gs.PropertyOrdering = append(gs.PropertyOrdering, p.Name)
		}
	}
	if s.MinItems != nil {
		n := int64(*s.MinItems)
		gs.MinItems = &n
	}
	if s.MaxItems != nil {
		n := int64(*s.MaxItems)
		gs.MaxItems = &n
	}
	return gs
}

// nullableBranch recognizes anyOf pairs of the form [T, null] and
// returns T.
func nullableBranch(s *Schema) (*Schema, bool) {
	if len(s.AnyOf) != 2 {
		return nil, false
	}
	for i, branch := range s.AnyOf {
		if branch.Type == "null" {
			return s.AnyOf[1-i], true
		}
	}
	return nil, false
}

var _ ChatModel = &Gemini{}
