package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	pkgRetry "github.com/chatfield/chatfield-go/internal/pkg/retry"
	"github.com/chatfield/chatfield-go/pkg/httpclient"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	chatCompletionsPath  = "/chat/completions"
)

// OpenAI talks to the chat-completions API of OpenAI or any
// compatible server.
type OpenAI struct {
	connector   *httpclient.Connector
	model       string
	temperature float64
	retryOpts   []retry.Option
}

type OpenAIConfig struct {
	// BaseURL of the API, e.g. "https://api.openai.com/v1". Empty
	// selects the official endpoint.
	BaseURL string
	APIKey  string
	Model   string
	// Temperature for sampling. Reasoning models reject the knob and
	// never receive it.
	Temperature float64
	Retry       *pkgRetry.RetryConfig
}

func NewOpenAI(cfg OpenAIConfig, logger *zap.Logger) (*OpenAI, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai: model is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	retryCfg := cfg.Retry
	if retryCfg == nil {
		retryCfg = pkgRetry.DefaultRetryConfig()
	}

	connector := httpclient.NewConnector(baseURL,
		httpclient.WithRequestLogging(),
		httpclient.WithAuthToken(cfg.APIKey),
	)

	logger.Debug("openai client created",
		zap.String("model", cfg.Model),
		zap.String("base_url", baseURL),
	)

	return &OpenAI{
		connector:   connector,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		retryOpts:   retryCfg.ToRetryOptions(),
	}, nil
}

func (c *OpenAI) Invoke(ctx context.Context, messages []Message, tools []Tool, opts *Options) (*Response, error) {
	req, err := c.buildRequest(messages, tools, opts)
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	err = retry.Do(
		func() error {
			resp = chatResponse{}
			return c.connector.DoRequest(ctx, http.MethodPost, chatCompletionsPath, req, &resp)
		},
		append(c.retryOpts,
			retry.Context(ctx),
			retry.RetryIf(retryableError),
			retry.LastErrorOnly(true),
		)...,
	)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: response has no choices")
	}
	choice := resp.Choices[0]

	out := &Response{Content: choice.Message.Content}
	for _, call := range choice.Message.ToolCalls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("decode tool call %q arguments: %w", call.Function.Name, err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: args,
		})
	}

	ctxzap.Debug(ctx, "chat completion received",
		zap.String("model", c.model),
		zap.String("finish_reason", choice.FinishReason),
		zap.Int("tool_calls", len(out.ToolCalls)),
	)

	return out, nil
}

func (c *OpenAI) buildRequest(messages []Message, tools []Tool, opts *Options) (*chatRequest, error) {
	req := &chatRequest{
		Model:    c.model,
		Messages: make([]wireMessage, 0, len(messages)),
	}

	if !isReasoningModel(c.model) {
		t := c.temperature
		req.Temperature = &t
	}

	for _, m := range messages {
		wm := wireMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, call := range m.ToolCalls {
			args, err := json.Marshal(call.Arguments)
			if err != nil {
				return nil, fmt.Errorf("encode tool call %q arguments: %w", call.Name, err)
			}
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
				ID:   call.ID,
				Type: "function",
				Function: wireFunctionCall{
					Name:      call.Name,
					Arguments: string(args),
				},
			})
		}
		req.Messages = append(req.Messages, wm)
	}

	for _, t := range tools {
		req.Tools = append(req.Tools, wireTool{
			Type: "function",
			Function: wireFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	if opts != nil && opts.ForceTool != "" {
		req.ToolChoice = &wireToolChoice{
			Type:     "function",
			Function: wireToolChoiceName{Name: opts.ForceTool},
		}
	}

	return req, nil
}

// Reasoning models reject the temperature parameter outright.
func isReasoningModel(model string) bool {
	return strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o1")
}

func retryableError(err error) bool {
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	var netErr *httpclient.NetworkError
	return errors.As(err, &netErr)
}

type chatRequest struct {
	Model       string          `json:"model"`
	Messages    []wireMessage   `json:"messages"`
	Temperature *float64        `json:"temperature,omitempty"`
	Tools       []wireTool      `json:"tools,omitempty"`
	ToolChoice  *wireToolChoice `json:"tool_choice,omitempty"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function wireFunctionCall `json:"function"`
}

type wireFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireTool struct {
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

type wireToolChoice struct {
	Type     string             `json:"type"`
	Function wireToolChoiceName `json:"function"`
}

type wireToolChoiceName struct {
	Name string `json:"name"`
}

type chatResponse struct {
	Choices []struct {
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

var _ ChatModel = &OpenAI{}
