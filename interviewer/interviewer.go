// Package interviewer drives one LLM-guided conversation over a
// chatfield.Interview. Each Go call advances the conversation exactly
// one externally-visible round: it runs the internal think/tools/digest
// steps until the model produces a message for the user, persists the
// conversation state under its thread ID, and suspends. The caller's
// Interview handle is refreshed at every suspension, so collected
// values can be read at any time.
package interviewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	chatfield "github.com/chatfield/chatfield-go"
	"github.com/chatfield/chatfield-go/checkpoint"
	pkgRetry "github.com/chatfield/chatfield-go/internal/pkg/retry"
	"github.com/chatfield/chatfield-go/llm"
	"github.com/chatfield/chatfield-go/prompt"
)

var (
	// ErrBadModelID reports a model ID without a supported provider
	// prefix.
	ErrBadModelID = errors.New("unsupported model ID")

	// ErrBadInput reports user input supplied on the opening round, or
	// missing on a resumed one.
	ErrBadInput = errors.New("unexpected user input")

	// ErrStateMachine reports a conversation whose stored state no
	// longer satisfies the orchestrator's invariants. It aborts the
	// round; the checkpoint is left as it was.
	ErrStateMachine = errors.New("conversation state machine violation")
)

// DefaultModelID is used when no model is configured.
const DefaultModelID = "openai:gpt-4o"

const (
	modelPrefixOpenAI = "openai:"
	modelPrefixGoogle = "google:"
)

// toolSuccess is the tool-result content for an applied update. think
// reads it back: right after a successful update the model is asked to
// speak conversationally, with no tools bound.
const toolSuccess = "Success"

type node string

const (
	nodeThink               node = "think"
	nodeTools               node = "tools"
	nodeDigestConfidentials node = "digest_confidentials"
	nodeDigestConcludes     node = "digest_concludes"
	nodeListen              node = "listen"
)

// maxRoundSteps bounds node transitions within one round. A round that
// cannot reach a suspension in this many steps is stuck in a model
// loop.
const maxRoundSteps = 25

// Interviewer is the conversation orchestrator for a single thread.
// Safe for concurrent use; rounds are serialized.
type Interviewer struct {
	interview *chatfield.Interview
	model     llm.ChatModel
	renderer  *prompt.Renderer
	store     checkpoint.Store
	threadID  string
	logger    *zap.Logger

	mu sync.Mutex
}

type config struct {
	threadID    string
	model       llm.ChatModel
	modelID     string
	temperature float64
	baseURL     string
	apiKey      string
	security    SecurityMode
	store       checkpoint.Store
	logger      *zap.Logger
	retry       *pkgRetry.RetryConfig
}

// Option configures an Interviewer at construction.
type Option func(*config)

// WithThreadID fixes the conversation's thread ID. Defaults to a new
// UUID; pass the same ID to resume a checkpointed conversation.
func WithThreadID(id string) Option {
	return func(c *config) { c.threadID = id }
}

// WithChatModel supplies a ready chat model, bypassing model-ID
// construction and the endpoint check.
func WithChatModel(m llm.ChatModel) Option {
	return func(c *config) { c.model = m }
}

// WithModelID selects the provider and model, e.g. "openai:gpt-4o" or
// "google:gemini-2.0-flash".
func WithModelID(id string) Option {
	return func(c *config) { c.modelID = id }
}

// WithTemperature sets the sampling temperature. Reasoning models
// ignore it.
func WithTemperature(t float64) Option {
	return func(c *config) { c.temperature = t }
}

// WithBaseURL points the OpenAI-compatible provider at a proxy or
// alternative endpoint.
func WithBaseURL(u string) Option {
	return func(c *config) { c.baseURL = u }
}

// WithAPIKey sets the provider API key.
func WithAPIKey(k string) Option {
	return func(c *config) { c.apiKey = k }
}

// WithEndpointSecurity selects how a dangerous chat-model endpoint is
// handled. Defaults to SecurityDisabled.
func WithEndpointSecurity(m SecurityMode) Option {
	return func(c *config) { c.security = m }
}

// WithCheckpointStore persists conversation state in the given store.
// Defaults to an in-process memory store.
func WithCheckpointStore(s checkpoint.Store) Option {
	return func(c *config) { c.store = s }
}

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithRetry overrides the retry policy for chat-model calls.
func WithRetry(cfg *pkgRetry.RetryConfig) Option {
	return func(c *config) { c.retry = cfg }
}

// New builds an orchestrator for the given interview. The interview
// handle stays owned by the caller: the conversation works on copies
// and writes collected values back at each suspension.
func New(ctx context.Context, interview *chatfield.Interview, opts ...Option) (*Interviewer, error) {
	if interview == nil {
		return nil, errors.New("interviewer: nil interview")
	}

	cfg := &config{
		modelID:  DefaultModelID,
		security: SecurityDisabled,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.threadID == "" {
		cfg.threadID = uuid.NewString()
	}
	if cfg.store == nil {
		cfg.store = checkpoint.NewMemoryStore(0)
	}
	if !cfg.security.valid() {
		return nil, fmt.Errorf("unknown endpoint security mode %q", cfg.security)
	}

	logger := cfg.logger.With(zap.String("thread_id", cfg.threadID))

	model := cfg.model
	if model == nil {
		var err error
		model, err = buildModel(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	renderer, err := prompt.NewRenderer()
	if err != nil {
		return nil, err
	}

	return &Interviewer{
		interview: interview,
		model:     model,
		renderer:  renderer,
		store:     cfg.store,
		threadID:  cfg.threadID,
		logger:    logger,
	}, nil
}

func buildModel(ctx context.Context, cfg *config, logger *zap.Logger) (llm.ChatModel, error) {
	if err := CheckEndpoint(cfg.baseURL, cfg.security, logger); err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(cfg.modelID, modelPrefixOpenAI):
		return llm.NewOpenAI(llm.OpenAIConfig{
			BaseURL:     cfg.baseURL,
			APIKey:      cfg.apiKey,
			Model:       strings.TrimPrefix(cfg.modelID, modelPrefixOpenAI),
			Temperature: cfg.temperature,
			Retry:       cfg.retry,
		}, logger)
	case strings.HasPrefix(cfg.modelID, modelPrefixGoogle):
		return llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey:      cfg.apiKey,
			Model:       strings.TrimPrefix(cfg.modelID, modelPrefixGoogle),
			Temperature: cfg.temperature,
		}, logger)
	}
	return nil, fmt.Errorf("%w: %q (want %q or %q prefix)",
		ErrBadModelID, cfg.modelID, modelPrefixOpenAI, modelPrefixGoogle)
}

// Interview returns the caller-visible interview handle. It reflects
// all values collected up to the latest suspension.
func (iv *Interviewer) Interview() *chatfield.Interview { return iv.interview }

// ThreadID returns the conversation's thread ID.
func (iv *Interviewer) ThreadID() string { return iv.threadID }

// Go advances the conversation one round and returns the assistant's
// next message. The opening round takes nil input; every resumed round
// takes the user's reply. Once the conversation has ended, Go returns
// an empty message without calling the model.
func (iv *Interviewer) Go(ctx context.Context, userInput *string) (string, error) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	state, base, err := iv.loadState(ctx)
	if err != nil {
		return "", err
	}

	if state == nil {
		if userInput != nil {
			return "", fmt.Errorf("%w: the opening round takes no input", ErrBadInput)
		}
		iv.logger.Info("new conversation")
		state = &ConversationState{Interview: iv.interview.Copy()}
	} else {
		if state.Ended || state.Interview.Done() {
			return "", iv.finish(ctx, base, state)
		}
		if userInput == nil {
			return "", fmt.Errorf("%w: a resumed round needs the user's message", ErrBadInput)
		}
		iv.logger.Info("continue conversation")
		state.Messages = append(state.Messages, llm.UserMessage(*userInput))
	}

	reply, err := iv.run(ctx, state)
	if err != nil {
		return "", err
	}
	if err := iv.saveState(ctx, base, state); err != nil {
		return "", err
	}
	return reply, nil
}

// End tears the conversation down regardless of completeness. The
// final state stays in the checkpoint store for later export.
func (iv *Interviewer) End(ctx context.Context) error {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	state, base, err := iv.loadState(ctx)
	if err != nil {
		return err
	}
	if state == nil {
		return nil
	}
	return iv.finish(ctx, base, state)
}

// finish marks the conversation ended, refreshes the caller handle,
// and persists the terminal state once.
func (iv *Interviewer) finish(ctx context.Context, base, state *ConversationState) error {
	iv.interview.CopyFrom(state.Interview)
	if state.Ended {
		return nil
	}
	iv.logger.Debug("teardown")
	state.Ended = true
	return iv.saveState(ctx, base, state)
}

// run executes internal steps until the conversation suspends with a
// message for the user.
func (iv *Interviewer) run(ctx context.Context, state *ConversationState) (string, error) {
	// An interview with nothing to collect is complete before the
	// first model call.
	if state.Interview.Done() {
		iv.logger.Debug("teardown")
		state.Ended = true
		iv.interview.CopyFrom(state.Interview)
		return "", nil
	}

	next := nodeThink
	for step := 0; step < maxRoundSteps; step++ {
		iv.logger.Debug("step", zap.String("node", string(next)))
		switch next {
		case nodeThink:
			if err := iv.think(ctx, state); err != nil {
				return "", err
			}
			next = routeFromThink(state)
		case nodeTools:
			if err := iv.tools(state); err != nil {
				return "", err
			}
			next = routeFromTools(state)
		case nodeDigestConfidentials:
			if err := iv.digestConfidentials(ctx, state); err != nil {
				return "", err
			}
			next = routeFromDigest(state)
		case nodeDigestConcludes:
			if err := iv.digestConcludes(ctx, state); err != nil {
				return "", err
			}
			next = routeFromDigest(state)
		case nodeListen:
			return iv.listen(state)
		}
	}
	return "", fmt.Errorf("%w: no suspension within %d steps", ErrStateMachine, maxRoundSteps)
}

// think invokes the model over the full transcript. The first think of
// a conversation synthesizes the system prompt and prepends it; the
// update tool is bound except right after the system prompt or a
// successful update, when the model should speak conversationally.
func (iv *Interviewer) think(ctx context.Context, state *ConversationState) error {
	// The binding decision reads the transcript before any system
	// prompt is prepended; an empty transcript binds the tool.
	bindUpdate := true
	if last := state.lastMessage(); last != nil {
		if last.Role == llm.RoleSystem {
			bindUpdate = false
		} else if last.Role == llm.RoleTool && last.Content == toolSuccess {
			bindUpdate = false
		}
	}

	if state.systemMessageCount() == 0 {
		rendered, err := iv.renderer.Render(prompt.SystemPrompt, systemPromptData(state.Interview))
		if err != nil {
			return err
		}
		iv.logger.Info("start conversation")
		state.Messages = append([]llm.Message{llm.SystemMessage(rendered)}, state.Messages...)
	} else if state.Messages[0].Role != llm.RoleSystem {
		return fmt.Errorf("%w: system prompt displaced from the transcript head", ErrStateMachine)
	}

	var tools []llm.Tool
	if bindUpdate {
		tools = []llm.Tool{updateTool(state.Interview)}
	}

	resp, err := iv.model.Invoke(ctx, state.Messages, tools, nil)
	if err != nil {
		return fmt.Errorf("think: %w", err)
	}
	state.Messages = append(state.Messages, llm.AssistantMessage(resp.Content, resp.ToolCalls...))
	return nil
}

// tools applies every pending tool call and answers each with a
// tool-result message. Update failures go back to the model as text,
// never to the caller.
func (iv *Interviewer) tools(state *ConversationState) error {
	last := state.lastMessage()
	if last == nil || last.Role != llm.RoleAssistant || len(last.ToolCalls) == 0 {
		return fmt.Errorf("%w: tool dispatch without a pending assistant tool call", ErrStateMachine)
	}

	for _, call := range last.ToolCalls {
		content := toolSuccess
		if err := processUpdate(iv.logger, state.Interview, call.Arguments); err != nil {
			iv.logger.Debug("tool call rejected", zap.String("tool", call.Name), zap.Error(err))
			content = "Error: " + err.Error()
		}
		state.Messages = append(state.Messages, llm.ToolMessage(call, content))
	}
	return nil
}

// listen suspends the round: the caller handle is refreshed and the
// assistant's message is handed back.
func (iv *Interviewer) listen(state *ConversationState) (string, error) {
	last := state.lastMessage()
	if last == nil || last.Role != llm.RoleAssistant {
		return "", fmt.Errorf("%w: suspension without an assistant message", ErrStateMachine)
	}
	iv.interview.CopyFrom(state.Interview)
	return strings.TrimSpace(last.Content), nil
}

func routeFromThink(state *ConversationState) node {
	if last := state.lastMessage(); last != nil && len(last.ToolCalls) > 0 {
		return nodeTools
	}
	return nodeListen
}

func routeFromTools(state *ConversationState) node {
	// Digestion fires the first time the discussable fields are
	// complete, each phase at most once.
	if state.Interview.Enough() {
		if !state.DigestedConfidentials {
			return nodeDigestConfidentials
		}
		if !state.DigestedConcludes {
			return nodeDigestConcludes
		}
	}
	return nodeThink
}

func routeFromDigest(state *ConversationState) node {
	if last := state.lastMessage(); last != nil && last.Role == llm.RoleAssistant && len(last.ToolCalls) > 0 {
		return nodeTools
	}
	// A digest that had nothing to ask falls through to the next
	// phase.
	if state.Interview.Enough() && !state.DigestedConcludes {
		return nodeDigestConcludes
	}
	return nodeThink
}

func (iv *Interviewer) loadState(ctx context.Context) (state, base *ConversationState, err error) {
	data, err := iv.store.Get(ctx, iv.threadID)
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("load state: %w", err)
	}
	if state, err = RestoreState(data); err != nil {
		return nil, nil, err
	}
	if base, err = RestoreState(data); err != nil {
		return nil, nil, err
	}
	return state, base, nil
}

// saveState validates the finished round against the loaded baseline
// before persisting: a round may only extend the conversation.
func (iv *Interviewer) saveState(ctx context.Context, base, state *ConversationState) error {
	merged, err := MergeStates(base, state)
	if err != nil {
		return err
	}
	data, err := merged.Snapshot()
	if err != nil {
		return err
	}
	if err := iv.store.Put(ctx, iv.threadID, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
