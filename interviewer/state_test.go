package interviewer

import (
	"errors"
	"testing"

	chatfield "github.com/chatfield/chatfield-go"
	"github.com/chatfield/chatfield-go/llm"
)

func stateWith(t *testing.T, messages ...llm.Message) *ConversationState {
	t.Helper()
	return &ConversationState{
		Messages:  messages,
		Interview: surveyInterview(t),
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := stateWith(t,
		llm.SystemMessage("prompt"),
		llm.AssistantMessage("Hi! What's your name?"),
		llm.UserMessage("Alice"),
	)
	s.Interview.Field("name").Value = chatfield.FieldValue{"value": "Alice"}
	s.DigestedConfidentials = true

	data, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	restored, err := RestoreState(data)
	if err != nil {
		t.Fatalf("RestoreState: %v", err)
	}

	if len(restored.Messages) != 3 || restored.Messages[2].Content != "Alice" {
		t.Errorf("messages not restored: %+v", restored.Messages)
	}
	if !restored.DigestedConfidentials || restored.DigestedConcludes {
		t.Errorf("flags not restored: %+v", restored)
	}
	if got := restored.Interview.Field("name").Value.Natural(); got != "Alice" {
		t.Errorf("interview value not restored: %q", got)
	}
}

func TestMergeStatesExtension(t *testing.T) {
	old := stateWith(t, llm.SystemMessage("prompt"), llm.AssistantMessage("Hi!"))

	cur, err := cloneState(old)
	if err != nil {
		t.Fatalf("cloneState: %v", err)
	}
	cur.Messages = append(cur.Messages, llm.UserMessage("Alice"))
	cur.Interview.Field("name").Value = chatfield.FieldValue{"value": "Alice"}
	cur.DigestedConfidentials = true

	merged, err := MergeStates(old, cur)
	if err != nil {
		t.Fatalf("MergeStates: %v", err)
	}
	if len(merged.Messages) != 3 {
		t.Errorf("merged transcript has %d messages, want 3", len(merged.Messages))
	}
	if !merged.DigestedConfidentials {
		t.Error("flag lost in merge")
	}
	if got := merged.Interview.Field("name").Value.Natural(); got != "Alice" {
		t.Errorf("merged interview lost the new value: %q", got)
	}
}

func TestMergeStatesTranscriptShrank(t *testing.T) {
	old := stateWith(t, llm.SystemMessage("prompt"), llm.AssistantMessage("Hi!"))
	cur, err := cloneState(old)
	if err != nil {
		t.Fatalf("cloneState: %v", err)
	}
	cur.Messages = cur.Messages[:1]

	if _, err := MergeStates(old, cur); !errors.Is(err, chatfield.ErrMergeConflict) {
		t.Fatalf("err = %v, want ErrMergeConflict", err)
	}
}

func TestMergeStatesTranscriptRewritten(t *testing.T) {
	old := stateWith(t, llm.SystemMessage("prompt"), llm.AssistantMessage("Hi!"))
	cur, err := cloneState(old)
	if err != nil {
		t.Fatalf("cloneState: %v", err)
	}
	cur.Messages[1] = llm.AssistantMessage("Hello there!")

	if _, err := MergeStates(old, cur); !errors.Is(err, chatfield.ErrMergeConflict) {
		t.Fatalf("err = %v, want ErrMergeConflict", err)
	}
}

func TestMergeStatesFlagRevert(t *testing.T) {
	old := stateWith(t, llm.SystemMessage("prompt"))
	old.DigestedConcludes = true
	cur, err := cloneState(old)
	if err != nil {
		t.Fatalf("cloneState: %v", err)
	}
	cur.DigestedConcludes = false

	if _, err := MergeStates(old, cur); !errors.Is(err, chatfield.ErrMergeConflict) {
		t.Fatalf("digest flag revert: err = %v, want ErrMergeConflict", err)
	}

	old.DigestedConcludes = false
	old.Ended = true
	cur, err = cloneState(old)
	if err != nil {
		t.Fatalf("cloneState: %v", err)
	}
	cur.Ended = false

	if _, err := MergeStates(old, cur); !errors.Is(err, chatfield.ErrMergeConflict) {
		t.Fatalf("ended revert: err = %v, want ErrMergeConflict", err)
	}
}

func TestMergeStatesValueConflict(t *testing.T) {
	old := stateWith(t, llm.SystemMessage("prompt"))
	old.Interview.Field("name").Value = chatfield.FieldValue{"value": "Ada"}
	cur, err := cloneState(old)
	if err != nil {
		t.Fatalf("cloneState: %v", err)
	}
	cur.Interview.Field("name").Value = chatfield.FieldValue{"value": "Grace"}

	if _, err := MergeStates(old, cur); !errors.Is(err, chatfield.ErrMergeConflict) {
		t.Fatalf("err = %v, want ErrMergeConflict", err)
	}
}

func TestMergeStatesNilOld(t *testing.T) {
	cur := stateWith(t, llm.SystemMessage("prompt"))

	merged, err := MergeStates(nil, cur)
	if err != nil {
		t.Fatalf("MergeStates(nil, cur): %v", err)
	}

	// The result is a detached copy.
	merged.Messages = append(merged.Messages, llm.UserMessage("extra"))
	if len(cur.Messages) != 1 {
		t.Error("merge result aliases the input state")
	}
}
