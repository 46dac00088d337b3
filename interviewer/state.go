package interviewer

import (
	"encoding/json"
	"fmt"
	"reflect"

	chatfield "github.com/chatfield/chatfield-go"
	"github.com/chatfield/chatfield-go/llm"
)

// ConversationState is the durable snapshot of one thread: the
// transcript, the interview it is filling in, and the one-shot phase
// flags. Ended marks a conversation torn down for good, whether by
// completion or by the caller.
type ConversationState struct {
	Messages              []llm.Message        `json:"messages"`
	Interview             *chatfield.Interview `json:"interview"`
	DigestedConfidentials bool                 `json:"digested_confidentials"`
	DigestedConcludes     bool                 `json:"digested_concludes"`
	Ended                 bool                 `json:"ended"`
}

// Snapshot serializes the state for a checkpoint store.
func (s *ConversationState) Snapshot() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot state: %w", err)
	}
	return data, nil
}

// RestoreState rebuilds a snapshot taken by Snapshot.
func RestoreState(data []byte) (*ConversationState, error) {
	var s ConversationState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("restore state: %w", err)
	}
	return &s, nil
}

// MergeStates reconciles a stored state with the outcome of a turn.
// Turns only ever extend a conversation, so the old transcript must be
// a prefix of the current one, phase flags may only flip to true, and
// the interview merges monotonically. Anything else reports
// chatfield.ErrMergeConflict.
func MergeStates(old, cur *ConversationState) (*ConversationState, error) {
	if cur == nil {
		return nil, fmt.Errorf("%w: current state is nil", chatfield.ErrMergeConflict)
	}
	if old == nil {
		return cloneState(cur)
	}

	if len(old.Messages) > len(cur.Messages) {
		return nil, fmt.Errorf("%w: transcript shrank from %d to %d messages",
			chatfield.ErrMergeConflict, len(old.Messages), len(cur.Messages))
	}
	for i := range old.Messages {
		if !reflect.DeepEqual(old.Messages[i], cur.Messages[i]) {
			return nil, fmt.Errorf("%w: transcript rewritten at message %d",
				chatfield.ErrMergeConflict, i)
		}
	}

	if old.DigestedConfidentials && !cur.DigestedConfidentials {
		return nil, fmt.Errorf("%w: digested_confidentials reverted", chatfield.ErrMergeConflict)
	}
	if old.DigestedConcludes && !cur.DigestedConcludes {
		return nil, fmt.Errorf("%w: digested_concludes reverted", chatfield.ErrMergeConflict)
	}
	if old.Ended && !cur.Ended {
		return nil, fmt.Errorf("%w: ended conversation resumed", chatfield.ErrMergeConflict)
	}

	mergedInterview, err := chatfield.MergeInterviews(old.Interview, cur.Interview)
	if err != nil {
		return nil, err
	}

	merged, err := cloneState(cur)
	if err != nil {
		return nil, err
	}
	merged.Interview = mergedInterview
	merged.DigestedConfidentials = old.DigestedConfidentials || cur.DigestedConfidentials
	merged.DigestedConcludes = old.DigestedConcludes || cur.DigestedConcludes
	merged.Ended = old.Ended || cur.Ended
	return merged, nil
}

func cloneState(s *ConversationState) (*ConversationState, error) {
	data, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return RestoreState(data)
}

func (s *ConversationState) lastMessage() *llm.Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

func (s *ConversationState) systemMessageCount() int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == llm.RoleSystem {
			n++
		}
	}
	return n
}
