package session

import (
	"context"

	chatfield "github.com/chatfield/chatfield-go"
	"github.com/chatfield/chatfield-go/interviewer"
)

// Conversation is the slice of the interview orchestrator the usecase
// drives: advance a round, tear down, inspect the record.
type Conversation interface {
	Go(ctx context.Context, input *string) (string, error)
	End(ctx context.Context) error
	Interview() *chatfield.Interview
	ThreadID() string
}

var _ Conversation = &interviewer.Interviewer{}

// ConversationFactory builds the orchestrator for one thread. The
// builder closes over the chat model, checkpoint store and interview
// definition so the usecase never sees provider wiring.
type ConversationFactory func(ctx context.Context, threadID string) (Conversation, error)
