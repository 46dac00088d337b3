package session

import (
	"fmt"
	"strings"

	"github.com/chatfield/chatfield-go/internal/entity"
	"github.com/chatfield/chatfield-go/internal/pkg/export"
	"github.com/chatfield/chatfield-go/interviewer"
	"github.com/chatfield/chatfield-go/llm"
)

// stateToDocument flattens a conversation snapshot into an export
// document: the visible transcript plus the collected record. System
// and tool traffic stays out of the transcript.
func stateToDocument(st *interviewer.ConversationState) *export.Document {
	doc := &export.Document{}

	alice := "Agent"
	bob := "User"
	if st.Interview != nil {
		doc.Title = st.Interview.Type
		doc.Results = st.Interview.Pretty()
		alice = st.Interview.InterviewerType()
		bob = st.Interview.IntervieweeType()
	}

	for _, m := range st.Messages {
		if m.Content == "" {
			continue
		}
		switch m.Role {
		case llm.RoleAssistant:
			doc.Transcript = append(doc.Transcript, export.Turn{Speaker: alice, Text: m.Content})
		case llm.RoleUser:
			doc.Transcript = append(doc.Transcript, export.Turn{Speaker: bob, Text: m.Content})
		}
	}

	return doc
}

// statusFromState derives the session status a checkpoint snapshot
// implies.
func statusFromState(st *interviewer.ConversationState) entity.SessionStatus {
	switch {
	case st.Interview != nil && st.Interview.Done():
		return entity.SessionStatusDone
	case st.Ended:
		return entity.SessionStatusEnded
	default:
		return entity.SessionStatusActive
	}
}

// lastAssistantText returns the latest visible reply in a snapshot.
func lastAssistantText(st *interviewer.ConversationState) string {
	for i := len(st.Messages) - 1; i >= 0; i-- {
		m := st.Messages[i]
		if m.Role == llm.RoleAssistant && m.Content != "" {
			return m.Content
		}
	}
	return ""
}

// exportFilename builds a download name from the thread ID, with
// anything unsafe for a Content-Disposition header replaced. ext
// carries its leading dot.
func exportFilename(threadID, ext string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, threadID)
	return fmt.Sprintf("interview-%s%s", safe, ext)
}
