// Package render holds the bot's user-facing texts and formatting
// helpers, kept in one place so the conversational tone is consistent.
package render

import "fmt"

const (
	MsgWelcome = `Hi! I'll walk you through a short structured conversation and collect everything into a tidy record.

Answer in your own words; I'll ask about anything that's missing. Send /done at any point to stop early.`

	MsgHelp = `Commands:

/start - begin the conversation
/done - finish early and see what was collected
/export [md|pdf|docx] - download the record
/help - this message

Anything else you send is treated as your answer.`

	MsgNoConversation = "No conversation is running. Send /start to begin."

	MsgAlreadyRunning = "The conversation is already running. Just keep answering, or send /done to finish."

	MsgConversationDone = "That's everything I needed. Here's the record:"

	MsgConversationEnded = "Stopped. Here's what was collected so far:"

	MsgPickExport = "Download the record as a document:"

	ErrGeneric = "Something went wrong. Please try again."

	ErrRateLimited = "Too many messages. Please wait a moment."

	ErrExportFailed = "Could not prepare the document. Please try again."
)

// Record wraps the pretty-printed field record in a code block so
// Telegram preserves its indentation.
func Record(results string) string {
	return fmt.Sprintf("```\n%s\n```", results)
}
