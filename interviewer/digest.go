package interviewer

import (
	"context"
	"fmt"
	"strings"

	chatfield "github.com/chatfield/chatfield-go"
	"github.com/chatfield/chatfield-go/llm"
	"github.com/chatfield/chatfield-go/prompt"
)

// digestConfidentials records the still-unset confidential fields as
// having no relevant information. Runs once, at the first moment the
// discussable fields are complete.
func (iv *Interviewer) digestConfidentials(ctx context.Context, state *ConversationState) error {
	var unset []*chatfield.Field
	var lines []string
	for _, f := range state.Interview.Fields {
		if f.Specs.Conclude {
			continue
		}
		if f.Specs.Confidential && f.Value == nil {
			unset = append(unset, f)
			lines = append(lines, "- "+f.Name+": "+f.Desc)
		}
	}

	if len(unset) == 0 {
		state.DigestedConfidentials = true
		return nil
	}

	rendered, err := iv.renderer.Render(prompt.DigestConfidential, prompt.DigestConfidentialData{
		InterviewType: state.Interview.Type,
		AliceRole:     state.Interview.InterviewerType(),
		BobRole:       state.Interview.IntervieweeType(),
		FieldsPrompt:  strings.Join(lines, "\n"),
	})
	if err != nil {
		return err
	}

	tool := confidentialTool(state.Interview, unset)
	sys := llm.SystemMessage(rendered)

	resp, err := iv.model.Invoke(ctx, append(append([]llm.Message(nil), state.Messages...), sys), []llm.Tool{tool}, nil)
	if err != nil {
		return fmt.Errorf("digest confidentials: %w", err)
	}

	state.Messages = append(state.Messages, sys, llm.AssistantMessage(resp.Content, resp.ToolCalls...))
	state.DigestedConfidentials = true
	return nil
}

// digestConcludes asks for the conclude fields in one mandatory call
// once the conversation is otherwise complete.
func (iv *Interviewer) digestConcludes(ctx context.Context, state *ConversationState) error {
	var entries []string
	for _, f := range state.Interview.Fields {
		if f.Specs.Conclude {
			entries = append(entries, fieldEntry(state.Interview.IntervieweeType(), f))
		}
	}

	if len(entries) == 0 {
		state.DigestedConcludes = true
		return nil
	}

	rendered, err := iv.renderer.Render(prompt.DigestConclude, prompt.DigestConcludeData{
		InterviewType: state.Interview.Type,
		FieldsPrompt:  strings.Join(entries, "\n\n"),
	})
	if err != nil {
		return err
	}

	tool := concludeTool(state.Interview)
	sys := llm.SystemMessage(rendered)

	resp, err := iv.model.Invoke(ctx, append(append([]llm.Message(nil), state.Messages...), sys), []llm.Tool{tool}, nil)
	if err != nil {
		return fmt.Errorf("digest concludes: %w", err)
	}

	state.Messages = append(state.Messages, sys, llm.AssistantMessage(resp.Content, resp.ToolCalls...))
	state.DigestedConcludes = true
	return nil
}

// fieldEntry renders one field for a digest prompt: its label, then
// its rules and cast slots as indented bullets.
func fieldEntry(bobRole string, f *chatfield.Field) string {
	label := "- " + f.Name
	if f.Desc != "" {
		label += ": " + f.Desc
	}
	lines := []string{label}
	if f.Specs.Confidential {
		lines = append(lines, "    - **Confidential**: Do not inquire about this explicitly nor bring it up yourself."+
			" Continue your normal behavior."+
			" However, if the "+bobRole+" ever volunteers or implies it, you must record this information.")
	}
	for _, m := range f.Specs.Must {
		lines = append(lines, "    - Must: "+m)
	}
	for _, r := range f.Specs.Reject {
		lines = append(lines, "    - Reject: "+r)
	}
	for _, h := range f.Specs.Hint {
		lines = append(lines, "    - Hint: "+h)
	}
	for _, c := range f.Casts {
		if c.Prompt != "" {
			lines = append(lines, "    - Confidential cast: `"+c.Name+"` -> "+c.Prompt)
		}
	}
	return strings.Join(lines, "\n")
}

// systemPromptData flattens the interview into template data. Conclude
// fields never appear: the conversation must not steer toward them.
func systemPromptData(iv *chatfield.Interview) prompt.SystemPromptData {
	data := prompt.SystemPromptData{
		InterviewType: iv.Type,
		InterviewDesc: iv.Desc,
		AliceRole:     iv.InterviewerType(),
		BobRole:       iv.IntervieweeType(),
	}
	if iv.Interviewer != nil {
		data.AliceTraits = iv.Interviewer.Traits
	}
	if iv.Interviewee != nil {
		data.BobTraits = iv.Interviewee.Traits
	}

	mustCount, rejectCount := 0, 0
	for _, f := range iv.Fields {
		if f.Specs.Conclude {
			continue
		}
		if f.Specs.Confidential {
			data.HasConfidential = true
		}
		mustCount += len(f.Specs.Must)
		rejectCount += len(f.Specs.Reject)

		fd := prompt.FieldData{
			Name:         f.Name,
			Desc:         f.Desc,
			Confidential: f.Specs.Confidential,
			Must:         f.Specs.Must,
			Reject:       f.Specs.Reject,
			Hint:         f.Specs.Hint,
		}
		for _, c := range f.Casts {
			fd.Casts = append(fd.Casts, prompt.CastData{Name: c.Name, Prompt: c.Prompt})
		}
		data.Fields = append(data.Fields, fd)
	}

	data.Labels = prompt.ValidationLabels(mustCount, rejectCount)
	return data
}
