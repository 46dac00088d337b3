package interviewer

import (
	"fmt"

	chatfield "github.com/chatfield/chatfield-go"
	"github.com/chatfield/chatfield-go/internal/fieldname"
	"github.com/chatfield/chatfield-go/llm"
)

// updateTool describes the record-keeping tool bound during normal
// conversation turns. Every non-conclude field gets a required but
// nullable slot: the model passes null for fields the latest exchange
// said nothing about.
func updateTool(iv *chatfield.Interview) llm.Tool {
	params := &llm.Schema{Type: "object"}
	for _, f := range iv.Fields {
		if f.Specs.Conclude {
			continue
		}
		encoded := fieldname.Encode(f.Name)
		params.Properties = append(params.Properties, llm.Property{
			Name: encoded,
			Schema: &llm.Schema{
				AnyOf: []*llm.Schema{fieldFragment(iv, f), {Type: "null"}},
			},
		})
		params.Required = append(params.Required, encoded)
	}
	return llm.Tool{
		Name: "update_" + iv.ID(),
		Description: fmt.Sprintf("Record valid information shared by the %s about the %s",
			iv.IntervieweeType(), iv.Type),
		Parameters: params,
	}
}

// confidentialTool covers the still-unset confidential fields at
// digest time. Slots are mandatory and non-nullable: each one must be
// recorded as having no relevant information.
func confidentialTool(iv *chatfield.Interview, fields []*chatfield.Field) llm.Tool {
	params := &llm.Schema{Type: "object"}
	for _, f := range fields {
		encoded := fieldname.Encode(f.Name)
		params.Properties = append(params.Properties, llm.Property{
			Name:   encoded,
			Schema: fieldFragment(iv, f),
		})
		params.Required = append(params.Required, encoded)
	}
	return llm.Tool{
		Name: "updateConfidential_" + iv.ID(),
		Description: fmt.Sprintf("Record those confidential fields about the %s from the %s which have no relevant information so far.",
			iv.Type, iv.IntervieweeType()),
		Parameters: params,
	}
}

// concludeTool covers every conclude field, recorded in one mandatory
// call once the conversation has run its course.
func concludeTool(iv *chatfield.Interview) llm.Tool {
	params := &llm.Schema{Type: "object"}
	for _, f := range iv.Fields {
		if !f.Specs.Conclude {
			continue
		}
		encoded := fieldname.Encode(f.Name)
		params.Properties = append(params.Properties, llm.Property{
			Name:   encoded,
			Schema: fieldFragment(iv, f),
		})
		params.Required = append(params.Required, encoded)
	}
	return llm.Tool{
		Name: "conclude_" + iv.ID(),
		Description: fmt.Sprintf("Record key required information about the %s by summarizing, synthesizing, or recalling the conversation so far with the %s",
			iv.Type, iv.IntervieweeType()),
		Parameters: params,
	}
}

// fieldFragment is the per-field argument object: the natural value
// plus one slot per declared cast, all required.
func fieldFragment(iv *chatfield.Interview, f *chatfield.Field) *llm.Schema {
	frag := &llm.Schema{
		Type:        "object",
		Description: f.Desc,
		Properties: []llm.Property{{
			Name: "value",
			Schema: &llm.Schema{
				Type:  "string",
				Title: "Natural Value",
				Description: fmt.Sprintf("The most typical valid representation of a %s %s."+
					" Empty string means the %s explicitly declined to provide it;"+
					" omitted or null means it has not come up yet.",
					iv.Type, f.Name, iv.IntervieweeType()),
			},
		}},
		Required: []string{"value"},
	}
	for _, c := range f.Casts {
		frag.Properties = append(frag.Properties, llm.Property{
			Name:   c.Name,
			Schema: castSchema(c),
		})
		frag.Required = append(frag.Required, c.Name)
	}
	return frag
}

func castSchema(c *chatfield.Cast) *llm.Schema {
	var s *llm.Schema
	switch c.Kind {
	case chatfield.KindInt:
		s = &llm.Schema{Type: "integer"}
	case chatfield.KindFloat, chatfield.KindPercent:
		s = &llm.Schema{Type: "number"}
	case chatfield.KindBool:
		s = &llm.Schema{Type: "boolean"}
	case chatfield.KindString, chatfield.KindLang:
		s = &llm.Schema{Type: "string"}
	case chatfield.KindList:
		s = &llm.Schema{Type: "array", Items: &llm.Schema{}}
	case chatfield.KindSet:
		s = &llm.Schema{Type: "array", Items: &llm.Schema{}, UniqueItems: true}
	case chatfield.KindMap:
		s = &llm.Schema{Type: "object"}
	case chatfield.KindChoice:
		s = choiceSchema(c)
	default:
		// Build() validates kinds; an unknown one here is a bug.
		s = &llm.Schema{Type: "string"}
	}
	s.Description = c.Prompt
	return s
}

// choiceSchema encodes cardinality: enum for one, enum array with
// item bounds for many, an anyOf null branch when zero is allowed.
func choiceSchema(c *chatfield.Cast) *llm.Schema {
	enum := &llm.Schema{Type: "string", Enum: c.Choices}

	if !c.Multi {
		if c.Null {
			return &llm.Schema{AnyOf: []*llm.Schema{enum, {Type: "null"}}}
		}
		return enum
	}

	minItems := 1
	if c.Null {
		minItems = 0
	}
	arr := &llm.Schema{
		Type:        "array",
		Items:       enum,
		MinItems:    llm.IntPtr(minItems),
		MaxItems:    llm.IntPtr(len(c.Choices)),
		UniqueItems: true,
	}
	if c.Null {
		return &llm.Schema{AnyOf: []*llm.Schema{arr, {Type: "null"}}}
	}
	return arr
}
