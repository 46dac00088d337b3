// Package chatfield turns rigid forms into LLM-guided conversations.
//
// An Interview declares the fields to collect, the validation rules the
// model must enforce, and typed casts derived from each answer. Build
// one with the fluent Builder, hand it to an interviewer.Interviewer to
// run the conversation, then read collected values back through the
// typed FieldValue getters.
package chatfield

import "strings"

// Default role labels applied by the builder when a role is never
// configured. The merge rules treat them as placeholders that a real
// label may overwrite.
const (
	DefaultInterviewerType = "Agent"
	DefaultIntervieweeType = "User"
)

// Role describes one party to the conversation: a short type label
// ("Mathematician", "Job Candidate") and optional behavioral traits.
type Role struct {
	Type   string   `json:"type"`
	Traits []string `json:"traits,omitempty"`
}

// FieldSpecs holds the declared rules for one field. Must and Reject
// are validation rules the model enforces conversationally; Hint is
// guidance it may use but should not recite. Confidential fields are
// never proactively asked about; Conclude fields are synthesized from
// the whole conversation and imply Confidential.
type FieldSpecs struct {
	Must         []string `json:"must,omitempty"`
	Reject       []string `json:"reject,omitempty"`
	Hint         []string `json:"hint,omitempty"`
	Confidential bool     `json:"confidential,omitempty"`
	Conclude     bool     `json:"conclude,omitempty"`
}

// Field is one named datum the conversation must collect. Value stays
// nil until the model records it, then is set atomically as a whole.
type Field struct {
	Name  string     `json:"name"`
	Desc  string     `json:"desc"`
	Specs FieldSpecs `json:"specs"`
	Casts []*Cast    `json:"casts,omitempty"`
	Value FieldValue `json:"value,omitempty"`
}

// Cast returns the declared cast with the given name, or nil.
func (f *Field) Cast(name string) *Cast {
	for _, c := range f.Casts {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Interview is the caller-declared template plus the field values
// collected so far. Fields keep declaration order; every generated
// prompt and schema preserves it.
type Interview struct {
	Type        string   `json:"type"`
	Desc        string   `json:"desc"`
	Interviewer *Role    `json:"interviewer"`
	Interviewee *Role    `json:"interviewee"`
	Fields      []*Field `json:"fields"`
}

// Field returns the field with the given name, or nil.
func (iv *Interview) Field(name string) *Field {
	for _, f := range iv.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FieldNames returns the declared field names in order.
func (iv *Interview) FieldNames() []string {
	names := make([]string, 0, len(iv.Fields))
	for _, f := range iv.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Enough reports whether every field that is neither confidential nor
// conclude has been collected. Vacuously true when no such fields
// exist. Reaching Enough is what triggers the digestion phases.
func (iv *Interview) Enough() bool {
	for _, f := range iv.Fields {
		if f.Specs.Confidential || f.Specs.Conclude {
			continue
		}
		if f.Value == nil {
			return false
		}
	}
	return true
}

// Done reports whether every field, confidential and conclude ones
// included, has been collected. Vacuously true for an empty interview.
func (iv *Interview) Done() bool {
	for _, f := range iv.Fields {
		if f.Value == nil {
			return false
		}
	}
	return true
}

// InterviewerType returns the interviewer role label, defaulted.
func (iv *Interview) InterviewerType() string {
	if iv.Interviewer != nil && iv.Interviewer.Type != "" {
		return iv.Interviewer.Type
	}
	return DefaultInterviewerType
}

// IntervieweeType returns the interviewee role label, defaulted.
func (iv *Interview) IntervieweeType() string {
	if iv.Interviewee != nil && iv.Interviewee.Type != "" {
		return iv.Interviewee.Type
	}
	return DefaultIntervieweeType
}

// maxIdentLen caps ID output so prefixed tool names stay within the
// 64-character limit providers put on function names.
const maxIdentLen = 40

// ID derives a stable identifier from the interview type name, suitable
// as a suffix in generated tool names. Runs of characters outside
// [A-Za-z0-9_] collapse to a single underscore.
func (iv *Interview) ID() string {
	var b strings.Builder
	pending := false
	for _, r := range iv.Type {
		safe := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_'
		if !safe {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteByte('_')
			pending = false
		}
		if b.Len() >= maxIdentLen {
			break
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "Interview"
	}
	return b.String()
}

// Copy returns a deep copy sharing no mutable state with the receiver.
func (iv *Interview) Copy() *Interview {
	c := &Interview{
		Type: iv.Type,
		Desc: iv.Desc,
	}
	if iv.Interviewer != nil {
		c.Interviewer = &Role{Type: iv.Interviewer.Type, Traits: append([]string(nil), iv.Interviewer.Traits...)}
	}
	if iv.Interviewee != nil {
		c.Interviewee = &Role{Type: iv.Interviewee.Type, Traits: append([]string(nil), iv.Interviewee.Traits...)}
	}
	c.Fields = make([]*Field, 0, len(iv.Fields))
	for _, f := range iv.Fields {
		c.Fields = append(c.Fields, copyField(f))
	}
	return c
}

// CopyFrom replaces the receiver's contents with a deep copy of other.
// The interviewer uses it to refresh the caller-visible handle at each
// suspension, so reading the handle is always safe.
func (iv *Interview) CopyFrom(other *Interview) {
	c := other.Copy()
	iv.Type = c.Type
	iv.Desc = c.Desc
	iv.Interviewer = c.Interviewer
	iv.Interviewee = c.Interviewee
	iv.Fields = c.Fields
}

func copyField(f *Field) *Field {
	c := &Field{
		Name: f.Name,
		Desc: f.Desc,
		Specs: FieldSpecs{
			Must:         append([]string(nil), f.Specs.Must...),
			Reject:       append([]string(nil), f.Specs.Reject...),
			Hint:         append([]string(nil), f.Specs.Hint...),
			Confidential: f.Specs.Confidential,
			Conclude:     f.Specs.Conclude,
		},
	}
	if f.Casts != nil {
		c.Casts = make([]*Cast, 0, len(f.Casts))
		for _, cast := range f.Casts {
			c.Casts = append(c.Casts, cast.copy())
		}
	}
	if f.Value != nil {
		c.Value = f.Value.Copy()
	}
	return c
}
