package chatfield

import (
	"errors"
	"fmt"
)

// Builder assembles an Interview through a fluent chain:
//
//	iv, err := chatfield.New().
//		Type("Job Interview").
//		Alice().Type("Interviewer").Trait("professional").
//		Bob().Type("Candidate").
//		Field("name").Desc("Your full name").Must("first and last name").
//		Field("experience").AsInt().
//		Build()
//
// Declaration problems (malformed casts, missing choice options) are
// collected and reported together by Build.
type Builder struct {
	iv   *Interview
	errs []error
}

// New starts an empty interview declaration.
func New() *Builder {
	return &Builder{iv: &Interview{}}
}

// Type sets the interview's type name.
func (b *Builder) Type(name string) *Builder {
	b.iv.Type = name
	return b
}

// Desc sets the interview's description.
func (b *Builder) Desc(desc string) *Builder {
	b.iv.Desc = desc
	return b
}

// Alice switches to configuring the interviewer role.
func (b *Builder) Alice() *RoleBuilder {
	if b.iv.Interviewer == nil {
		b.iv.Interviewer = &Role{}
	}
	return &RoleBuilder{Builder: b, role: b.iv.Interviewer}
}

// Bob switches to configuring the interviewee role.
func (b *Builder) Bob() *RoleBuilder {
	if b.iv.Interviewee == nil {
		b.iv.Interviewee = &Role{}
	}
	return &RoleBuilder{Builder: b, role: b.iv.Interviewee}
}

// Field starts declaring the named field. Descriptions default to the
// name itself. Re-declaring a name resets that field but keeps its
// position in the declaration order.
func (b *Builder) Field(name string) *FieldBuilder {
	f := b.iv.Field(name)
	if f == nil {
		f = &Field{Name: name, Desc: name}
		b.iv.Fields = append(b.iv.Fields, f)
	} else {
		*f = Field{Name: name, Desc: name}
	}
	return &FieldBuilder{Builder: b, f: f}
}

// Build validates the declaration and returns a deep copy with role
// defaults applied. The builder may keep being used afterwards; the
// returned Interview shares no state with it.
func (b *Builder) Build() (*Interview, error) {
	errs := append([]error(nil), b.errs...)
	for _, f := range b.iv.Fields {
		for _, c := range f.Casts {
			if err := c.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("field %q: %w", f.Name, err))
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	iv := b.iv.Copy()
	if iv.Interviewer == nil {
		iv.Interviewer = &Role{}
	}
	if iv.Interviewer.Type == "" {
		iv.Interviewer.Type = DefaultInterviewerType
	}
	if iv.Interviewee == nil {
		iv.Interviewee = &Role{}
	}
	if iv.Interviewee.Type == "" {
		iv.Interviewee.Type = DefaultIntervieweeType
	}
	return iv, nil
}

// MustBuild is Build for declarations known to be valid. It panics on
// error and suits package-level demo definitions.
func (b *Builder) MustBuild() *Interview {
	iv, err := b.Build()
	if err != nil {
		panic(err)
	}
	return iv
}

func (b *Builder) fail(err error) {
	b.errs = append(b.errs, err)
}

// RoleBuilder configures one of the two conversation roles. The parent
// builder's methods stay available, so chains can move on to fields or
// the other role directly.
type RoleBuilder struct {
	*Builder
	role *Role
}

// Type sets the role's label ("Mathematician", "Candidate").
func (rb *RoleBuilder) Type(label string) *RoleBuilder {
	rb.role.Type = label
	return rb
}

// Trait adds a behavioral trait for the role.
func (rb *RoleBuilder) Trait(trait string) *RoleBuilder {
	rb.role.Traits = append(rb.role.Traits, trait)
	return rb
}

// FieldBuilder declares one field: description, validation rules,
// confidentiality flags and casts. Cast methods take optional
// positional arguments (sub-name, then prompt); pass "" for the
// sub-name to set a custom prompt on the base cast.
type FieldBuilder struct {
	*Builder
	f *Field
}

// Desc sets the field's description.
func (fb *FieldBuilder) Desc(desc string) *FieldBuilder {
	fb.f.Desc = desc
	return fb
}

// Must adds a validation requirement the model enforces.
func (fb *FieldBuilder) Must(rule string) *FieldBuilder {
	fb.f.Specs.Must = append(fb.f.Specs.Must, rule)
	return fb
}

// Reject adds a rule describing answers the model must turn away.
func (fb *FieldBuilder) Reject(rule string) *FieldBuilder {
	fb.f.Specs.Reject = append(fb.f.Specs.Reject, rule)
	return fb
}

// Hint adds guidance the model may use but should not recite.
func (fb *FieldBuilder) Hint(tip string) *FieldBuilder {
	fb.f.Specs.Hint = append(fb.f.Specs.Hint, tip)
	return fb
}

// Confidential marks the field as tracked silently: recorded when
// volunteered, never proactively asked about.
func (fb *FieldBuilder) Confidential() *FieldBuilder {
	fb.f.Specs.Confidential = true
	return fb
}

// Conclude marks the field as synthesized from the whole conversation
// once it ends. Conclude fields are confidential by implication.
func (fb *FieldBuilder) Conclude() *FieldBuilder {
	fb.f.Specs.Conclude = true
	fb.f.Specs.Confidential = true
	return fb
}

// AsInt parses the answer as an integer.
func (fb *FieldBuilder) AsInt(args ...string) *FieldBuilder {
	return fb.primitive("as_int", KindInt, "Parse as integer", args)
}

// AsFloat parses the answer as a floating point number.
func (fb *FieldBuilder) AsFloat(args ...string) *FieldBuilder {
	return fb.primitive("as_float", KindFloat, "Parse as floating point number", args)
}

// AsBool classifies the answer as a boolean.
func (fb *FieldBuilder) AsBool(args ...string) *FieldBuilder {
	return fb.primitive("as_bool", KindBool, "Parse as boolean", args)
}

// AsString reformats the answer as a string.
func (fb *FieldBuilder) AsString(args ...string) *FieldBuilder {
	return fb.primitive("as_str", KindString, "Format as string", args)
}

// AsPercent parses the answer as a fraction between 0.0 and 1.0.
func (fb *FieldBuilder) AsPercent(args ...string) *FieldBuilder {
	return fb.primitive("as_percent", KindPercent, "Parse as percentage (0.0 to 1.0)", args)
}

// AsList parses the answer as an ordered list.
func (fb *FieldBuilder) AsList(args ...string) *FieldBuilder {
	return fb.primitive("as_list", KindList, "Parse as list/array", args)
}

// AsSet parses the answer as a set of unique items.
func (fb *FieldBuilder) AsSet(args ...string) *FieldBuilder {
	return fb.primitive("as_set", KindSet, "Parse as unique set", args)
}

// AsMap parses the answer as a key-value mapping. The cast is stored
// under "as_dict".
func (fb *FieldBuilder) AsMap(args ...string) *FieldBuilder {
	return fb.primitive("as_dict", KindMap, "Parse as key-value dictionary", args)
}

// AsLang adds a translation cast for the given language code, stored
// under "as_lang_<code>".
func (fb *FieldBuilder) AsLang(code string, prompt ...string) *FieldBuilder {
	if code == "" {
		fb.fail(fmt.Errorf("%w: as_lang requires a language code", ErrBadCast))
		return fb
	}
	p := "Translate to " + code
	if len(prompt) > 0 && prompt[0] != "" {
		p = prompt[0]
	}
	return fb.addCast(&Cast{Name: "as_lang_" + code, Kind: KindLang, Prompt: p})
}

// AsOne requires exactly one selection from choices.
func (fb *FieldBuilder) AsOne(sub string, choices ...string) *FieldBuilder {
	return fb.choice("as_one", sub, false, false, choices)
}

// AsMaybe permits zero or one selection from choices.
func (fb *FieldBuilder) AsMaybe(sub string, choices ...string) *FieldBuilder {
	return fb.choice("as_maybe", sub, true, false, choices)
}

// AsMulti requires one or more selections from choices.
func (fb *FieldBuilder) AsMulti(sub string, choices ...string) *FieldBuilder {
	return fb.choice("as_multi", sub, false, true, choices)
}

// AsAny permits any number of selections from choices, none included.
func (fb *FieldBuilder) AsAny(sub string, choices ...string) *FieldBuilder {
	return fb.choice("as_any", sub, true, true, choices)
}

func (fb *FieldBuilder) primitive(base string, kind CastKind, defPrompt string, args []string) *FieldBuilder {
	name := base
	prompt := defPrompt
	if len(args) > 0 && args[0] != "" {
		name = base + "_" + args[0]
		prompt = defPrompt + " for " + args[0]
	}
	if len(args) > 1 && args[1] != "" {
		prompt = args[1]
	}
	return fb.addCast(&Cast{Name: name, Kind: kind, Prompt: prompt})
}

func (fb *FieldBuilder) choice(base, sub string, null, multi bool, choices []string) *FieldBuilder {
	if sub == "" || len(choices) == 0 {
		fb.fail(fmt.Errorf("%w: %s requires a sub-name and at least one choice", ErrBadCast, base))
		return fb
	}
	return fb.addCast(&Cast{
		Name:    base + "_" + sub,
		Kind:    KindChoice,
		Prompt:  "Choose for " + sub,
		Choices: append([]string(nil), choices...),
		Null:    null,
		Multi:   multi,
	})
}

func (fb *FieldBuilder) addCast(c *Cast) *FieldBuilder {
	for i, old := range fb.f.Casts {
		if old.Name == c.Name {
			fb.f.Casts[i] = c
			return fb
		}
	}
	fb.f.Casts = append(fb.f.Casts, c)
	return fb
}
