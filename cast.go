package chatfield

import "fmt"

// CastKind names the primitive a cast parses the natural value into.
type CastKind string

const (
	KindInt     CastKind = "int"
	KindFloat   CastKind = "float"
	KindBool    CastKind = "bool"
	KindString  CastKind = "str"
	KindPercent CastKind = "percent"
	KindList    CastKind = "list"
	KindSet     CastKind = "set"
	KindMap     CastKind = "map"
	KindLang    CastKind = "lang"
	KindChoice  CastKind = "choice"
)

// Cast declares one typed transform of a field's natural value. The
// model fills it alongside the natural value on every update; the
// prompt is instruction text for the model and is never shown to the
// end user. Choice casts carry their option list plus cardinality
// flags: Null permits an empty selection, Multi permits several.
type Cast struct {
	Name    string   `json:"name"`
	Kind    CastKind `json:"kind"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices,omitempty"`
	Null    bool     `json:"null,omitempty"`
	Multi   bool     `json:"multi,omitempty"`
}

// Validate checks the declaration is well formed. Called by
// Builder.Build so malformed casts fail before any conversation runs.
func (c *Cast) Validate() error {
	switch c.Kind {
	case KindInt, KindFloat, KindBool, KindString, KindPercent,
		KindList, KindSet, KindMap, KindLang:
		if len(c.Choices) > 0 {
			return fmt.Errorf("%w: cast %q kind %q does not take choices", ErrBadCast, c.Name, c.Kind)
		}
	case KindChoice:
		if len(c.Choices) == 0 {
			return fmt.Errorf("%w: choice cast %q has no choices", ErrBadCast, c.Name)
		}
	default:
		return fmt.Errorf("%w: cast %q has unknown kind %q", ErrBadCast, c.Name, c.Kind)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: cast with empty name", ErrBadCast)
	}
	return nil
}

func (c *Cast) copy() *Cast {
	d := *c
	d.Choices = append([]string(nil), c.Choices...)
	return &d
}
