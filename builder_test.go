package chatfield

import (
	"errors"
	"testing"
)

func TestBuilderRoleDefaults(t *testing.T) {
	iv, err := New().Field("name").Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if iv.Interviewer.Type != "Agent" {
		t.Errorf("interviewer type = %q, want Agent", iv.Interviewer.Type)
	}
	if iv.Interviewee.Type != "User" {
		t.Errorf("interviewee type = %q, want User", iv.Interviewee.Type)
	}
}

func TestBuilderRolesAndTraits(t *testing.T) {
	iv, err := New().
		Type("NumberInterview").
		Alice().Type("Mathematician").Trait("enthusiastic").Trait("patient").
		Bob().Type("Number Enthusiast").
		Field("favorite").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if iv.Interviewer.Type != "Mathematician" {
		t.Errorf("interviewer type = %q", iv.Interviewer.Type)
	}
	if len(iv.Interviewer.Traits) != 2 || iv.Interviewer.Traits[0] != "enthusiastic" {
		t.Errorf("traits = %v", iv.Interviewer.Traits)
	}
	if iv.IntervieweeType() != "Number Enthusiast" {
		t.Errorf("interviewee type = %q", iv.IntervieweeType())
	}
}

func TestConcludeImpliesConfidential(t *testing.T) {
	iv, err := New().Field("feedback").Conclude().Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	specs := iv.Field("feedback").Specs
	if !specs.Conclude || !specs.Confidential {
		t.Errorf("conclude field specs = %+v, want both flags", specs)
	}
}

func TestCastNamesAndPrompts(t *testing.T) {
	iv, err := New().
		Field("favorite").
		AsInt().
		AsBool("even").
		AsBool("prime", "True if prime number").
		AsLang("fr").
		AsPercent().
		AsOne("size", "small", "large").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f := iv.Field("favorite")

	cases := []struct {
		name   string
		kind   CastKind
		prompt string
	}{
		{"as_int", KindInt, "Parse as integer"},
		{"as_bool_even", KindBool, "Parse as boolean for even"},
		{"as_bool_prime", KindBool, "True if prime number"},
		{"as_lang_fr", KindLang, "Translate to fr"},
		{"as_percent", KindPercent, "Parse as percentage (0.0 to 1.0)"},
		{"as_one_size", KindChoice, "Choose for size"},
	}
	for _, c := range cases {
		cast := f.Cast(c.name)
		if cast == nil {
			t.Errorf("cast %q missing", c.name)
			continue
		}
		if cast.Kind != c.kind {
			t.Errorf("cast %q kind = %q, want %q", c.name, cast.Kind, c.kind)
		}
		if cast.Prompt != c.prompt {
			t.Errorf("cast %q prompt = %q, want %q", c.name, cast.Prompt, c.prompt)
		}
	}

	one := f.Cast("as_one_size")
	if one.Null || one.Multi {
		t.Errorf("as_one cardinality = null:%v multi:%v", one.Null, one.Multi)
	}
}

func TestChoiceCardinalityFlags(t *testing.T) {
	iv, err := New().
		Field("f").
		AsOne("a", "x").
		AsMaybe("b", "x").
		AsMulti("c", "x").
		AsAny("d", "x").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f := iv.Field("f")
	cases := []struct {
		name        string
		null, multi bool
	}{
		{"as_one_a", false, false},
		{"as_maybe_b", true, false},
		{"as_multi_c", false, true},
		{"as_any_d", true, true},
	}
	for _, c := range cases {
		cast := f.Cast(c.name)
		if cast == nil {
			t.Fatalf("cast %q missing", c.name)
		}
		if cast.Null != c.null || cast.Multi != c.multi {
			t.Errorf("%s = null:%v multi:%v, want null:%v multi:%v",
				c.name, cast.Null, cast.Multi, c.null, c.multi)
		}
	}
}

func TestBuildRejectsMalformedCasts(t *testing.T) {
	_, err := New().Field("f").AsOne("color").Build()
	if !errors.Is(err, ErrBadCast) {
		t.Errorf("choice without options: err = %v, want ErrBadCast", err)
	}

	_, err = New().Field("f").AsLang("").Build()
	if !errors.Is(err, ErrBadCast) {
		t.Errorf("lang without code: err = %v, want ErrBadCast", err)
	}
}

func TestRedeclaringFieldResetsIt(t *testing.T) {
	b := New().Field("name").Must("old rule").Builder
	iv, err := b.Field("name").Desc("fresh").Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f := iv.Field("name")
	if len(f.Specs.Must) != 0 {
		t.Errorf("must rules survived redeclaration: %v", f.Specs.Must)
	}
	if f.Desc != "fresh" {
		t.Errorf("desc = %q", f.Desc)
	}
	if len(iv.Fields) != 1 {
		t.Errorf("field count = %d", len(iv.Fields))
	}
}

func TestBuilderReuseAfterBuild(t *testing.T) {
	b := New().Type("T")
	first, err := b.Field("a").Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	second, err := b.Field("b").Build()
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if len(first.Fields) != 1 {
		t.Errorf("first build gained fields retroactively: %d", len(first.Fields))
	}
	if len(second.Fields) != 2 {
		t.Errorf("second build field count = %d", len(second.Fields))
	}
}
