package interviewer

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	chatfield "github.com/chatfield/chatfield-go"
	"github.com/chatfield/chatfield-go/internal/fieldname"
)

func surveyInterview(t *testing.T) *chatfield.Interview {
	t.Helper()
	iv, err := chatfield.New().
		Type("Survey").
		Field("name").Desc("Respondent name").
		Field("shirt size").Desc("Preferred shirt size").
		AsOne("size", "s", "m", "l").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return iv
}

func TestProcessUpdateStoresWholesale(t *testing.T) {
	iv := surveyInterview(t)

	err := processUpdate(zap.NewNop(), iv, map[string]any{
		"name": map[string]any{
			"value":   "Alice",
			"context": "volunteered immediately",
		},
	})
	if err != nil {
		t.Fatalf("processUpdate: %v", err)
	}

	v := iv.Field("name").Value
	if v == nil {
		t.Fatal("field value not stored")
	}
	if v.Natural() != "Alice" {
		t.Errorf("Natural() = %q, want Alice", v.Natural())
	}
	if extra, ok := v.Raw("context"); !ok || extra != "volunteered immediately" {
		t.Errorf("extra key dropped: %v %v", extra, ok)
	}
}

func TestProcessUpdateSkipsNullEntries(t *testing.T) {
	iv := surveyInterview(t)

	err := processUpdate(zap.NewNop(), iv, map[string]any{
		"name":       map[string]any{"value": "Bea"},
		"shirt size": nil,
	})
	if err != nil {
		t.Fatalf("processUpdate: %v", err)
	}
	if iv.Field("shirt size").Value != nil {
		t.Error("null entry should leave the field unset")
	}
	if iv.Field("name").Value == nil {
		t.Error("non-null entry should be stored")
	}
}

func TestProcessUpdateDecodesFieldNames(t *testing.T) {
	iv := surveyInterview(t)
	encoded := fieldname.Encode("shirt size")

	err := processUpdate(zap.NewNop(), iv, map[string]any{
		encoded: map[string]any{"value": "medium", "as_one_size": "m"},
	})
	if err != nil {
		t.Fatalf("processUpdate: %v", err)
	}

	v := iv.Field("shirt size").Value
	if v == nil {
		t.Fatal("encoded field name not decoded back")
	}
	if got, ok := v.AsOne("size"); !ok || got != "m" {
		t.Errorf("AsOne(size) = %q %v", got, ok)
	}
}

func TestProcessUpdateUnknownField(t *testing.T) {
	iv := surveyInterview(t)

	err := processUpdate(zap.NewNop(), iv, map[string]any{
		"favorite_movie": map[string]any{"value": "Heat"},
	})
	if !errors.Is(err, chatfield.ErrUnknownField) {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}
}

func TestProcessUpdateRejectsNonObject(t *testing.T) {
	iv := surveyInterview(t)

	err := processUpdate(zap.NewNop(), iv, map[string]any{"name": "Alice"})
	if err == nil {
		t.Fatal("scalar field payload should be rejected")
	}
}

func TestProcessUpdateLastWriteWins(t *testing.T) {
	iv := surveyInterview(t)
	log := zap.NewNop()

	for _, name := range []string{"Ada", "Grace"} {
		err := processUpdate(log, iv, map[string]any{
			"name": map[string]any{"value": name},
		})
		if err != nil {
			t.Fatalf("processUpdate(%q): %v", name, err)
		}
	}
	if got := iv.Field("name").Value.Natural(); got != "Grace" {
		t.Errorf("Natural() = %q, want the later write", got)
	}
}

func TestCanonicalCastKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"choose_exactly_one_size", "as_one_size"},
		{"choose_zero_or_one_size", "as_maybe_size"},
		{"choose_one_or_more_tags", "as_multi_tags"},
		{"choose_zero_or_more_tags", "as_any_tags"},
		{"chooseExactlyOne_size", "as_one_size"},
		{"chooseZeroOrOne_size", "as_maybe_size"},
		{"chooseOneOrMore_tags", "as_multi_tags"},
		{"chooseZeroOrMore_tags", "as_any_tags"},
		{"as_one_size", "as_one_size"},
		{"value", "value"},
	}
	for _, tt := range tests {
		if got := canonicalCastKey(tt.in); got != tt.want {
			t.Errorf("canonicalCastKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProcessUpdateRewritesLegacyKeys(t *testing.T) {
	iv := surveyInterview(t)

	err := processUpdate(zap.NewNop(), iv, map[string]any{
		"shirt size": map[string]any{
			"value":                   "medium",
			"choose_exactly_one_size": "m",
		},
	})
	if err != nil {
		t.Fatalf("processUpdate: %v", err)
	}

	v := iv.Field("shirt size").Value
	if _, ok := v.Raw("choose_exactly_one_size"); ok {
		t.Error("legacy key stored verbatim")
	}
	if got, ok := v.AsOne("size"); !ok || got != "m" {
		t.Errorf("AsOne(size) = %q %v, want m under the canonical key", got, ok)
	}
}
