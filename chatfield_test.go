package chatfield

import "testing"

func TestFieldDescDefaultsToName(t *testing.T) {
	iv, err := New().Type("T").Field("favorite_color").Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f := iv.Field("favorite_color")
	if f == nil {
		t.Fatal("field missing")
	}
	if f.Desc != "favorite_color" {
		t.Errorf("desc = %q, want field name", f.Desc)
	}
}

func TestEnoughAndDoneProgression(t *testing.T) {
	iv, err := New().
		Type("Survey").
		Field("name").
		Field("rating").Confidential().
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if iv.Enough() || iv.Done() {
		t.Fatal("fresh interview should be neither enough nor done")
	}

	iv.Field("name").Value = FieldValue{"value": "Alice"}
	if !iv.Enough() {
		t.Error("enough should be true once all normal fields are set")
	}
	if iv.Done() {
		t.Error("done should wait for the confidential field")
	}

	iv.Field("rating").Value = FieldValue{"value": "5"}
	if !iv.Done() {
		t.Error("done should be true with every field set")
	}
}

func TestEmptyInterviewVacuouslyComplete(t *testing.T) {
	iv, err := New().Type("Empty").Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !iv.Enough() || !iv.Done() {
		t.Error("empty interview must be enough and done immediately")
	}
}

func TestOnlyConfidentialFields(t *testing.T) {
	iv, err := New().Field("secret").Confidential().Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !iv.Enough() {
		t.Error("enough ignores confidential fields")
	}
	if iv.Done() {
		t.Error("done must wait for confidential fields")
	}
}

func TestCopyIsDeep(t *testing.T) {
	iv, err := New().Type("T").Field("name").Must("rule").Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	iv.Field("name").Value = FieldValue{"value": "original", "as_list": []any{"a"}}

	c := iv.Copy()
	c.Field("name").Value["value"] = "changed"
	c.Field("name").Specs.Must[0] = "other rule"
	c.Field("name").Value["as_list"].([]any)[0] = "b"

	f := iv.Field("name")
	if f.Value.Natural() != "original" {
		t.Error("copy shares FieldValue with original")
	}
	if f.Specs.Must[0] != "rule" {
		t.Error("copy shares rule slice with original")
	}
	if f.Value["as_list"].([]any)[0] != "a" {
		t.Error("copy shares nested slice with original")
	}
}

func TestCopyFromReplacesContents(t *testing.T) {
	src, _ := New().Type("Src").Field("a").Build()
	src.Field("a").Value = FieldValue{"value": "x"}
	dst, _ := New().Type("Dst").Field("a").Build()

	dst.CopyFrom(src)
	if dst.Type != "Src" || dst.Field("a").Value.Natural() != "x" {
		t.Error("CopyFrom did not replace contents")
	}
	src.Field("a").Value["value"] = "y"
	if dst.Field("a").Value.Natural() != "x" {
		t.Error("CopyFrom left shared state behind")
	}
}

func TestInterviewID(t *testing.T) {
	cases := []struct {
		typeName string
		want     string
	}{
		{"Contact Form", "Contact_Form"},
		{"NumberInterview", "NumberInterview"},
		{"A  B!!C", "A_B_C"},
		{"", "Interview"},
		{"!!!", "Interview"},
	}
	for _, c := range cases {
		iv := &Interview{Type: c.typeName}
		if got := iv.ID(); got != c.want {
			t.Errorf("ID(%q) = %q, want %q", c.typeName, got, c.want)
		}
	}
}

func TestFieldOrderPreserved(t *testing.T) {
	iv, err := New().
		Field("zebra").
		Field("apple").
		Field("mango").
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []string{"zebra", "apple", "mango"}
	got := iv.FieldNames()
	if len(got) != len(want) {
		t.Fatalf("field count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
