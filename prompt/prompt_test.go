package prompt

import (
	"regexp"
	"strings"
	"testing"
	"testing/fstest"
)

func sampleSystemPromptData() SystemPromptData {
	return SystemPromptData{
		InterviewType: "Sample Interview",
		InterviewDesc: "Testing template rendering",
		AliceRole:     "Interviewer",
		AliceTraits:   []string{"professional and friendly", "patient with responses"},
		BobRole:       "Candidate",
		BobTraits:     []string{"potentially nervous"},
		Fields: []FieldData{
			{
				Name: "name",
				Desc: "Your full name",
				Must: []string{"include first and last name"},
				Hint: []string{"Format: First Last"},
			},
			{
				Name:   "email",
				Desc:   "Your email address",
				Must:   []string{"be a valid email format"},
				Reject: []string{"temporary email services"},
			},
			{
				Name:         "salary_expectation",
				Desc:         "Expected salary",
				Confidential: true,
				Casts:        []CastData{{Name: "as_int", Prompt: "Parse as integer"}},
			},
		},
		Labels:          ValidationLabels(2, 1),
		HasConfidential: true,
	}
}

func TestSystemPromptRendering(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	out, err := r.Render(SystemPrompt, sampleSystemPromptData())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, want := range []string{
		"# Traits and Characteristics",
		"professional and friendly",
		"# Fields to Collect",
		"- name: Your full name",
		"- Must: include first and last name",
		"- Reject: temporary email services",
		"- Hint: Format: First Last",
		"**Confidential**",
		"`as_int`: Parse as integer",
		`"Must" and "Reject"`,
		"# Key Confidential Information",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("system prompt missing %q\n%s", want, out)
		}
	}
}

func TestSystemPromptOmitsEmptySections(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	data := SystemPromptData{
		InterviewType: "Quick Poll",
		AliceRole:     "Agent",
		BobRole:       "User",
		Fields:        []FieldData{{Name: "color"}},
	}
	out, err := r.Render(SystemPrompt, data)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, absent := range []string{
		"# Traits and Characteristics",
		"# Key Confidential Information",
		"Validation rules",
	} {
		if strings.Contains(out, absent) {
			t.Errorf("system prompt should not contain %q\n%s", absent, out)
		}
	}
	if !strings.Contains(out, "- color") {
		t.Errorf("field listing missing\n%s", out)
	}
}

// Unresolved placeholders in a finished prompt mean a template bug.
func TestNoUnresolvedPlaceholders(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	leftover := regexp.MustCompile(`\{\{|\}\}|<no value>`)

	outputs := []struct {
		name string
		data any
	}{
		{SystemPrompt, sampleSystemPromptData()},
		{DigestConfidential, DigestConfidentialData{
			InterviewType: "Sample Interview",
			AliceRole:     "Interviewer",
			BobRole:       "Candidate",
			FieldsPrompt:  "- salary_expectation: Expected salary",
		}},
		{DigestConclude, DigestConcludeData{
			InterviewType: "Sample Interview",
			FieldsPrompt:  "- feedback: Any additional comments",
		}},
	}
	for _, o := range outputs {
		out, err := r.Render(o.name, o.data)
		if err != nil {
			t.Fatalf("Render(%s): %v", o.name, err)
		}
		if m := leftover.FindString(out); m != "" {
			t.Errorf("%s output contains unresolved %q", o.name, m)
		}
	}
}

func TestDigestTemplates(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	conf, err := r.Render(DigestConfidential, DigestConfidentialData{
		InterviewType: "Job Application",
		AliceRole:     "Recruiter",
		BobRole:       "Applicant",
		FieldsPrompt:  "- salary_expectation",
	})
	if err != nil {
		t.Fatalf("Render confidential: %v", err)
	}
	for _, want := range []string{"Job Application", "Applicant", "no relevant information", "- salary_expectation"} {
		if !strings.Contains(conf, want) {
			t.Errorf("confidential digest missing %q\n%s", want, conf)
		}
	}

	concl, err := r.Render(DigestConclude, DigestConcludeData{
		InterviewType: "Job Application",
		FieldsPrompt:  "- feedback",
	})
	if err != nil {
		t.Fatalf("Render conclude: %v", err)
	}
	for _, want := range []string{"summarizing, synthesizing, or recalling", "- feedback"} {
		if !strings.Contains(concl, want) {
			t.Errorf("conclude digest missing %q\n%s", want, concl)
		}
	}
}

func TestRendererCachesCompiledTemplates(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	first, err := r.Render(DigestConclude, DigestConcludeData{InterviewType: "X", FieldsPrompt: "- a"})
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	if !r.cache.Contains(DigestConclude) {
		t.Error("compiled template not cached")
	}
	second, err := r.Render(DigestConclude, DigestConcludeData{InterviewType: "X", FieldsPrompt: "- a"})
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if first != second {
		t.Error("cached render differs from fresh render")
	}
}

func TestValidationLabels(t *testing.T) {
	cases := []struct {
		must, reject int
		want         string
	}{
		{0, 0, ""},
		{2, 0, `"Must"`},
		{0, 3, `"Reject"`},
		{1, 1, `"Must" and "Reject"`},
	}
	for _, c := range cases {
		if got := ValidationLabels(c.must, c.reject); got != c.want {
			t.Errorf("ValidationLabels(%d, %d) = %q, want %q", c.must, c.reject, got, c.want)
		}
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	if _, err := r.Render("no-such-template", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestRendererFSOverride(t *testing.T) {
	fsys := fstest.MapFS{
		"system-prompt.tmpl": &fstest.MapFile{
			Data: []byte("Custom prompt for {{.InterviewType}}"),
		},
	}
	r, err := NewRendererFS(fsys)
	if err != nil {
		t.Fatalf("NewRendererFS: %v", err)
	}
	out, err := r.Render(SystemPrompt, SystemPromptData{InterviewType: "Quiz"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "Custom prompt for Quiz" {
		t.Errorf("override output = %q", out)
	}
}
