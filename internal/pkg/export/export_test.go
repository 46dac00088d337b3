package export

import (
	"bytes"
	"strings"
	"testing"
)

func sampleDocument() *Document {
	return &Document{
		Title:   "Customer Survey",
		Results: "Customer Survey\n\nname: Alice\n    as_str: Alice\n",
		Transcript: []Turn{
			{Speaker: "Agent", Text: "Hi! What's your name?"},
			{Speaker: "User", Text: "I'm Alice"},
			{Speaker: "Agent", Text: "Thanks, Alice!"},
		},
	}
}

func TestFactoryCreate(t *testing.T) {
	factory := NewFactory()

	cases := []struct {
		format      Format
		contentType string
		extension   string
	}{
		{FormatMarkdown, "text/markdown; charset=utf-8", ".md"},
		{FormatPDF, "application/pdf", ".pdf"},
		{FormatDOCX, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", ".docx"},
	}
	for _, c := range cases {
		f, err := factory.Create(c.format)
		if err != nil {
			t.Fatalf("Create(%s): %v", c.format, err)
		}
		if f.ContentType() != c.contentType {
			t.Errorf("%s content type = %q, want %q", c.format, f.ContentType(), c.contentType)
		}
		if f.FileExtension() != c.extension {
			t.Errorf("%s extension = %q, want %q", c.format, f.FileExtension(), c.extension)
		}
	}

	if _, err := factory.Create("xlsx"); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestMarkdownFormat(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(sampleDocument())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"# Customer Survey",
		"## Transcript",
		"**Agent**: Hi! What's your name?",
		"**User**: I'm Alice",
		"## Results",
		"```\nCustomer Survey",
		"name: Alice",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q\n%s", want, text)
		}
	}
}

func TestMarkdownOmitsEmptySections(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(&Document{})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "# Interview") {
		t.Errorf("default title missing\n%s", text)
	}
	for _, absent := range []string{"## Transcript", "## Results"} {
		if strings.Contains(text, absent) {
			t.Errorf("empty document should not contain %q", absent)
		}
	}
}

func TestPDFFormat(t *testing.T) {
	out, err := NewPDFFormatter().Format(sampleDocument())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not look like a PDF: %q", out[:min(16, len(out))])
	}
}

func TestDOCXFormat(t *testing.T) {
	out, err := NewDOCXFormatter().Format(sampleDocument())
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	// A .docx file is a zip archive.
	if !bytes.HasPrefix(out, []byte("PK")) {
		t.Errorf("output does not look like a docx archive: %q", out[:min(16, len(out))])
	}
}
