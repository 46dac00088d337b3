package export

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", doc.title())

	if len(doc.Transcript) > 0 {
		buf.WriteString("\n## Transcript\n\n")
		for _, turn := range doc.Transcript {
			fmt.Fprintf(&buf, "**%s**: %s\n\n", turn.Speaker, turn.Text)
		}
	}

	if doc.Results != "" {
		// The record is pre-formatted indented text, so it goes in a
		// code fence.
		buf.WriteString("## Results\n\n```\n")
		buf.WriteString(strings.TrimRight(doc.Results, "\n"))
		buf.WriteString("\n```\n")
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
