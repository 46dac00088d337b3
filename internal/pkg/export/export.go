// Package export renders a conversation record to downloadable
// documents: the collected results plus the visible transcript.
package export

import "fmt"

// Format selects an output document type.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
)

// Document is the exportable record of one conversation.
type Document struct {
	// Title heads the document; empty defaults to "Interview".
	Title string
	// Results is the pretty-printed field record.
	Results string
	// Transcript holds the user-visible exchange in order.
	Transcript []Turn
}

// Turn is one visible transcript line.
type Turn struct {
	Speaker string
	Text    string
}

func (d *Document) title() string {
	if d.Title == "" {
		return "Interview"
	}
	return d.Title
}

type Formatter interface {
	Format(doc *Document) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format Format) (Formatter, error) {
	switch format {
	case FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case FormatDOCX:
		return NewDOCXFormatter(), nil
	case FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
