package export

import (
	"bytes"
	"strings"

	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(doc *Document) ([]byte, error) {
	d := document.New()
	defer d.Close()

	titlePar := d.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(doc.title())

	if len(doc.Transcript) > 0 {
		headPar := d.AddParagraph()
		headPar.SetStyle("Heading2")
		headPar.AddRun().AddText("Transcript")

		for _, turn := range doc.Transcript {
			par := d.AddParagraph()
			speaker := par.AddRun()
			speaker.Properties().SetBold(true)
			speaker.AddText(turn.Speaker + ": ")
			par.AddRun().AddText(turn.Text)
		}
	}

	if doc.Results != "" {
		headPar := d.AddParagraph()
		headPar.SetStyle("Heading2")
		headPar.AddRun().AddText("Results")

		// Word ignores newlines inside a run, so the record becomes one
		// paragraph per line.
		for _, line := range strings.Split(strings.TrimRight(doc.Results, "\n"), "\n") {
			d.AddParagraph().AddRun().AddText(line)
		}
	}

	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
