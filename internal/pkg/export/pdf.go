package export

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// Relative paths where the TTF font may live: next to the binary,
	// or source-relative when running from the repo root.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/export/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// resolveFontPath tries to find the DejaVuSans font in runtime layout
// (next to the binary) or source layout.
func resolveFontPath() string {
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}
	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}
	return ""
}

func (pf *PDFFormatter) Format(doc *Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Use the UTF-8 capable DejaVuSans font when bundled; the built-in
	// core font only covers latin-1.
	fontName := "Arial"
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
	}

	pdf.SetFont(fontName, "B", 20)
	pdf.Cell(0, 10, doc.title())
	pdf.Ln(14)

	_, lineHeight := pdf.GetFontSize()

	if len(doc.Transcript) > 0 {
		pdf.SetFont(fontName, "B", 14)
		pdf.Cell(0, 8, "Transcript")
		pdf.Ln(10)
		for _, turn := range doc.Transcript {
			pdf.SetFont(fontName, "B", 12)
			pdf.MultiCell(0, lineHeight*1.5, turn.Speaker, "", "", false)
			pdf.SetFont(fontName, "", 12)
			pdf.MultiCell(0, lineHeight*1.5, turn.Text, "", "", false)
			pdf.Ln(2)
		}
		pdf.Ln(4)
	}

	if doc.Results != "" {
		pdf.SetFont(fontName, "B", 14)
		pdf.Cell(0, 8, "Results")
		pdf.Ln(10)
		pdf.SetFont(fontName, "", 12)
		pdf.MultiCell(0, lineHeight*1.5, doc.Results, "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
