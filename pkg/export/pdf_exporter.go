package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth  = 277.0 // A4 landscape minus margins
	lineHeight = 5.0
)

// PDFExporter renders datasets into a landscape table. Column widths are
// shared equally except for the widest column, which takes the remainder.
type PDFExporter struct {
	WideColumn int
}

// NewPDFExporter constructs a PDF exporter; wideColumn is the index of the
// column that should receive extra width (-1 for none).
func NewPDFExporter(wideColumn int) *PDFExporter {
	return &PDFExporter{WideColumn: wideColumn}
}

// Render creates the PDF document.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	widths := e.columnWidths(len(data.Columns))

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	pdf.SetFont("Arial", "B", 9)
	for i, col := range data.Columns {
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		lines := 1
		for i, cell := range row {
			if n := len(pdf.SplitLines([]byte(tr(cell)), widths[i]-2)); n > lines {
				lines = n
			}
		}
		height := float64(lines) * lineHeight
		x, y := pdf.GetXY()
		for i, cell := range row {
			pdf.Rect(x, y, widths[i], height, "D")
			pdf.MultiCell(widths[i], lineHeight, tr(cell), "", "L", false)
			x += widths[i]
			pdf.SetXY(x, y)
		}
		pdf.SetXY(10, y+height)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) ContentType() string { return "application/pdf" }

func (e *PDFExporter) Extension() string { return "pdf" }

func (e *PDFExporter) columnWidths(n int) []float64 {
	widths := make([]float64, n)
	if e.WideColumn < 0 || e.WideColumn >= n || n == 1 {
		for i := range widths {
			widths[i] = pageWidth / float64(n)
		}
		return widths
	}
	narrow := pageWidth / float64(n+2)
	for i := range widths {
		widths[i] = narrow
	}
	widths[e.WideColumn] = pageWidth - narrow*float64(n-1)
	return widths
}
