package reports

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMarginMM   = 10.0
	pdfHeaderSize = 14.0
	pdfBodySize   = 8.0
	pdfRowHeight  = 5.0
)

// PDFRenderer renders documents as landscape A4 PDF.
type PDFRenderer struct{}

// NewPDFRenderer creates the PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

var _ Renderer = (*PDFRenderer)(nil)

// Render produces the PDF bytes for the document.
func (r *PDFRenderer) Render(doc *Document) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMarginMM, pdfMarginMM, pdfMarginMM)
	pdf.SetAutoPageBreak(true, pdfMarginMM+pdfRowHeight)

	widths := r.columnWidths(pdf, doc.Columns)

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", pdfHeaderSize)
		pdf.CellFormat(0, 7, doc.Title, "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", pdfBodySize+1)
		pdf.CellFormat(0, 5, doc.Company, "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 5, doc.Period, "", 1, "C", false, 0, "")
		pdf.Ln(2)
		r.columnHeader(pdf, doc.Columns, widths)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMarginMM - 2)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "", pdfBodySize)

	for _, section := range doc.Sections {
		if section.Title != "" {
			pdf.SetFont("Helvetica", "B", pdfBodySize)
			pdf.CellFormat(0, pdfRowHeight+1, section.Title, "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", pdfBodySize)
		}
		for _, row := range section.Rows {
			r.bodyRow(pdf, doc.Columns, widths, row, false)
		}
		if section.TotalRow != nil {
			r.bodyRow(pdf, doc.Columns, widths, section.TotalRow, true)
			pdf.Ln(1)
		}
	}
	if doc.GrandTotal != nil {
		pdf.Ln(1)
		r.bodyRow(pdf, doc.Columns, widths, doc.GrandTotal, true)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths scales the relative column weights to the printable width.
func (r *PDFRenderer) columnWidths(pdf *fpdf.Fpdf, columns []Column) []float64 {
	pageW, _ := pdf.GetPageSize()
	printable := pageW - 2*pdfMarginMM

	total := 0.0
	for _, c := range columns {
		total += c.Width
	}
	if total == 0 {
		total = float64(len(columns))
	}

	widths := make([]float64, len(columns))
	for i, c := range columns {
		w := c.Width
		if w == 0 {
			w = 1
		}
		widths[i] = printable * w / total
	}
	return widths
}

func (r *PDFRenderer) columnHeader(pdf *fpdf.Fpdf, columns []Column, widths []float64) {
	pdf.SetFont("Helvetica", "B", pdfBodySize)
	pdf.SetFillColor(230, 230, 230)
	for i, c := range columns {
		pdf.CellFormat(widths[i], pdfRowHeight+1, c.Title, "1", 0, string(c.Align), true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", pdfBodySize)
}

func (r *PDFRenderer) bodyRow(pdf *fpdf.Fpdf, columns []Column, widths []float64, row []string, bold bool) {
	if bold {
		pdf.SetFont("Helvetica", "B", pdfBodySize)
		defer pdf.SetFont("Helvetica", "", pdfBodySize)
	}
	for i := range columns {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		pdf.CellFormat(widths[i], pdfRowHeight, val, "B", 0, string(columns[i].Align), false, 0, "")
	}
	pdf.Ln(-1)
}
