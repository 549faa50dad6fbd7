// Package reports holds the renderer-independent report model and the PDF
// and spreadsheet renderers that turn it into artifact bytes.
package reports

// Alignment positions cell content within a column.
type Alignment string

const (
	AlignLeft  Alignment = "L"
	AlignRight Alignment = "R"
)

// Column describes one column of a tabular report.
type Column struct {
	Title string
	// Width is the relative width weight. Renderers scale weights to the
	// page or sheet width.
	Width float64
	Align Alignment
}

// Section is one titled block of rows, e.g. all lines of one account in a
// general ledger. TotalRow, when non-nil, is rendered emphasized after the
// body rows.
type Section struct {
	Title    string
	Rows     [][]string
	TotalRow []string
}

// Document is a finished report ready to render. All amounts arrive already
// formatted as strings so both renderers emit identical values.
type Document struct {
	Title    string
	Company  string
	Period   string
	Columns  []Column
	Sections []Section
	// GrandTotal, when non-nil, closes the document after all sections.
	GrandTotal []string
}

// Renderer turns a document into artifact bytes of one format.
type Renderer interface {
	Render(doc *Document) ([]byte, error)
}
