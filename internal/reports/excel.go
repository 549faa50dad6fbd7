package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const excelSheet = "Report"

// ExcelRenderer renders documents as OOXML spreadsheets. The artifact always
// carries the .xlsx extension regardless of the legacy "xls" format alias.
type ExcelRenderer struct{}

// NewExcelRenderer creates the spreadsheet renderer.
func NewExcelRenderer() *ExcelRenderer {
	return &ExcelRenderer{}
}

var _ Renderer = (*ExcelRenderer)(nil)

// Render produces the xlsx bytes for the document.
func (r *ExcelRenderer) Render(doc *Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), excelSheet)

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("failed to build title style: %w", err)
	}
	headStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6E6"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build header style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to build total style: %w", err)
	}

	rowIdx := 1
	setRow := func(values []string, style int) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = v
		}
		if err := f.SetSheetRow(excelSheet, cell, &cells); err != nil {
			return err
		}
		if style != 0 {
			end, err := excelize.CoordinatesToCellName(len(doc.Columns), rowIdx)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(excelSheet, cell, end, style); err != nil {
				return err
			}
		}
		rowIdx++
		return nil
	}

	if err := setRow([]string{doc.Title}, titleStyle); err != nil {
		return nil, fmt.Errorf("failed to write title: %w", err)
	}
	if err := setRow([]string{doc.Company}, 0); err != nil {
		return nil, fmt.Errorf("failed to write company: %w", err)
	}
	if err := setRow([]string{doc.Period}, 0); err != nil {
		return nil, fmt.Errorf("failed to write period: %w", err)
	}
	rowIdx++

	headers := make([]string, len(doc.Columns))
	for i, c := range doc.Columns {
		headers[i] = c.Title
	}
	if err := setRow(headers, headStyle); err != nil {
		return nil, fmt.Errorf("failed to write column header: %w", err)
	}

	for _, section := range doc.Sections {
		if section.Title != "" {
			if err := setRow([]string{section.Title}, boldStyle); err != nil {
				return nil, fmt.Errorf("failed to write section title: %w", err)
			}
		}
		for _, row := range section.Rows {
			if err := setRow(row, 0); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
		if section.TotalRow != nil {
			if err := setRow(section.TotalRow, boldStyle); err != nil {
				return nil, fmt.Errorf("failed to write section total: %w", err)
			}
		}
	}
	if doc.GrandTotal != nil {
		rowIdx++
		if err := setRow(doc.GrandTotal, boldStyle); err != nil {
			return nil, fmt.Errorf("failed to write grand total: %w", err)
		}
	}

	for i := range doc.Columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		width := 12.0 + doc.Columns[i].Width*4
		if err := f.SetColWidth(excelSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
