package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Reporte"

// XLSXExporter renders datasets into a one-sheet workbook. Cells that parse
// as numbers are stored as numbers.
type XLSXExporter struct{}

// NewXLSXExporter constructs an Excel exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *XLSXExporter) Extension() string { return "xlsx" }

// Render writes the title on row 1 (when set), headers on the next row and
// the data below.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	row := 1
	if data.Title != "" {
		if err := f.SetCellValue(xlsxSheet, "A1", data.Title); err != nil {
			return nil, fmt.Errorf("write title: %w", err)
		}
		row = 2
	}

	for i, header := range data.Headers {
		ref, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(xlsxSheet, ref, header); err != nil {
			return nil, fmt.Errorf("write header %s: %w", ref, err)
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(data.Headers), row)
	if err := f.SetCellStyle(xlsxSheet, first, last, bold); err != nil {
		return nil, fmt.Errorf("style headers: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(data.Headers))
	if err := f.SetColWidth(xlsxSheet, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	for _, values := range data.Rows {
		row++
		for i := range data.Headers {
			ref, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(xlsxSheet, ref, typed(data.cell(values, i))); err != nil {
				return nil, fmt.Errorf("write cell %s: %w", ref, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func typed(value string) interface{} {
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n
	}
	return value
}
