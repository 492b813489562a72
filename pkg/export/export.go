// Package export renders tabular and calendar documents for download.
package export

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned when a dataset has no columns.
var ErrEmptyDataset = errors.New("dataset requires at least one header")

// Dataset is a titled table. Each row holds one cell per header, in order;
// short rows are padded with empty cells.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer turns a dataset into a file.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// Format names an export flavour.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// RendererFor returns the renderer registered for format.
func RendererFor(format Format) (Renderer, error) {
	switch format {
	case FormatCSV:
		return NewCSVExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	case FormatXLSX:
		return NewXLSXExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func (d Dataset) validate() error {
	if len(d.Headers) == 0 {
		return ErrEmptyDataset
	}
	return nil
}

func (d Dataset) cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}
