package export

import "fmt"

// CSVMIMEType is the content type declared for every CSV download.
const CSVMIMEType = "text/csv;charset=utf-8;"

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	text, err := data.Text()
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return []byte(text), nil
}
