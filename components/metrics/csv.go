package metrics

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

const (
	// ExportFilename is the suggested name for the CSV download.
	ExportFilename = "metrics.csv"
	// ExportContentType is the MIME type served with the export.
	ExportContentType = "text/csv; charset=utf-8"
)

// ExportColumns is the fixed CSV column order.
var ExportColumns = []string{"date", "users", "revenue", "region"}

// WriteCSV writes records as RFC 4180 CSV: header row first, fields
// containing commas, quotes, or newlines quoted with doubled internal
// quotes. Zero-valued dates serialize as the empty string, never a
// literal placeholder.
func WriteCSV(w io.Writer, records []MetricRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return fmt.Errorf("metrics: write csv header: %w", err)
	}
	for _, rec := range records {
		date := ""
		if !rec.Date.IsZero() {
			date = rec.Date.Format("2006-01-02")
		}
		row := []string{
			date,
			strconv.Itoa(rec.Users),
			strconv.Itoa(rec.Revenue),
			rec.Region,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("metrics: write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("metrics: flush csv: %w", err)
	}
	return nil
}

// ToCSV renders records to a CSV string.
func ToCSV(records []MetricRecord) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return "", err
	}
	return buf.String(), nil
}
