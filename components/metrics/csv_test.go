package metrics

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"
)

func TestWriteCSVHeaderAndRows(t *testing.T) {
	records := []MetricRecord{
		{Date: Day(2025, time.October, 1), Users: 120, Revenue: 2400, Region: "North"},
		{Date: Day(2025, time.October, 5), Users: 220, Revenue: 4700, Region: "North"},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV returned error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %#v", lines)
	}
	if lines[0] != "date,users,revenue,region" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "2025-10-01,120,2400,North" {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
}

func TestWriteCSVEmptyRecords(t *testing.T) {
	payload, err := ToCSV(nil)
	if err != nil {
		t.Fatalf("ToCSV returned error: %v", err)
	}
	if strings.TrimRight(payload, "\n") != "date,users,revenue,region" {
		t.Fatalf("expected header-only payload, got %q", payload)
	}
}

func TestWriteCSVEscapesSpecialCharacters(t *testing.T) {
	records := []MetricRecord{
		{Date: Day(2025, time.October, 1), Users: 1, Revenue: 2, Region: `North, "Coastal"` + "\nZone"},
	}
	payload, err := ToCSV(records)
	if err != nil {
		t.Fatalf("ToCSV returned error: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(payload)).ReadAll()
	if err != nil {
		t.Fatalf("parsing generated CSV failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus 1 row, got %#v", rows)
	}
	if rows[1][3] != records[0].Region {
		t.Fatalf("region did not round trip: %q", rows[1][3])
	}
}
