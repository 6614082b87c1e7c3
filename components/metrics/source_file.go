package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// FileSource loads the raw dataset from a JSON file on every fetch, so
// edits to the file show up on the next dashboard load.
type FileSource struct {
	Path string
}

// NewFileSource builds a source over the given dataset file.
func NewFileSource(path string) (*FileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("metrics: dataset path is required")
	}
	return &FileSource{Path: path}, nil
}

// FetchMetrics implements Source by reading and decoding the dataset file.
func (s *FileSource) FetchMetrics(ctx context.Context) ([]MetricRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("metrics: fetch canceled: %w", err)
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("metrics: read dataset %s: %w", s.Path, err)
	}
	var payload []metricRow
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("metrics: parse dataset %s: %w", s.Path, err)
	}
	records := make([]MetricRecord, len(payload))
	for i, row := range payload {
		parsed, err := time.Parse(time.DateOnly, row.Date)
		if err != nil {
			return nil, fmt.Errorf("metrics: parse record date %q: %w", row.Date, err)
		}
		records[i] = MetricRecord{
			Date:    parsed,
			Users:   row.Users,
			Revenue: row.Revenue,
			Region:  row.Region,
		}
	}
	return records, nil
}
