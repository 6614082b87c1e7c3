package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPSourceConfig configures the HTTP metrics source.
type HTTPSourceConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// HTTPSource fetches the raw dataset from a remote reporting endpoint.
// It is the live-wiring alternative to StaticSource; the dashboard core
// never depends on which one is plugged in.
type HTTPSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPSource builds a source for the given endpoint.
func NewHTTPSource(cfg HTTPSourceConfig) (*HTTPSource, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("metrics: base url is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  client,
	}, nil
}

// FetchMetrics implements Source by calling the remote metrics endpoint.
func (s *HTTPSource) FetchMetrics(ctx context.Context) ([]MetricRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/metrics", nil)
	if err != nil {
		return nil, fmt.Errorf("metrics: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metrics: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return nil, fmt.Errorf("metrics: remote error %d: %s", resp.StatusCode, buf.String())
	}
	var payload []metricRow
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("metrics: decode response: %w", err)
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

type metricRow struct {
	Date    string `json:"date"`
	Users   int    `json:"users"`
	Revenue int    `json:"revenue"`
	Region  string `json:"region"`
}
