package metrics

import (
	"context"
	"fmt"
	"time"
)

// DemoDataset returns the fixed seven-day sample dataset used by the demo
// source, the seed command, and tests.
func DemoDataset() []MetricRecord {
	return []MetricRecord{
		{Date: Day(2025, time.October, 1), Users: 120, Revenue: 2400, Region: "North"},
		{Date: Day(2025, time.October, 2), Users: 150, Revenue: 3100, Region: "South"},
		{Date: Day(2025, time.October, 3), Users: 90, Revenue: 1800, Region: "East"},
		{Date: Day(2025, time.October, 4), Users: 180, Revenue: 3900, Region: "West"},
		{Date: Day(2025, time.October, 5), Users: 220, Revenue: 4700, Region: "North"},
		{Date: Day(2025, time.October, 6), Users: 160, Revenue: 3300, Region: "South"},
		{Date: Day(2025, time.October, 7), Users: 130, Revenue: 2600, Region: "East"},
	}
}

// StaticSource serves a fixed in-memory dataset after an artificial delay,
// standing in for a remote metrics API. The delay honors ctx cancellation;
// there is at most one fetch per view so no retry or deduplication exists.
type StaticSource struct {
	Records []MetricRecord
	Delay   time.Duration
}

// NewDemoSource builds a StaticSource over DemoDataset with a small
// simulated network delay.
func NewDemoSource() *StaticSource {
	return &StaticSource{
		Records: DemoDataset(),
		Delay:   150 * time.Millisecond,
	}
}

// FetchMetrics returns a copy of the dataset once the delay elapses.
func (s *StaticSource) FetchMetrics(ctx context.Context) ([]MetricRecord, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("metrics: fetch canceled: %w", ctx.Err())
		case <-timer.C:
		}
	}
	out := make([]MetricRecord, len(s.Records))
	copy(out, s.Records)
	return out, nil
}
