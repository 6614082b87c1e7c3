package metrics

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// RegionAll is the sentinel that disables region filtering.
const RegionAll = "All"

// SupportedWindows lists the trailing-day window sizes the filter accepts.
var SupportedWindows = []int{7, 30}

// ErrUnsupportedWindow signals a window size outside SupportedWindows.
var ErrUnsupportedWindow = errors.New("metrics: unsupported window size")

// SupportedWindow reports whether days is an accepted window size.
func SupportedWindow(days int) bool {
	for _, w := range SupportedWindows {
		if w == days {
			return true
		}
	}
	return false
}

// Derive computes the filtered, time-windowed, chronologically sorted view
// of raw. The trailing window is anchored to the latest date within the
// region-filtered subset, not the full dataset. Ties on date keep their
// original relative order. Derive never mutates raw.
func Derive(raw []MetricRecord, region string, windowDays int) ([]MetricRecord, error) {
	if !SupportedWindow(windowDays) {
		return nil, fmt.Errorf("%w: %d days", ErrUnsupportedWindow, windowDays)
	}
	kept := make([]MetricRecord, 0, len(raw))
	for _, rec := range raw {
		if region == RegionAll || region == "" || rec.Region == region {
			kept = append(kept, rec)
		}
	}
	if len(kept) == 0 {
		return kept, nil
	}

	latest := kept[0].Date
	for _, rec := range kept[1:] {
		if rec.Date.After(latest) {
			latest = rec.Date
		}
	}
	cutoff := latest.AddDate(0, 0, -(windowDays - 1))

	out := make([]MetricRecord, 0, len(kept))
	for _, rec := range kept {
		if !rec.Date.Before(cutoff) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// DeriveView applies a FilterState and wraps the result with its totals.
func DeriveView(raw []MetricRecord, filter FilterState) (DerivedView, error) {
	records, err := Derive(raw, filter.Region, filter.WindowDays)
	if err != nil {
		return DerivedView{}, err
	}
	users, revenue := Totals(records)
	return DerivedView{
		Records:      records,
		Filter:       filter,
		TotalUsers:   users,
		TotalRevenue: revenue,
	}, nil
}

// DerivedView is the recomputed-on-demand output consumed by charts,
// tables, and CSV export. It is never persisted.
type DerivedView struct {
	Records      []MetricRecord `json:"records"`
	Filter       FilterState    `json:"filter"`
	TotalUsers   int            `json:"total_users"`
	TotalRevenue int            `json:"total_revenue"`
}

// Totals sums users and revenue over records.
func Totals(records []MetricRecord) (users, revenue int) {
	for _, rec := range records {
		users += rec.Users
		revenue += rec.Revenue
	}
	return users, revenue
}

// Regions returns the distinct regions present in raw, sorted, useful for
// populating filter choices. RegionAll is not included.
func Regions(raw []MetricRecord) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 4)
	for _, rec := range raw {
		if rec.Region == "" {
			continue
		}
		if _, ok := seen[rec.Region]; ok {
			continue
		}
		seen[rec.Region] = struct{}{}
		out = append(out, rec.Region)
	}
	sort.Strings(out)
	return out
}

// Day truncates t to UTC day precision, the granularity of MetricRecord.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
