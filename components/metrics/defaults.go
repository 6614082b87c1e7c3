package metrics

import (
	"github.com/go-echarts/go-echarts/v2/types"
)

// Chart codes for the built-in dashboard charts.
const (
	ChartUsersTrend   = "admin.chart.users_trend"
	ChartRevenueByDay = "admin.chart.revenue_by_day"
	ChartRegionShare  = "admin.chart.region_share"
)

// DefaultFilter is the filter applied before the viewer picks one.
var DefaultFilter = FilterState{Region: RegionAll, WindowDays: 7}

var defaultChartDefinitions = []ChartDefinition{
	{
		Code:        ChartUsersTrend,
		Name:        "Users Over Time",
		Description: "Daily active users across the selected window.",
		Kind:        "line",
		Schema:      chartConfigSchema(),
	},
	{
		Code:        ChartRevenueByDay,
		Name:        "Revenue by Day",
		Description: "Daily revenue across the selected window.",
		Kind:        "bar",
		Schema:      chartConfigSchema(),
	},
	{
		Code:        ChartRegionShare,
		Name:        "Users by Region",
		Description: "Share of users contributed by each region.",
		Kind:        "pie",
		Schema:      chartConfigSchema(),
	},
}

func chartConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type": "string",
			},
			"subtitle": map[string]any{
				"type": "string",
			},
			"theme": map[string]any{
				"type": "string",
				"enum": []string{
					string(types.ThemeWesteros),
					string(types.ThemeWalden),
					string(types.ThemeWonderland),
					string(types.ThemeChalk),
				},
			},
			"assets_host": map[string]any{
				"type": "string",
			},
		},
		"additionalProperties": false,
	}
}

// FilterSchema constrains the region/window selection coming off the wire.
func FilterSchema() map[string]any {
	windows := make([]any, len(SupportedWindows))
	for i, days := range SupportedWindows {
		windows[i] = days
	}
	return map[string]any{
		"type":     "object",
		"required": []string{"window_days"},
		"properties": map[string]any{
			"region": map[string]any{
				"type":    "string",
				"default": RegionAll,
			},
			"window_days": map[string]any{
				"type": "integer",
				"enum": windows,
			},
		},
		"additionalProperties": false,
	}
}

// DefaultChartDefinitions returns copies of the built-in chart definitions.
func DefaultChartDefinitions() []ChartDefinition {
	out := make([]ChartDefinition, len(defaultChartDefinitions))
	copy(out, defaultChartDefinitions)
	return out
}
