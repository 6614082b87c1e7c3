package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartContextFor(t *testing.T, code string, filter FilterState) ChartContext {
	t.Helper()
	view, err := DeriveView(DemoDataset(), filter)
	require.NoError(t, err)
	reg := NewRegistry()
	def, ok := reg.Definition(code)
	require.True(t, ok)
	return ChartContext{
		Definition: def,
		Viewer:     ViewerContext{UserID: "user", Role: RoleUser},
		View:       view,
	}
}

func TestEChartsProviderRendersLineChart(t *testing.T) {
	provider := NewEChartsProvider("line", WithChartCache(nil))
	data, err := provider.Fetch(context.Background(), chartContextFor(t, ChartUsersTrend, FilterState{Region: RegionAll, WindowDays: 7}))
	require.NoError(t, err)

	html, _ := data["chart_html"].(string)
	assert.NotEmpty(t, html)
	assert.Contains(t, html, "2025-10-01")
	assert.Equal(t, "line", data["chart_kind"])
	assert.Equal(t, "Users Over Time", data["title"])
}

func TestEChartsProviderRendersPieShareByRegion(t *testing.T) {
	provider := NewEChartsProvider("pie", WithChartCache(nil))
	data, err := provider.Fetch(context.Background(), chartContextFor(t, ChartRegionShare, FilterState{Region: RegionAll, WindowDays: 7}))
	require.NoError(t, err)

	html, _ := data["chart_html"].(string)
	for _, region := range []string{"East", "North", "South", "West"} {
		assert.Contains(t, html, region)
	}
}

func TestEChartsProviderUsesCachePerFilter(t *testing.T) {
	cache := &countingCache{}
	provider := NewEChartsProvider("bar", WithChartCache(cache))
	meta := chartContextFor(t, ChartRevenueByDay, FilterState{Region: "North", WindowDays: 7})

	_, err := provider.Fetch(context.Background(), meta)
	require.NoError(t, err)
	_, err = provider.Fetch(context.Background(), meta)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.renders)

	other := chartContextFor(t, ChartRevenueByDay, FilterState{Region: "South", WindowDays: 7})
	_, err = provider.Fetch(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.renders)
}

func TestEChartsProviderRejectsUnknownKind(t *testing.T) {
	provider := NewEChartsProvider("gauge", WithChartCache(nil))
	_, err := provider.Fetch(context.Background(), chartContextFor(t, ChartUsersTrend, FilterState{Region: RegionAll, WindowDays: 7}))
	require.Error(t, err)
}

func TestRegistryHookRegistersBuiltInProviders(t *testing.T) {
	reg := NewRegistry()
	for _, code := range []string{ChartUsersTrend, ChartRevenueByDay, ChartRegionShare} {
		provider, ok := reg.Provider(code)
		require.True(t, ok, code)
		assert.NotNil(t, provider)
	}
}

type countingCache struct {
	renders int
	entries map[string]string
}

func (c *countingCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c.entries == nil {
		c.entries = map[string]string{}
	}
	if html, ok := c.entries[key]; ok {
		return html, nil
	}
	c.renders++
	html, err := render()
	if err != nil {
		return "", err
	}
	c.entries[key] = html
	return html, nil
}
