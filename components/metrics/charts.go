package metrics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

var sharedChartCache = NewChartCache(5 * time.Minute)

// ChartData is the rendered payload handed to the dashboard view.
type ChartData map[string]any

// ChartContext carries everything a provider needs to render one chart.
type ChartContext struct {
	Definition ChartDefinition
	Viewer     ViewerContext
	View       DerivedView
}

// ChartProvider renders a chart for the supplied derived view.
type ChartProvider interface {
	Fetch(ctx context.Context, meta ChartContext) (ChartData, error)
}

// ProviderFunc adapts a plain function to the ChartProvider interface.
type ProviderFunc func(ctx context.Context, meta ChartContext) (ChartData, error)

// Fetch implements ChartProvider.
func (f ProviderFunc) Fetch(ctx context.Context, meta ChartContext) (ChartData, error) {
	return f(ctx, meta)
}

// ThemeResolver selects a chart theme per viewer.
type ThemeResolver func(ViewerContext) string

// ChartSeries is one plotted legend entry.
type ChartSeries struct {
	Name   string
	Points []ChartPoint
}

// ChartPoint is an individual labeled value.
type ChartPoint struct {
	Label string
	Value float64
}

// EChartsProvider renders server-side chart HTML for one chart kind.
type EChartsProvider struct {
	kind          string
	cache         RenderCache
	theme         string
	themeResolver ThemeResolver
	assetsHost    string
}

// EChartsProviderOption customizes provider behavior.
type EChartsProviderOption func(*EChartsProvider)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.theme = theme
	}
}

// WithChartThemeResolver resolves themes dynamically per viewer.
func WithChartThemeResolver(resolver ThemeResolver) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.themeResolver = resolver
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.assetsHost = host
	}
}

// NewEChartsProvider builds a provider for a specific chart kind.
func NewEChartsProvider(kind string, opts ...EChartsProviderOption) *EChartsProvider {
	p := &EChartsProvider{
		kind:  strings.ToLower(kind),
		cache: sharedChartCache,
		theme: types.ThemeWesteros,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Fetch converts a derived view into go-echarts markup.
func (p *EChartsProvider) Fetch(ctx context.Context, meta ChartContext) (ChartData, error) {
	title := meta.Definition.Name
	if title == "" {
		title = "Chart"
	}
	subtitle := windowSubtitle(meta.View.Filter)

	xAxis, series := p.buildSeries(meta.View)
	if len(series) == 0 {
		return nil, fmt.Errorf("metrics: chart %s has no series", meta.Definition.Code)
	}

	theme := p.resolveTheme(meta.Viewer)

	renderFn := func() (string, error) {
		return p.render(title, subtitle, xAxis, series, theme)
	}

	var (
		html string
		err  error
	)

	if p.cache != nil {
		key := fmt.Sprintf("%s:%s:%s:%s", meta.Definition.Code, p.kind, theme, datasetHash(meta.View))
		html, err = p.cache.GetOrRender(key, renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return nil, err
	}

	return ChartData{
		"chart_html": html,
		"chart_kind": p.kind,
		"title":      title,
		"subtitle":   subtitle,
		"theme":      theme,
	}, nil
}

// buildSeries maps the derived records into per-kind plot data.
func (p *EChartsProvider) buildSeries(view DerivedView) ([]string, []ChartSeries) {
	switch p.kind {
	case "pie":
		return nil, []ChartSeries{{Name: "Users by Region", Points: regionSharePoints(view.Records)}}
	case "bar":
		xAxis, points := dailyPoints(view.Records, func(rec MetricRecord) float64 {
			return float64(rec.Revenue)
		})
		return xAxis, []ChartSeries{{Name: "Revenue", Points: points}}
	default:
		xAxis, points := dailyPoints(view.Records, func(rec MetricRecord) float64 {
			return float64(rec.Users)
		})
		return xAxis, []ChartSeries{{Name: "Users", Points: points}}
	}
}

func (p *EChartsProvider) render(title, subtitle string, xAxis []string, series []ChartSeries, theme string) (string, error) {
	switch p.kind {
	case "bar":
		return p.renderBarChart(title, subtitle, xAxis, series, theme)
	case "line":
		return p.renderLineChart(title, subtitle, xAxis, series, theme)
	case "pie":
		return p.renderPieChart(title, subtitle, series, theme)
	default:
		return "", fmt.Errorf("metrics: unsupported chart kind: %s", p.kind)
	}
}

func (p *EChartsProvider) renderBarChart(title, subtitle string, xAxis []string, series []ChartSeries, theme string) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(p.globalChartOptions(title, subtitle, theme)...)
	bar.SetXAxis(xAxis)
	for _, s := range series {
		bar.AddSeries(s.Name, toBarData(s.Points))
	}
	return renderChart(bar)
}

func (p *EChartsProvider) renderLineChart(title, subtitle string, xAxis []string, series []ChartSeries, theme string) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(p.globalChartOptions(title, subtitle, theme)...)
	line.SetXAxis(xAxis)
	for _, s := range series {
		line.AddSeries(s.Name, toLineData(s.Points))
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return renderChart(line)
}

func (p *EChartsProvider) renderPieChart(title, subtitle string, series []ChartSeries, theme string) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(p.globalChartOptions(title, subtitle, theme)...)
	for _, s := range series {
		pie.AddSeries(s.Name, toPieData(s.Points))
	}
	return renderChart(pie)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *EChartsProvider) globalChartOptions(title, subtitle, theme string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
	}
}

func (p *EChartsProvider) resolveTheme(viewer ViewerContext) string {
	if p.themeResolver != nil {
		if theme := p.themeResolver(viewer); theme != "" {
			return theme
		}
	}
	if p.theme != "" {
		return p.theme
	}
	return types.ThemeWesteros
}

func windowSubtitle(filter FilterState) string {
	region := filter.Region
	if region == "" {
		region = RegionAll
	}
	return fmt.Sprintf("%s · last %d days", region, filter.WindowDays)
}

func dailyPoints(records []MetricRecord, value func(MetricRecord) float64) ([]string, []ChartPoint) {
	xAxis := make([]string, len(records))
	points := make([]ChartPoint, len(records))
	for i, rec := range records {
		label := rec.Date.Format(time.DateOnly)
		xAxis[i] = label
		points[i] = ChartPoint{Label: label, Value: value(rec)}
	}
	return xAxis, points
}

func regionSharePoints(records []MetricRecord) []ChartPoint {
	totals := map[string]float64{}
	for _, rec := range records {
		totals[rec.Region] += float64(rec.Users)
	}
	regions := make([]string, 0, len(totals))
	for region := range totals {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	points := make([]ChartPoint, len(regions))
	for i, region := range regions {
		points[i] = ChartPoint{Label: region, Value: totals[region]}
	}
	return points
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{
			Name:  point.Label,
			Value: point.Value,
		}
	}
	return data
}

func toLineData(points []ChartPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{
			Name:  point.Label,
			Value: point.Value,
		}
	}
	return data
}

func toPieData(points []ChartPoint) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := point.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{
			Name:  name,
			Value: point.Value,
		}
	}
	return data
}

func init() {
	RegisterChartHook(func(reg *Registry) error {
		kinds := map[string]string{
			ChartUsersTrend:   "line",
			ChartRevenueByDay: "bar",
			ChartRegionShare:  "pie",
		}
		for code, kind := range kinds {
			if _, ok := reg.Provider(code); ok {
				continue
			}
			if _, ok := reg.Definition(code); !ok {
				continue
			}
			if err := reg.RegisterProvider(code, NewEChartsProvider(kind)); err != nil {
				return err
			}
		}
		return nil
	})
}
