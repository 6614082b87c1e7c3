package metrics

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
)

var errMissingService = errors.New("metrics: service not configured")

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// ControllerOptions wires the service and renderer into a controller.
type ControllerOptions struct {
	Service  *Service
	Renderer Renderer
}

// Controller orchestrates HTTP handlers/routes for the admin metrics page.
type Controller struct {
	service  *Service
	renderer Renderer
}

// NewController builds a controller, defaulting to the built-in HTML renderer.
func NewController(opts ControllerOptions) *Controller {
	renderer := opts.Renderer
	if renderer == nil {
		renderer = NewHTMLRenderer()
	}
	return &Controller{service: opts.Service, renderer: renderer}
}

// DashboardView is the template payload for the admin metrics page.
type DashboardView struct {
	Viewer   ViewerContext
	Filter   FilterState
	Regions  []string
	Windows  []int
	Totals   struct{ Users, Revenue int }
	Records  []MetricRecord
	Charts   []RenderedChart
	CanAdmin bool
	Notice   string
}

// Render resolves the snapshot for a viewer and renders the dashboard page.
func (c *Controller) Render(ctx context.Context, viewer ViewerContext, filter FilterState, notice string) (string, error) {
	if c.service == nil {
		return "", errMissingService
	}
	snapshot, err := c.service.Snapshot(ctx, viewer, filter)
	if err != nil {
		return "", err
	}
	view := DashboardView{
		Viewer:   viewer,
		Filter:   snapshot.View.Filter,
		Regions:  append([]string{RegionAll}, snapshot.Regions...),
		Windows:  append([]int(nil), SupportedWindows...),
		Records:  snapshot.View.Records,
		Charts:   snapshot.Charts,
		CanAdmin: viewer.Role == RoleAdmin,
		Notice:   notice,
	}
	view.Totals.Users = snapshot.View.TotalUsers
	view.Totals.Revenue = snapshot.View.TotalRevenue
	return c.renderer.Render("dashboard", view, nil)
}

// Snapshot exposes the service snapshot for JSON transports.
func (c *Controller) Snapshot(ctx context.Context, viewer ViewerContext, filter FilterState) (Snapshot, error) {
	if c.service == nil {
		return Snapshot{}, errMissingService
	}
	return c.service.Snapshot(ctx, viewer, filter)
}

// HTMLRenderer renders the built-in dashboard page with html/template.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer compiles the built-in dashboard template.
func NewHTMLRenderer() *HTMLRenderer {
	tmpl := template.Must(template.New("dashboard").Funcs(template.FuncMap{
		"chartHTML": func(data ChartData) template.HTML {
			html, _ := data["chart_html"].(string)
			return template.HTML(html)
		},
		"dateOnly": func(rec MetricRecord) string {
			if rec.Date.IsZero() {
				return ""
			}
			return rec.Date.Format("2006-01-02")
		},
	}).Parse(dashboardTemplate))
	return &HTMLRenderer{tmpl: tmpl}
}

// Render executes the named template into out (if given) and returns the markup.
func (r *HTMLRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	if len(out) > 0 && out[0] != nil {
		if _, err := io.Copy(out[0], bytes.NewReader(buf.Bytes())); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>Admin Metrics</title>
    <style>
      body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; background: #f4f5f7; margin: 0; }
      header { background: #1f2937; color: white; padding: 1.5rem 2rem; display: flex; justify-content: space-between; align-items: center; }
      header p { margin: 0.25rem 0 0; color: #d1d5db; }
      .content { padding: 2rem; display: grid; gap: 1.5rem; }
      section.panel { background: white; border-radius: 12px; box-shadow: 0 2px 8px rgba(31,41,55,0.12); padding: 1.5rem; }
      section.panel h2 { margin-top: 0; font-size: 1.1rem; text-transform: uppercase; letter-spacing: 0.08em; color: #6b7280; }
      .metrics { display: flex; gap: 1rem; }
      .metric { flex: 1; background: #fafafa; border-radius: 8px; padding: 0.75rem; text-align: center; }
      .metric span { display: block; font-size: 1.4rem; font-weight: bold; }
      .filters { display: flex; gap: 1rem; align-items: center; }
      table { width: 100%; border-collapse: collapse; }
      th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #e5e7eb; }
      .actions { display: flex; gap: 0.5rem; }
      .actions button, .actions a { background: #2563eb; color: white; border: none; padding: 0.5rem 1rem; border-radius: 6px; font-size: 0.9rem; text-decoration: none; cursor: pointer; }
      .notice { background: #fef3c7; border: 1px solid #f59e0b; border-radius: 8px; padding: 0.75rem 1rem; }
    </style>
  </head>
  <body>
    <header>
      <div>
        <h1>Admin Metrics</h1>
        <p>Signed in as {{ .Viewer.UserID }} ({{ .Viewer.Role }})</p>
      </div>
      <form method="post" action="/admin/logout"><button type="submit">Log out</button></form>
    </header>
    <div class="content">
      {{ if .Notice }}<div class="notice">{{ .Notice }}</div>{{ end }}
      <section class="panel">
        <h2>Filters</h2>
        <form method="get" action="/admin/dashboard" class="filters">
          <label>Region
            <select name="region">
              {{ $selected := .Filter.Region }}
              {{ range .Regions }}
                <option value="{{ . }}"{{ if eq . $selected }} selected{{ end }}>{{ . }}</option>
              {{ end }}
            </select>
          </label>
          <label>Window
            <select name="window_days">
              {{ $days := .Filter.WindowDays }}
              {{ range .Windows }}
                <option value="{{ . }}"{{ if eq . $days }} selected{{ end }}>Last {{ . }} days</option>
              {{ end }}
            </select>
          </label>
          <button type="submit">Apply</button>
        </form>
      </section>
      <section class="panel">
        <h2>Totals</h2>
        <div class="metrics">
          <div class="metric"><small>Users</small><span>{{ .Totals.Users }}</span></div>
          <div class="metric"><small>Revenue</small><span>{{ .Totals.Revenue }}</span></div>
        </div>
      </section>
      {{ range .Charts }}
        <section class="panel">
          <h2>{{ .Definition.Name }}</h2>
          {{ chartHTML .Data }}
        </section>
      {{ end }}
      <section class="panel">
        <h2>Records</h2>
        <table>
          <thead><tr><th>Date</th><th>Users</th><th>Revenue</th><th>Region</th></tr></thead>
          <tbody>
            {{ range .Records }}
              <tr><td>{{ dateOnly . }}</td><td>{{ .Users }}</td><td>{{ .Revenue }}</td><td>{{ .Region }}</td></tr>
            {{ else }}
              <tr><td colspan="4">No records in the selected window.</td></tr>
            {{ end }}
          </tbody>
        </table>
      </section>
      <section class="panel">
        <h2>Actions</h2>
        <div class="actions">
          <a href="/admin/dashboard/export.csv?region={{ .Filter.Region }}&window_days={{ .Filter.WindowDays }}">Export CSV</a>
          {{ if .CanAdmin }}
            <form method="post" action="/admin/dashboard/actions/sync"><button type="submit">Sync Database</button></form>
            <form method="post" action="/admin/dashboard/actions/harden"><button type="submit">Harden Security</button></form>
          {{ end }}
        </div>
      </section>
    </div>
  </body>
</html>
`
