package metrics

import (
	"context"
	"errors"
	"time"
)

var (
	errMissingSource = errors.New("metrics: source not configured")
	errMissingViewer = errors.New("metrics: viewer context missing user id")
)

// Options configures the metrics Service. Every collaborator is provided via
// interface so applications can swap implementations without importing
// internal packages.
type Options struct {
	Source          Source
	Authorizer      Authorizer
	Charts          *Registry
	ConfigValidator ConfigValidator
	FilterStore     FilterStore
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Audit           *AuditTrail
	Clock           func() time.Time
}

// Service orchestrates metric derivation, chart rendering, and gated actions.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Authorizer == nil {
		opts.Authorizer = RoleAuthorizer{}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Charts == nil {
		opts.Charts = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.FilterStore == nil {
		opts.FilterStore = NewInMemoryFilterStore()
	}
	if opts.Audit == nil {
		opts.Audit = NewAuditTrail(0)
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{opts: opts}
}

// RenderedChart pairs a chart definition with its rendered payload.
type RenderedChart struct {
	Definition ChartDefinition `json:"definition"`
	Data       ChartData       `json:"data"`
}

// Snapshot is everything the dashboard view needs for one filter selection.
type Snapshot struct {
	View    DerivedView     `json:"view"`
	Regions []string        `json:"regions"`
	Charts  []RenderedChart `json:"charts"`
}

// Snapshot fetches the dataset, derives the filtered view, and renders every
// registered chart for it.
func (s *Service) Snapshot(ctx context.Context, viewer ViewerContext, filter FilterState) (Snapshot, error) {
	view, raw, err := s.deriveView(ctx, filter)
	if err != nil {
		return Snapshot{}, err
	}
	snapshot := Snapshot{
		View:    view,
		Regions: Regions(raw),
	}
	for _, def := range s.chartOrder() {
		provider, ok := s.opts.Charts.Provider(def.Code)
		if !ok || provider == nil {
			continue
		}
		data, err := provider.Fetch(ctx, ChartContext{
			Definition: def,
			Viewer:     viewer,
			View:       view,
		})
		if err != nil {
			s.recordTelemetry(ctx, "metrics.chart.provider_error", map[string]any{
				"chart": def.Code,
				"error": err.Error(),
			})
			continue
		}
		snapshot.Charts = append(snapshot.Charts, RenderedChart{Definition: def, Data: data})
	}
	s.recordTelemetry(ctx, "metrics.snapshot", map[string]any{
		"viewer":      viewer.UserID,
		"region":      view.Filter.Region,
		"window_days": view.Filter.WindowDays,
		"records":     len(view.Records),
	})
	return snapshot, nil
}

// View derives the filtered record view without rendering charts.
func (s *Service) View(ctx context.Context, filter FilterState) (DerivedView, error) {
	view, _, err := s.deriveView(ctx, filter)
	return view, err
}

func (s *Service) deriveView(ctx context.Context, filter FilterState) (DerivedView, []MetricRecord, error) {
	source, err := s.source()
	if err != nil {
		return DerivedView{}, nil, err
	}
	raw, err := source.FetchMetrics(ctx)
	if err != nil {
		return DerivedView{}, nil, err
	}
	view, err := DeriveView(raw, filter)
	if err != nil {
		return DerivedView{}, nil, err
	}
	return view, raw, nil
}

// ExportCSV renders the viewer's current selection as CSV. Non-admin viewers
// are denied with an explicit reason and the attempt is audited either way.
func (s *Service) ExportCSV(ctx context.Context, viewer ViewerContext, filter FilterState) ([]byte, error) {
	view, _, err := s.deriveView(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, viewer, ActionExportCSV); err != nil {
		return nil, err
	}
	payload, err := ToCSV(view.Records)
	if err != nil {
		return nil, err
	}
	s.recordTelemetry(ctx, "metrics.export.csv", map[string]any{
		"viewer":  viewer.UserID,
		"region":  view.Filter.Region,
		"records": len(view.Records),
	})
	return []byte(payload), nil
}

// SyncDatabase is an admin-only action that refreshes the dataset downstream.
func (s *Service) SyncDatabase(ctx context.Context, viewer ViewerContext) error {
	if err := s.authorize(ctx, viewer, ActionSyncDatabase); err != nil {
		return err
	}
	event := RefreshEvent{
		Reason: "sync",
		At:     s.opts.Clock(),
	}
	if err := s.opts.RefreshHook.DatasetRefreshed(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "metrics.action.sync", map[string]any{"viewer": viewer.UserID})
	return nil
}

// HardenSecurity is an admin-only action recorded for the audit trail.
func (s *Service) HardenSecurity(ctx context.Context, viewer ViewerContext) error {
	if err := s.authorize(ctx, viewer, ActionHardenSecurity); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "metrics.action.harden", map[string]any{"viewer": viewer.UserID})
	return nil
}

// SaveFilter persists the viewer's region/window selection.
func (s *Service) SaveFilter(ctx context.Context, viewer ViewerContext, filter FilterState) error {
	if viewer.UserID == "" {
		return errMissingViewer
	}
	if !SupportedWindow(filter.WindowDays) {
		return ErrUnsupportedWindow
	}
	if err := s.opts.FilterStore.SaveFilter(ctx, viewer, filter); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "metrics.filter.save", map[string]any{
		"viewer":      viewer.UserID,
		"region":      filter.Region,
		"window_days": filter.WindowDays,
	})
	return nil
}

// SavedFilter returns the viewer's stored selection or the default filter.
func (s *Service) SavedFilter(ctx context.Context, viewer ViewerContext) FilterState {
	filter, ok, err := s.opts.FilterStore.SavedFilter(ctx, viewer)
	if err != nil || !ok {
		return DefaultFilter
	}
	return filter
}

// NotifyDatasetRefreshed exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyDatasetRefreshed(ctx context.Context, event RefreshEvent) error {
	if event.At.IsZero() {
		event.At = s.opts.Clock()
	}
	if err := s.opts.RefreshHook.DatasetRefreshed(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "metrics.dataset.event", map[string]any{
		"reason": event.Reason,
	})
	return nil
}

// RecentActivity returns the latest audited privileged-action attempts.
func (s *Service) RecentActivity(limit int) []AuditEntry {
	return s.opts.Audit.Recent(limit)
}

// Charts exposes the registry so transports can list definitions.
func (s *Service) Charts() *Registry {
	return s.opts.Charts
}

// ValidateChartConfig checks a chart configuration against its schema.
func (s *Service) ValidateChartConfig(code string, config map[string]any) error {
	def, ok := s.opts.Charts.Definition(code)
	if !ok {
		return nil
	}
	return s.opts.ConfigValidator.Validate(def, config)
}

func (s *Service) authorize(ctx context.Context, viewer ViewerContext, action Action) error {
	err := s.opts.Authorizer.Authorize(ctx, viewer, action)
	entry := AuditEntry{
		UserID:  viewer.UserID,
		Role:    viewer.Role,
		Action:  action,
		Granted: err == nil,
		At:      s.opts.Clock(),
	}
	if err != nil {
		var denial *AccessError
		if errors.As(err, &denial) {
			entry.Reason = denial.Reason
		} else {
			entry.Reason = err.Error()
		}
	}
	s.opts.Audit.Record(entry)
	if err != nil {
		s.recordTelemetry(ctx, "metrics.access.denied", map[string]any{
			"viewer": viewer.UserID,
			"action": string(action),
			"reason": entry.Reason,
		})
	}
	return err
}

func (s *Service) source() (Source, error) {
	if s.opts.Source == nil {
		return nil, errMissingSource
	}
	return s.opts.Source, nil
}

func (s *Service) chartOrder() []ChartDefinition {
	var out []ChartDefinition
	for _, code := range []string{ChartUsersTrend, ChartRevenueByDay, ChartRegionShare} {
		if def, ok := s.opts.Charts.Definition(code); ok {
			out = append(out, def)
		}
	}
	seen := make(map[string]struct{}, len(out))
	for _, def := range out {
		seen[def.Code] = struct{}{}
	}
	for _, def := range s.opts.Charts.Definitions() {
		if _, ok := seen[def.Code]; !ok {
			out = append(out, def)
		}
	}
	return out
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

type noopRefreshHook struct{}

func (noopRefreshHook) DatasetRefreshed(context.Context, RefreshEvent) error {
	return nil
}
