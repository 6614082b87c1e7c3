package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"

	metrics "github.com/goliatone/go-metrics-admin/components/metrics"
	"github.com/goliatone/go-metrics-admin/components/metrics/commands"
)

// Executor is the command surface transports invoke. Implementations wrap
// the shared commands so routes never link against the service directly.
type Executor interface {
	Export(ctx context.Context, input commands.ExportCSVInput) error
	Sync(ctx context.Context, input commands.SyncDatabaseInput) error
	Harden(ctx context.Context, input commands.HardenSecurityInput) error
	Refresh(ctx context.Context, input commands.RefreshDatasetInput) error
	SaveFilter(ctx context.Context, input commands.SaveFilterInput) error
}

// CommandExecutor satisfies Executor with go-command commanders.
type CommandExecutor struct {
	ExportCommander  gocommand.Commander[commands.ExportCSVInput]
	SyncCommander    gocommand.Commander[commands.SyncDatabaseInput]
	HardenCommander  gocommand.Commander[commands.HardenSecurityInput]
	RefreshCommander gocommand.Commander[commands.RefreshDatasetInput]
	FilterCommander  gocommand.Commander[commands.SaveFilterInput]
}

var _ Executor = (*CommandExecutor)(nil)

func (e *CommandExecutor) Export(ctx context.Context, input commands.ExportCSVInput) error {
	if e.ExportCommander == nil {
		return errors.New("httpapi: export commander not configured")
	}
	return e.ExportCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Sync(ctx context.Context, input commands.SyncDatabaseInput) error {
	if e.SyncCommander == nil {
		return errors.New("httpapi: sync commander not configured")
	}
	return e.SyncCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Harden(ctx context.Context, input commands.HardenSecurityInput) error {
	if e.HardenCommander == nil {
		return errors.New("httpapi: harden commander not configured")
	}
	return e.HardenCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshDatasetInput) error {
	if e.RefreshCommander == nil {
		return errors.New("httpapi: refresh commander not configured")
	}
	return e.RefreshCommander.Execute(ctx, input)
}

func (e *CommandExecutor) SaveFilter(ctx context.Context, input commands.SaveFilterInput) error {
	if e.FilterCommander == nil {
		return errors.New("httpapi: filter commander not configured")
	}
	return e.FilterCommander.Execute(ctx, input)
}

// StatusFor maps service errors onto HTTP status codes. Denials are 403 so
// the reason reaches the user instead of disappearing into a 500.
func StatusFor(err error) int {
	var denial *metrics.AccessError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &denial):
		return http.StatusForbidden
	case errors.Is(err, metrics.ErrUnsupportedWindow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Handlers exposes plain net/http endpoints backed by shared commands. The
// go-router transport is the primary surface; these handlers cover embedders
// that mount the API on a stock mux.
type Handlers struct {
	API            Executor
	ViewerResolver func(*http.Request) metrics.ViewerContext
}

func (h *Handlers) viewer(r *http.Request) metrics.ViewerContext {
	if h.ViewerResolver == nil {
		return metrics.ViewerContext{Role: metrics.RoleNone}
	}
	return h.ViewerResolver(r)
}

// HandleExportCSV streams the derived view as a CSV attachment.
func (h *Handlers) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := FilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var buf bytes.Buffer
	input := commands.ExportCSVInput{
		Viewer: h.viewer(r),
		Filter: filter,
		Out:    &buf,
	}
	if err := h.API.Export(r.Context(), input); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", metrics.ExportContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+metrics.ExportFilename+`"`)
	_, _ = w.Write(buf.Bytes())
}

// HandleSyncDatabase triggers the admin-only dataset sync.
func (h *Handlers) HandleSyncDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.API.Sync(r.Context(), commands.SyncDatabaseInput{Viewer: h.viewer(r)}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// HandleHardenSecurity triggers the admin-only hardening action.
func (h *Handlers) HandleHardenSecurity(w http.ResponseWriter, r *http.Request) {
	if err := h.API.Harden(r.Context(), commands.HardenSecurityInput{Viewer: h.viewer(r)}); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "hardened"})
}

// HandleSaveFilter persists the viewer's filter selection.
func (h *Handlers) HandleSaveFilter(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Region     string `json:"region"`
		WindowDays int    `json:"window_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	input := commands.SaveFilterInput{
		Viewer: h.viewer(r),
		Filter: metrics.FilterState{Region: payload.Region, WindowDays: payload.WindowDays},
	}
	if err := h.API.SaveFilter(r.Context(), input); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// FilterFromQuery parses region/window_days query parameters, applying the
// default filter for absent values. Window validation stays with the service.
func FilterFromQuery(r *http.Request) (metrics.FilterState, error) {
	filter := metrics.DefaultFilter
	q := r.URL.Query()
	if region := q.Get("region"); region != "" {
		filter.Region = region
	}
	if raw := q.Get("window_days"); raw != "" {
		days, err := parseWindow(raw)
		if err != nil {
			return metrics.FilterState{}, err
		}
		filter.WindowDays = days
	}
	return filter, nil
}

func parseWindow(raw string) (int, error) {
	days := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, errors.New("httpapi: window_days must be an integer")
		}
		days = days*10 + int(r-'0')
	}
	return days, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
