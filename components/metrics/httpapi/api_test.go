package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	metrics "github.com/goliatone/go-metrics-admin/components/metrics"
	"github.com/goliatone/go-metrics-admin/components/metrics/commands"
)

func newExecutor(service *metrics.Service) *CommandExecutor {
	return &CommandExecutor{
		ExportCommander:  commands.NewExportCSVCommand(service, nil),
		SyncCommander:    commands.NewSyncDatabaseCommand(service, nil),
		HardenCommander:  commands.NewHardenSecurityCommand(service, nil),
		RefreshCommander: commands.NewRefreshDatasetCommand(service, nil),
		FilterCommander:  commands.NewSaveFilterCommand(service, nil),
	}
}

func newHandlers(viewer metrics.ViewerContext) *Handlers {
	service := metrics.NewService(metrics.Options{
		Source: &metrics.StaticSource{Records: metrics.DemoDataset()},
	})
	return &Handlers{
		API:            newExecutor(service),
		ViewerResolver: func(*http.Request) metrics.ViewerContext { return viewer },
	}
}

func TestHandleExportCSVForAdmin(t *testing.T) {
	api := newHandlers(metrics.ViewerContext{UserID: "admin", Role: metrics.RoleAdmin})
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard/export.csv?region=North&window_days=7", nil)
	rec := httptest.NewRecorder()
	api.HandleExportCSV(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != metrics.ExportContentType {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, metrics.ExportFilename) {
		t.Fatalf("unexpected disposition %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "date,users,revenue,region") {
		t.Fatalf("expected CSV body, got %q", rec.Body.String())
	}
}

func TestHandleExportCSVDeniedForUser(t *testing.T) {
	api := newHandlers(metrics.ViewerContext{UserID: "user", Role: metrics.RoleUser})
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard/export.csv", nil)
	rec := httptest.NewRecorder()
	api.HandleExportCSV(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("expected JSON error body, got %q", rec.Body.String())
	}
	if payload["error"] != "You need Admin rights to export CSV" {
		t.Fatalf("unexpected error message %q", payload["error"])
	}
	if rec.Header().Get("Content-Disposition") != "" {
		t.Fatalf("expected no attachment headers on denial")
	}
}

func TestHandleExportCSVRejectsBadWindow(t *testing.T) {
	api := newHandlers(metrics.ViewerContext{UserID: "admin", Role: metrics.RoleAdmin})
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard/export.csv?window_days=14", nil)
	rec := httptest.NewRecorder()
	api.HandleExportCSV(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSyncDatabase(t *testing.T) {
	api := newHandlers(metrics.ViewerContext{UserID: "admin", Role: metrics.RoleAdmin})
	req := httptest.NewRequest(http.MethodPost, "/admin/dashboard/actions/sync", nil)
	rec := httptest.NewRecorder()
	api.HandleSyncDatabase(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSyncDatabaseDenied(t *testing.T) {
	api := newHandlers(metrics.ViewerContext{UserID: "user", Role: metrics.RoleUser})
	req := httptest.NewRequest(http.MethodPost, "/admin/dashboard/actions/sync", nil)
	rec := httptest.NewRecorder()
	api.HandleSyncDatabase(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandleSaveFilter(t *testing.T) {
	api := newHandlers(metrics.ViewerContext{UserID: "user", Role: metrics.RoleUser})
	body, _ := json.Marshal(map[string]any{"region": "South", "window_days": 30})
	req := httptest.NewRequest(http.MethodPost, "/admin/dashboard/preferences", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	api.HandleSaveFilter(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleSaveFilterRejectsBadWindow(t *testing.T) {
	api := newHandlers(metrics.ViewerContext{UserID: "user", Role: metrics.RoleUser})
	body, _ := json.Marshal(map[string]any{"region": "South", "window_days": 13})
	req := httptest.NewRequest(http.MethodPost, "/admin/dashboard/preferences", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	api.HandleSaveFilter(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStatusForMapsErrors(t *testing.T) {
	denial := metrics.Denial(metrics.ActionExportCSV, "You need Admin rights to export CSV")
	if got := StatusFor(denial); got != http.StatusForbidden {
		t.Fatalf("expected 403 for denial, got %d", got)
	}
	if got := StatusFor(metrics.ErrUnsupportedWindow); got != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported window, got %d", got)
	}
	if got := StatusFor(nil); got != http.StatusOK {
		t.Fatalf("expected 200 for nil, got %d", got)
	}
}
