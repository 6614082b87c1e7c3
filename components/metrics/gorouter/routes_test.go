package gorouter

import (
	"testing"

	metrics "github.com/goliatone/go-metrics-admin/components/metrics"
)

func TestRegisterRequiresRouter(t *testing.T) {
	err := Register(Config[struct{}]{
		Controller: metrics.NewController(metrics.ControllerOptions{}),
	})
	if err == nil {
		t.Fatal("expected error for missing router")
	}
}

func TestDefaultRouteConfig(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{})
	if routes.HTML != "/dashboard" {
		t.Fatalf("unexpected HTML route %q", routes.HTML)
	}
	if routes.View != "/dashboard/_view" {
		t.Fatalf("unexpected view route %q", routes.View)
	}
	if routes.Export != "/dashboard/export.csv" {
		t.Fatalf("unexpected export route %q", routes.Export)
	}
	if routes.Login != "/login" || routes.Logout != "/logout" {
		t.Fatalf("unexpected session routes %q %q", routes.Login, routes.Logout)
	}
	if routes.Sync != "/dashboard/actions/sync" || routes.Harden != "/dashboard/actions/harden" {
		t.Fatalf("unexpected action routes %q %q", routes.Sync, routes.Harden)
	}
	if routes.WebSocket != "/dashboard/ws" {
		t.Fatalf("unexpected websocket route %q", routes.WebSocket)
	}
}

func TestDefaultRouteConfigKeepsOverrides(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{HTML: "/metrics", Export: "/metrics/export"})
	if routes.HTML != "/metrics" || routes.Export != "/metrics/export" {
		t.Fatalf("expected overrides kept, got %#v", routes)
	}
	if routes.View != "/dashboard/_view" {
		t.Fatalf("expected defaults for unset routes, got %q", routes.View)
	}
}
