package metrics

import (
	"context"
	"time"
)

// Role is the access level attached to a session. It gates privileged
// operations; RoleNone is the unauthenticated default.
type Role string

const (
	RoleNone  Role = "none"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Action identifies a privileged operation checked at invocation time.
type Action string

const (
	ActionExportCSV      Action = "metrics.export_csv"
	ActionSyncDatabase   Action = "metrics.sync_database"
	ActionHardenSecurity Action = "metrics.harden_security"
)

// MetricRecord is a single day/region measurement. Records are immutable
// once loaded; the raw dataset is a fixed ordered sequence per session.
type MetricRecord struct {
	Date    time.Time `json:"date"`
	Users   int       `json:"users"`
	Revenue int       `json:"revenue"`
	Region  string    `json:"region"`
}

// FilterState captures the viewer-controlled filter inputs. WindowDays
// must be one of SupportedWindows; enforced at the boundary, never
// silently defaulted.
type FilterState struct {
	Region     string `json:"region"`
	WindowDays int    `json:"window_days"`
}

// ViewerContext identifies the active user for authorization and
// per-viewer preferences.
type ViewerContext struct {
	UserID string
	Role   Role
}

// Source loads the raw metrics dataset. Implementations must honor ctx
// cancellation and return records that callers may retain.
type Source interface {
	FetchMetrics(ctx context.Context) ([]MetricRecord, error)
}

// Authorizer decides whether a viewer may perform a privileged action.
// A nil error grants; denials return *AccessError with the reason shown
// to the user.
type Authorizer interface {
	Authorize(ctx context.Context, viewer ViewerContext, action Action) error
}

// FilterStore persists per-viewer filter preferences.
type FilterStore interface {
	SavedFilter(ctx context.Context, viewer ViewerContext) (FilterState, bool, error)
	SaveFilter(ctx context.Context, viewer ViewerContext, filter FilterState) error
}

// RefreshHook notifies transports that the derived view became stale and
// clients should recompute.
type RefreshHook interface {
	DatasetRefreshed(ctx context.Context, event RefreshEvent) error
}

// RefreshEvent describes why a recomputation was triggered.
type RefreshEvent struct {
	Reason string      `json:"reason"`
	Filter FilterState `json:"filter"`
	At     time.Time   `json:"at"`
}
