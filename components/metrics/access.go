package metrics

import "context"

// AccessError is the explicit denial signal produced when an authorization
// gate rejects a privileged action. The Reason is human readable and names
// the denied action; it is surfaced to the user, never swallowed.
type AccessError struct {
	Action Action
	Reason string
}

func (e *AccessError) Error() string { return e.Reason }

// Denial builds an AccessError for the given action.
func Denial(action Action, reason string) *AccessError {
	return &AccessError{Action: action, Reason: reason}
}

var denialReasons = map[Action]string{
	ActionExportCSV:      "You need Admin rights to export CSV",
	ActionSyncDatabase:   "You need Admin rights to sync the database",
	ActionHardenSecurity: "You need Admin rights to run security hardening",
}

// RoleAuthorizer grants privileged actions to admins only. The check runs
// at invocation time; rendering decisions never substitute for it.
type RoleAuthorizer struct{}

// Authorize returns nil for admins and an *AccessError otherwise.
func (RoleAuthorizer) Authorize(_ context.Context, viewer ViewerContext, action Action) error {
	if viewer.Role == RoleAdmin {
		return nil
	}
	reason, ok := denialReasons[action]
	if !ok {
		reason = "You need Admin rights to perform this action"
	}
	return Denial(action, reason)
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) Authorize(context.Context, ViewerContext, Action) error { return nil }

// AllowAllAuthorizer disables gating; intended for tests and local demos.
func AllowAllAuthorizer() Authorizer { return allowAllAuthorizer{} }
