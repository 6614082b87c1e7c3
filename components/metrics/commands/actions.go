package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	metrics "github.com/goliatone/go-metrics-admin/components/metrics"
)

// SyncDatabaseInput requests a dataset sync on behalf of the viewer.
type SyncDatabaseInput struct {
	Viewer metrics.ViewerContext
}

// HardenSecurityInput requests a security hardening run on behalf of the viewer.
type HardenSecurityInput struct {
	Viewer metrics.ViewerContext
}

type actionService interface {
	SyncDatabase(ctx context.Context, viewer metrics.ViewerContext) error
	HardenSecurity(ctx context.Context, viewer metrics.ViewerContext) error
}

// SyncDatabaseCommand wraps the admin-only dataset sync.
type SyncDatabaseCommand struct {
	service   actionService
	telemetry Telemetry
}

// NewSyncDatabaseCommand creates the command.
func NewSyncDatabaseCommand(service actionService, telemetry Telemetry) *SyncDatabaseCommand {
	return &SyncDatabaseCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SyncDatabaseInput] = (*SyncDatabaseCommand)(nil)

// Execute delegates to the metrics service.
func (c *SyncDatabaseCommand) Execute(ctx context.Context, msg SyncDatabaseInput) error {
	if c.service == nil {
		return errors.New("sync command requires service")
	}
	if err := c.service.SyncDatabase(ctx, msg.Viewer); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "metrics.action.sync", map[string]any{
		"user_id": msg.Viewer.UserID,
	})
	return nil
}

// HardenSecurityCommand wraps the admin-only hardening action.
type HardenSecurityCommand struct {
	service   actionService
	telemetry Telemetry
}

// NewHardenSecurityCommand creates the command.
func NewHardenSecurityCommand(service actionService, telemetry Telemetry) *HardenSecurityCommand {
	return &HardenSecurityCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[HardenSecurityInput] = (*HardenSecurityCommand)(nil)

// Execute delegates to the metrics service.
func (c *HardenSecurityCommand) Execute(ctx context.Context, msg HardenSecurityInput) error {
	if c.service == nil {
		return errors.New("harden command requires service")
	}
	if err := c.service.HardenSecurity(ctx, msg.Viewer); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "metrics.action.harden", map[string]any{
		"user_id": msg.Viewer.UserID,
	})
	return nil
}
