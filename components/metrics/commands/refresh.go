package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	metrics "github.com/goliatone/go-metrics-admin/components/metrics"
)

// RefreshDatasetInput emits dataset refresh notifications.
type RefreshDatasetInput struct {
	Event metrics.RefreshEvent
}

type refreshNotifier interface {
	NotifyDatasetRefreshed(ctx context.Context, event metrics.RefreshEvent) error
}

// RefreshDatasetCommand triggers refresh hooks without forcing transports.
type RefreshDatasetCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewRefreshDatasetCommand creates the command.
func NewRefreshDatasetCommand(service refreshNotifier, telemetry Telemetry) *RefreshDatasetCommand {
	return &RefreshDatasetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshDatasetInput] = (*RefreshDatasetCommand)(nil)

// Execute notifies the metrics service's refresh hooks.
func (c *RefreshDatasetCommand) Execute(ctx context.Context, msg RefreshDatasetInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if err := c.service.NotifyDatasetRefreshed(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "metrics.dataset.refresh", map[string]any{
		"reason": msg.Event.Reason,
	})
	return nil
}
