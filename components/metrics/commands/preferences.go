package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	metrics "github.com/goliatone/go-metrics-admin/components/metrics"
)

// SaveFilterInput captures a viewer's region/window selection.
type SaveFilterInput struct {
	Viewer metrics.ViewerContext `json:"viewer"`
	Filter metrics.FilterState   `json:"filter"`
}

type filterService interface {
	SaveFilter(ctx context.Context, viewer metrics.ViewerContext, filter metrics.FilterState) error
}

// SaveFilterCommand persists per-user filter selections.
type SaveFilterCommand struct {
	service   filterService
	telemetry Telemetry
}

// NewSaveFilterCommand creates the command.
func NewSaveFilterCommand(service filterService, telemetry Telemetry) *SaveFilterCommand {
	return &SaveFilterCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveFilterInput] = (*SaveFilterCommand)(nil)

// Execute stores the provided filter for the viewer.
func (c *SaveFilterCommand) Execute(ctx context.Context, msg SaveFilterInput) error {
	if c.service == nil {
		return errors.New("filter command requires service")
	}
	if msg.Viewer.UserID == "" {
		return errors.New("filter command requires viewer user id")
	}
	if err := c.service.SaveFilter(ctx, msg.Viewer, msg.Filter); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "metrics.filter.save", map[string]any{
		"user_id":     msg.Viewer.UserID,
		"region":      msg.Filter.Region,
		"window_days": msg.Filter.WindowDays,
	})
	return nil
}
