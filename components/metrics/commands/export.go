package commands

import (
	"context"
	"errors"
	"io"

	gocommand "github.com/goliatone/go-command"

	metrics "github.com/goliatone/go-metrics-admin/components/metrics"
)

// ExportCSVInput captures one CSV export request. Out receives the payload
// when the gate grants; nothing is written on denial.
type ExportCSVInput struct {
	Viewer metrics.ViewerContext
	Filter metrics.FilterState
	Out    io.Writer
}

type exportService interface {
	ExportCSV(ctx context.Context, viewer metrics.ViewerContext, filter metrics.FilterState) ([]byte, error)
}

// ExportCSVCommand wraps Service.ExportCSV so transports can invoke exports
// without linking directly against the service.
type ExportCSVCommand struct {
	service   exportService
	telemetry Telemetry
}

// NewExportCSVCommand creates a command instance.
func NewExportCSVCommand(service exportService, telemetry Telemetry) *ExportCSVCommand {
	return &ExportCSVCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ExportCSVInput] = (*ExportCSVCommand)(nil)

// Execute delegates to the metrics service and streams the CSV to Out.
func (c *ExportCSVCommand) Execute(ctx context.Context, msg ExportCSVInput) error {
	if c.service == nil {
		return errors.New("export command requires service")
	}
	if msg.Out == nil {
		return errors.New("export command requires an output writer")
	}
	payload, err := c.service.ExportCSV(ctx, msg.Viewer, msg.Filter)
	if err != nil {
		return err
	}
	if _, err := msg.Out.Write(payload); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "metrics.export.csv", map[string]any{
		"user_id":     msg.Viewer.UserID,
		"region":      msg.Filter.Region,
		"window_days": msg.Filter.WindowDays,
	})
	return nil
}
