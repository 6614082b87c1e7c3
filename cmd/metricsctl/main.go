package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	metrics "github.com/goliatone/go-metrics-admin/components/metrics"
)

type cli struct {
	Export   exportCmd   `cmd:"" help:"Derive a filtered metrics view and write it as CSV."`
	Scaffold scaffoldCmd `cmd:"" help:"Add a chart definition to a manifest file."`
	Validate validateCmd `cmd:"" help:"Validate a chart manifest file."`
}

type exportCmd struct {
	Dataset string `type:"path" help:"Path to a JSON dataset file. Omit to use the bundled demo dataset."`
	Region  string `default:"All" help:"Region filter (All keeps every region)."`
	Window  int    `default:"7" help:"Rolling window in days (7 or 30)."`
	Out     string `type:"path" help:"Output file. Omit to write to stdout."`
	Role    string `default:"admin" enum:"admin,user,none" help:"Role to export as. Non-admin roles are denied."`
}

type scaffoldCmd struct {
	Code         string   `required:"" help:"Fully-qualified chart code (e.g. acme.chart.signups)."`
	Name         string   `help:"Display name (defaults to the last code segment, title-cased)."`
	Description  string   `help:"One-line description used in manifests."`
	Kind         string   `default:"line" enum:"line,bar,pie" help:"Chart kind."`
	ManifestPath string   `required:"" type:"path" help:"Path to the chart manifest YAML file to update."`
	SchemaPath   string   `type:"path" help:"Optional path to a JSON schema file for the chart configuration."`
	Tag          []string `help:"Optional tags to include in the manifest (use multiple --tag flags)."`
	Maintainer   []string `help:"Maintainers to record in the manifest."`
	Overwrite    bool     `help:"Overwrite an existing manifest entry if present."`
}

type validateCmd struct {
	ManifestPath string `arg:"" type:"path" help:"Path to the chart manifest YAML file."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Metrics admin utility for CSV exports and chart manifests."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

func (cmd *exportCmd) Run(ctx context.Context) error {
	source, err := cmd.source()
	if err != nil {
		return err
	}
	service := metrics.NewService(metrics.Options{Source: source})
	viewer := metrics.ViewerContext{
		UserID: fmt.Sprintf("%s@metricsctl", cmd.Role),
		Role:   metrics.Role(cmd.Role),
	}
	payload, err := service.ExportCSV(ctx, viewer, metrics.FilterState{
		Region:     cmd.Region,
		WindowDays: cmd.Window,
	})
	if err != nil {
		return fmt.Errorf("metricsctl: export: %w", err)
	}
	if cmd.Out == "" {
		_, err := os.Stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(cmd.Out, payload, 0o644); err != nil {
		return fmt.Errorf("metricsctl: write %s: %w", cmd.Out, err)
	}
	fmt.Fprintf(os.Stdout, "✓ Wrote %d bytes to %s\n", len(payload), cmd.Out)
	return nil
}

func (cmd *exportCmd) source() (metrics.Source, error) {
	if cmd.Dataset == "" {
		return &metrics.StaticSource{Records: metrics.DemoDataset()}, nil
	}
	return metrics.NewFileSource(cmd.Dataset)
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	if !strings.Contains(cmd.Code, ".") {
		return fmt.Errorf("metricsctl: chart code %s must contain at least one '.' segment", cmd.Code)
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("metricsctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	if !cmd.Overwrite {
		for _, chart := range doc.Charts {
			if chart.Definition.Code == cmd.Code {
				return fmt.Errorf("metricsctl: manifest already defines chart %s (use --overwrite to replace)", cmd.Code)
			}
		}
	}

	schema, err := cmd.loadSchema()
	if err != nil {
		return err
	}
	name := cmd.Name
	if name == "" {
		name = deriveDisplayName(cmd.Code)
	}

	entry := metrics.ManifestChart{
		Definition: metrics.ChartDefinition{
			Code:        cmd.Code,
			Name:        name,
			Description: cmd.Description,
			Kind:        cmd.Kind,
			Schema:      schema,
		},
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}

	replaced := false
	if cmd.Overwrite {
		for idx := range doc.Charts {
			if doc.Charts[idx].Definition.Code == cmd.Code {
				doc.Charts[idx] = entry
				replaced = true
				break
			}
		}
	}
	if !replaced {
		doc.Charts = append(doc.Charts, entry)
	}

	sort.Slice(doc.Charts, func(i, j int) bool {
		return doc.Charts[i].Definition.Code < doc.Charts[j].Definition.Code
	})

	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s (%s) to %s\n", cmd.Code, cmd.Kind, manifestPath)
	return nil
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("metricsctl: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("metricsctl: parse schema JSON: %w", err)
	}
	return schema, nil
}

func (cmd *validateCmd) Run(_ context.Context) error {
	doc, err := metrics.ReadManifest(cmd.ManifestPath)
	if err != nil {
		return err
	}
	registry := metrics.NewRegistry()
	if err := registry.LoadManifestDocument(doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %s is valid (%d charts)\n", cmd.ManifestPath, len(doc.Charts))
	for _, chart := range doc.Charts {
		fmt.Fprintf(os.Stdout, "  %s [%s] %s\n", chart.Definition.Code, chart.Definition.Kind, chart.Definition.Name)
	}
	return nil
}

func loadOrInitManifest(path string) (*metrics.ChartManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			doc := &metrics.ChartManifestDocument{
				Version: metrics.ManifestVersion,
				Charts:  []metrics.ManifestChart{},
				Source:  path,
			}
			return doc, nil
		}
		return nil, fmt.Errorf("metricsctl: stat manifest: %w", err)
	}
	return metrics.ReadManifest(path)
}

func writeManifest(path string, doc *metrics.ChartManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metricsctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	tmpDoc := *doc
	tmpDoc.Source = ""

	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("metricsctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(tmpDoc); err != nil {
		return fmt.Errorf("metricsctl: write manifest: %w", err)
	}
	return nil
}

func deriveDisplayName(code string) string {
	parts := strings.Split(code, ".")
	slug := strings.TrimSpace(parts[len(parts)-1])
	if slug == "" {
		slug = code
	}
	return strcase.ToCase(slug, strcase.TitleCase, ' ')
}
