package metrics

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// ChartManifestDocument models a YAML manifest describing dashboard charts.
type ChartManifestDocument struct {
	Version string          `json:"version" yaml:"version"`
	Name    string          `json:"name,omitempty" yaml:"name,omitempty"`
	Package string          `json:"package,omitempty" yaml:"package,omitempty"`
	Charts  []ManifestChart `json:"charts" yaml:"charts"`
	Source  string          `json:"-" yaml:"-"`
}

// ManifestChart describes a single chart entry within a manifest.
type ManifestChart struct {
	Definition  ChartDefinition `json:"definition" yaml:"definition"`
	Maintainers []string        `json:"maintainers,omitempty" yaml:"maintainers,omitempty"`
	Tags        []string        `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// LoadManifestFile reads a manifest from disk, registers it against the registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*ChartManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers chart definitions from a decoded manifest.
func (r *Registry) LoadManifestDocument(doc *ChartManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("metrics: manifest document is nil")
	}
	for _, chart := range doc.Charts {
		if err := r.RegisterDefinition(chart.Definition); err != nil {
			return fmt.Errorf("metrics: register chart %s from %s: %w", chart.Definition.Code, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*ChartManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("metrics: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("metrics: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*ChartManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ChartManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("metrics: manifest is empty")
		}
		return nil, fmt.Errorf("metrics: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *ChartManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("metrics: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Charts))
	for idx, chart := range doc.Charts {
		if chart.Definition.Code == "" {
			return fmt.Errorf("metrics: manifest chart at index %d is missing definition.code", idx)
		}
		if chart.Definition.Name == "" {
			return fmt.Errorf("metrics: manifest chart %s missing definition.name", chart.Definition.Code)
		}
		if _, exists := seen[chart.Definition.Code]; exists {
			return fmt.Errorf("metrics: manifest duplicates chart code %s", chart.Definition.Code)
		}
		seen[chart.Definition.Code] = struct{}{}
	}
	return nil
}

func (doc *ChartManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}
