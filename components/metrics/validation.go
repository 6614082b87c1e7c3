package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator validates chart configuration payloads against their schema.
type ConfigValidator interface {
	Validate(def ChartDefinition, config map[string]any) error
}

// JSONSchemaValidator compiles chart schemas and validates configuration maps.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures the provided configuration satisfies the chart schema.
func (v *JSONSchemaValidator) Validate(def ChartDefinition, config map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def.Code, def.Schema)
	if err != nil {
		return err
	}
	var payload map[string]any
	if config == nil {
		payload = map[string]any{}
	} else {
		data, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("metrics: marshal config for %s: %w", def.Code, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("metrics: normalize config for %s: %w", def.Code, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("metrics: configuration for %s failed validation: %w", def.Code, err)
	}
	return nil
}

// ValidateFilter checks a region/window selection against the filter schema.
func (v *JSONSchemaValidator) ValidateFilter(filter FilterState) error {
	schema, err := v.schemaFor("metrics.filter", FilterSchema())
	if err != nil {
		return err
	}
	payload := map[string]any{
		"window_days": filter.WindowDays,
	}
	if filter.Region != "" {
		payload["region"] = filter.Region
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("metrics: filter failed validation: %w", err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(code string, raw map[string]any) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[code]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("metrics: marshal schema %s: %w", code, err)
	}
	compiler := jsonschema.NewCompiler()
	name := code + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("metrics: load schema %s: %w", code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("metrics: compile schema %s: %w", code, err)
	}
	v.mu.Lock()
	v.compiled[code] = compiled
	v.mu.Unlock()
	return compiled, nil
}

type noopConfigValidator struct{}

func (noopConfigValidator) Validate(ChartDefinition, map[string]any) error { return nil }
