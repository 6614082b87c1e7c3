package metrics

import (
	"fmt"
	"sync"
)

// ChartHook lets packages register chart definitions/providers during init().
type ChartHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []ChartHook
)

// RegisterChartHook registers a hook executed against new registries.
func RegisterChartHook(h ChartHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// ChartDefinition describes one dashboard chart.
type ChartDefinition struct {
	Code        string         `json:"code" yaml:"code"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        string         `json:"kind" yaml:"kind"`
	Schema      map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// ChartManifest represents config-driven registration entries.
type ChartManifest struct {
	Definition ChartDefinition
	Provider   ChartProvider
}

// Registry maps chart codes to definitions and providers.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]ChartDefinition
	providers   map[string]ChartProvider
}

// NewRegistry builds a registry with the built-in charts and applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{
		definitions: map[string]ChartDefinition{},
		providers:   map[string]ChartProvider{},
	}
	reg.registerDefaults()
	_ = reg.ApplyHooks()
	return reg
}

func (r *Registry) registerDefaults() {
	for _, def := range DefaultChartDefinitions() {
		_ = r.RegisterDefinition(def)
	}
}

// ApplyHooks executes registered chart hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// LoadManifest registers definitions/providers from config manifests.
func (r *Registry) LoadManifest(items []ChartManifest) error {
	for _, item := range items {
		if err := r.RegisterDefinition(item.Definition); err != nil {
			return err
		}
		if item.Provider != nil {
			if err := r.RegisterProvider(item.Definition.Code, item.Provider); err != nil {
				return err
			}
		}
	}
	return nil
}

// RegisterDefinition stores chart metadata.
func (r *Registry) RegisterDefinition(def ChartDefinition) error {
	if def.Code == "" {
		return fmt.Errorf("metrics: chart definition code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Code] = def
	return nil
}

// RegisterProvider associates a provider implementation with a definition.
func (r *Registry) RegisterProvider(code string, provider ChartProvider) error {
	if code == "" {
		return fmt.Errorf("metrics: chart definition code is required to register provider")
	}
	if provider == nil {
		return fmt.Errorf("metrics: provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.definitions[code]; !ok {
		return fmt.Errorf("metrics: chart definition %s not found", code)
	}
	r.providers[code] = provider
	return nil
}

// Definition fetches a chart definition by code.
func (r *Registry) Definition(code string) (ChartDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[code]
	return def, ok
}

// Provider fetches a chart provider by code.
func (r *Registry) Provider(code string) (ChartProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[code]
	return provider, ok
}

// Definitions returns all registered definitions.
func (r *Registry) Definitions() []ChartDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]ChartDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	return defs
}
