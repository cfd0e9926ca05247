// File: internal/plugin/registry.go

// Package plugin turns registered detector constructors into live, fully
// wired detector instances. Registration is explicit: each detector package
// exposes a Register function that the catalog calls at startup, instead of
// relying on import side effects. That keeps the set of hosted plugins
// deterministic and testable.
package plugin

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wisdark/tsunami-security-scanner/api/schemas"
	"github.com/wisdark/tsunami-security-scanner/internal/network"
	"github.com/wisdark/tsunami-security-scanner/internal/plugin/payload"
)

// Deps are the shared runtime dependencies injected into every detector
// instance at construction time. All of them are read-mostly and safe for
// concurrent use.
type Deps struct {
	// HTTPClient is the shared outbound client detectors use to probe
	// targets.
	HTTPClient *network.Client
	// PayloadGenerator mints exploitation payloads with out-of-band or
	// in-band execution validation.
	PayloadGenerator *payload.Generator
	// Logger is the parent logger; constructors typically derive a named
	// child from it.
	Logger *zap.Logger
}

// Constructor builds one detector instance from the shared dependencies.
type Constructor func(deps Deps) (schemas.VulnDetector, error)

// Registry collects detector constructors during startup and builds the
// immutable plugin set from them. It is not safe for concurrent
// registration; all Add calls happen on the startup path before Build.
type Registry struct {
	names   map[string]struct{}
	entries []entry
}

type entry struct {
	name string
	ctor Constructor
}

// NewRegistry creates an empty detector registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Add registers a detector constructor under its descriptor name. Duplicate
// names are a configuration error, never silently merged.
func (r *Registry) Add(name string, ctor Constructor) error {
	if name == "" {
		return fmt.Errorf("detector registered with empty name")
	}
	if ctor == nil {
		return fmt.Errorf("detector %q registered with nil constructor", name)
	}
	if _, dup := r.names[name]; dup {
		return fmt.Errorf("duplicate detector name %q", name)
	}
	r.names[name] = struct{}{}
	r.entries = append(r.entries, entry{name: name, ctor: ctor})
	return nil
}

// Len returns the number of registered constructors.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Build eagerly constructs one instance per registered constructor, in
// registration order, injecting the shared dependencies into each. By the
// time Build returns every plugin is fully constructed and ready to serve;
// nothing is deferred to the first call. Any constructor failure aborts the
// whole build.
func (r *Registry) Build(deps Deps) (*Set, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
		deps.Logger = logger
	}

	set := &Set{byName: make(map[string]schemas.VulnDetector, len(r.entries))}
	for _, e := range r.entries {
		detector, err := e.ctor(deps)
		if err != nil {
			return nil, fmt.Errorf("constructing detector %q: %w", e.name, err)
		}
		if detector == nil {
			return nil, fmt.Errorf("constructor for detector %q returned nil", e.name)
		}
		def := detector.Definition()
		if def.Name() != e.name {
			return nil, fmt.Errorf("detector registered as %q reports descriptor name %q", e.name, def.Name())
		}
		set.detectors = append(set.detectors, detector)
		set.byName[e.name] = detector
	}

	logger.Info("Configured plugins", zap.Int("count", set.Len()))
	for _, d := range set.detectors {
		def := d.Definition()
		logger.Info("Registered plugin",
			zap.String("name", def.Info.Name),
			zap.String("version", def.Info.Version),
			zap.String("type", string(def.Info.Type)),
		)
	}
	return set, nil
}

// Set is the authoritative, immutable collection of live detector
// instances, ordered by registration and keyed by descriptor name. It is
// built once at startup and only read afterwards, so it needs no locking.
type Set struct {
	detectors []schemas.VulnDetector
	byName    map[string]schemas.VulnDetector
}

// Len returns the number of hosted plugins.
func (s *Set) Len() int {
	return len(s.detectors)
}

// Lookup returns the detector instance registered under name.
func (s *Set) Lookup(name string) (schemas.VulnDetector, bool) {
	d, ok := s.byName[name]
	return d, ok
}

// Definitions returns a fresh slice of every plugin definition in
// registration order. The slice is newly allocated per call; listing never
// mutates the set.
func (s *Set) Definitions() []schemas.PluginDefinition {
	defs := make([]schemas.PluginDefinition, 0, len(s.detectors))
	for _, d := range s.detectors {
		defs = append(defs, d.Definition())
	}
	return defs
}
