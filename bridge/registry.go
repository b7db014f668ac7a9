package bridge

import (
	"fmt"

	"github.com/concord-run/concord/log"
	"github.com/concord-run/concord/metrics"
	"github.com/concord-run/concord/types"
)

// Registry holds the fixed, order-preserving adapter list for the process
// lifetime. Composition is closed: no registration after construction.
type Registry struct {
	adapters []Adapter
	byName   map[string]Adapter
}

// NewRegistry builds a registry over the given adapters. Adapter names must
// be unique.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	byName := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		if _, exists := byName[a.Name()]; exists {
			return nil, fmt.Errorf("duplicate adapter name: %s", a.Name())
		}
		byName[a.Name()] = a
	}
	return &Registry{adapters: adapters, byName: byName}, nil
}

// List returns all adapters in registration order.
func (r *Registry) List() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// Find returns the adapter with the given name. Absence is not an error.
func (r *Registry) Find(name string) (Adapter, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// MatrixRow is one adapter's line in the capability matrix.
type MatrixRow struct {
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	Support      string   `json:"support"`
	Capabilities []string `json:"capabilities"`
	Available    bool     `json:"available"`
	Notes        string   `json:"notes"`
}

// MatrixRow aggregates one adapter's static declaration with its current
// availability.
func (r *Registry) MatrixRow(a Adapter) MatrixRow {
	caps := a.Capabilities()
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}

	notes := "invokes an external tool binary"
	if a.Kind() == types.AdapterKindIDEBridge {
		notes = "writes rule and step files for the IDE"
	}

	return MatrixRow{
		Name:         a.Name(),
		Kind:         string(a.Kind()),
		Support:      string(a.SupportLevel()),
		Capabilities: names,
		Available:    a.IsAvailable(),
		Notes:        notes,
	}
}

// Matrix returns one row per adapter in registration order.
func (r *Registry) Matrix() []MatrixRow {
	rows := make([]MatrixRow, 0, len(r.adapters))
	for _, a := range r.adapters {
		rows = append(rows, r.MatrixRow(a))
	}
	return rows
}

// DefaultProcessSpecs returns the standard process-executing backends in
// registration order. Callers may override binaries and shims before
// building a registry.
func DefaultProcessSpecs() []ProcessSpec {
	return []ProcessSpec{
		{
			Name:         "claude-code",
			Support:      types.SupportGA,
			Capabilities: []types.Capability{types.CapabilityPlan, types.CapabilityExecute, types.CapabilityVerify, types.CapabilityRollback},
			Binary:       "claude",
			Shim:         []string{"npx", "-y", "@anthropic-ai/claude-code"},
		},
		{
			Name:         "codex",
			Support:      types.SupportGA,
			Capabilities: []types.Capability{types.CapabilityPlan, types.CapabilityExecute, types.CapabilityVerify},
			Binary:       "codex",
			Args:         []string{"exec"},
			Shim:         []string{"npx", "-y", "@openai/codex"},
		},
		{
			Name:         "opencode",
			Support:      types.SupportGA,
			Capabilities: []types.Capability{types.CapabilityPlan, types.CapabilityExecute, types.CapabilityVerify, types.CapabilityApprove},
			Binary:       "opencode",
			Args:         []string{"run"},
		},
	}
}

// DefaultFileDropSpecs returns the standard IDE bridges in registration
// order.
func DefaultFileDropSpecs() []FileDropSpec {
	return []FileDropSpec{
		{
			Name:         "cursor",
			Capabilities: []types.Capability{types.CapabilityBridgeRules, types.CapabilityBridgeTasks},
			Dir:          ".cursor",
			RulesName:    "rules/concord.mdc",
		},
		{
			Name:         "cline",
			Capabilities: []types.Capability{types.CapabilityBridgeRules, types.CapabilityBridgeTasks, types.CapabilityBridgeStatus},
			Dir:          ".clinerules",
			RulesName:    "concord.md",
		},
		{
			Name:         "vscode",
			Capabilities: []types.Capability{types.CapabilityBridgeTasks, types.CapabilityBridgeStatus},
			Dir:          ".vscode/concord",
		},
		{
			Name:         "antigravity",
			Capabilities: []types.Capability{types.CapabilityBridgeRules, types.CapabilityBridgeTasks},
			Dir:          ".antigravity",
		},
	}
}

// NewDefaultRegistry builds the standard backend set: the three
// process-executing tools first, then the four IDE bridges.
func NewDefaultRegistry(logger *log.Logger, collector *metrics.Collector) (*Registry, error) {
	return NewRegistryFromSpecs(DefaultProcessSpecs(), DefaultFileDropSpecs(), logger, collector)
}

// NewRegistryFromSpecs builds a registry from explicit backend specs,
// process-executing adapters first.
func NewRegistryFromSpecs(specs []ProcessSpec, drops []FileDropSpec, logger *log.Logger, collector *metrics.Collector) (*Registry, error) {
	adapters := make([]Adapter, 0, len(specs)+len(drops))
	for _, spec := range specs {
		a, err := NewProcessAdapter(spec, logger, collector)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	for _, spec := range drops {
		a, err := NewFileDropAdapter(spec, logger, collector)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}

	return NewRegistry(adapters...)
}
