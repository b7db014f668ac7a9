// Package bridge implements the executor adapter boundary and its registry.
//
// An Adapter turns one work envelope into a dispatch outcome for one backend.
// Two behavioral families exist: process-executing adapters that shell out to
// an external tool binary, and IDE-bridge adapters that materialize files for
// an editor to pick up and never execute anything. The Registry holds the
// fixed adapter list for the process lifetime.
package bridge

import (
	"context"

	"github.com/concord-run/concord/types"
)

// HealthCheck is one named diagnostic probe result.
type HealthCheck struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

// HealthReport aggregates an adapter's diagnostic checks.
// Used for reporting only, never for dispatch gating.
type HealthReport struct {
	Target    string        `json:"target"`
	Available bool          `json:"available"`
	Checks    []HealthCheck `json:"checks"`
}

// Adapter is one backend capability. Implementations must be safe for
// concurrent dispatch; name and capability set are immutable after
// construction.
type Adapter interface {
	// Name returns the unique registry key.
	Name() string

	// Kind reports the behavioral family.
	Kind() types.AdapterKind

	// SupportLevel reports the declared support tier.
	SupportLevel() types.SupportLevel

	// Capabilities returns the static capability set. No side effects.
	Capabilities() []types.Capability

	// IsAvailable probes whether the backend can currently be invoked.
	// Never fails; any probe error maps to false.
	IsAvailable() bool

	// Health runs diagnostic checks against the given working directory.
	Health(cwd string) HealthReport

	// Dispatch performs one unit of work. The only operation with side
	// effects. Process-executing adapters report backend failure through
	// Success=false with a nil error; only bridge filesystem failures
	// return a non-nil error.
	Dispatch(ctx context.Context, envelope *types.BridgeEnvelope, dctx *types.DispatchContext) (*types.BridgeDispatchResult, error)
}
