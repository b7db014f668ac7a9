package acp

import (
	"context"

	"github.com/concord-run/concord/types"
)

// Transport names reported in dispatch acknowledgments.
const (
	TransportA2A      = "acp-a2a"
	TransportOpenCode = "acp-opencode"
	TransportMesh     = "acp-mesh"
)

// Transport delivers a validated ACP message and reports the outcome.
// Implementations never panic across this boundary: every failure mode is
// a typed result, so callers learn about failures without a recover path.
type Transport interface {
	// Name returns the transport identifier used in acknowledgments.
	Name() string

	// Dispatch validates and delivers the message.
	// Must respect context cancellation and deadlines.
	Dispatch(ctx context.Context, m *types.AcpMessage) *types.AcpDispatchResult
}
