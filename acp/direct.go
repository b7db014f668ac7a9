package acp

import (
	"context"
	"fmt"

	"github.com/concord-run/concord/types"
)

// DirectTransport delivers messages to trusted intra-process peers.
// There is no external call: a valid message is acknowledged immediately.
type DirectTransport struct {
	validator *Validator
}

// NewDirectTransport creates the a2a transport.
func NewDirectTransport(v *Validator) *DirectTransport {
	return &DirectTransport{validator: v}
}

// Name returns the transport identifier.
func (t *DirectTransport) Name() string { return TransportA2A }

// Dispatch validates the message and synthesizes a success acknowledgment.
func (t *DirectTransport) Dispatch(_ context.Context, m *types.AcpMessage) *types.AcpDispatchResult {
	if violations := t.validator.Validate(m); len(violations) > 0 {
		return invalidMessageResult(violations)
	}

	return &types.AcpDispatchResult{
		OK:      true,
		Details: fmt.Sprintf("message %s acknowledged", m.ID),
		Response: map[string]any{
			"ack":        true,
			"message_id": m.ID,
			"transport":  TransportA2A,
		},
	}
}

// Verify DirectTransport implements the transport boundary.
var _ Transport = (*DirectTransport)(nil)
