// Package acp implements the Agent Coordination Protocol message schema and
// its transport family.
//
// Three transports exist, polymorphic over a single dispatch capability:
// direct delivery (a2a), subprocess-probed delivery, and quorum mesh
// consensus. The transport set is closed; dispatch switches over it rather
// than relying on open-ended registration.
package acp

import (
	"fmt"

	"github.com/concord-run/concord/types"
)

// Validator checks AcpMessage shape before any transport accepts it.
// Construct once per process and share read-only; it holds no mutable state.
type Validator struct{}

// NewValidator creates a message schema validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate returns the list of schema violations, empty when the message is
// well-formed: id, type, source, target, and createdAt must be non-empty
// strings; payload is an open map.
func (v *Validator) Validate(m *types.AcpMessage) []string {
	if m == nil {
		return []string{"message is nil"}
	}

	var violations []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"id", m.ID},
		{"type", m.Type},
		{"source", m.Source},
		{"target", m.Target},
		{"created_at", m.CreatedAt},
	} {
		if field.value == "" {
			violations = append(violations, fmt.Sprintf("%s must be a non-empty string", field.name))
		}
	}
	return violations
}

// invalidMessageResult builds the uniform schema-failure result shared by
// every transport. Shape errors are never worth retrying.
func invalidMessageResult(violations []string) *types.AcpDispatchResult {
	return &types.AcpDispatchResult{
		OK:      false,
		Details: "message failed schema validation",
		Error: &types.AcpError{
			Code:      types.ErrCodeInvalidMessage,
			Message:   "message failed schema validation",
			Details:   violations,
			Retriable: false,
		},
	}
}
