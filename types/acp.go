package types

// ACP error codes shared across transports.
const (
	// ErrCodeInvalidMessage marks a message that failed schema validation.
	// Shape errors are never worth retrying.
	ErrCodeInvalidMessage = "acp.invalid_message"
	// ErrCodeQuorumNotReached marks a mesh dispatch without a 2/3 majority.
	ErrCodeQuorumNotReached = "acp.quorum_not_reached"
	// ErrCodeDeadlineExceeded marks a mesh dispatch cut short by the caller's
	// deadline before all votes arrived.
	ErrCodeDeadlineExceeded = "acp.deadline_exceeded"
	// ErrCodeUnsupportedProtocol marks a coordination request naming a
	// protocol no transport serves.
	ErrCodeUnsupportedProtocol = "acp.unsupported_protocol"
)

// AcpMessage is the coordination payload exchanged over ACP transports.
// A message must pass schema validation before any transport accepts it.
type AcpMessage struct {
	// ID uniquely identifies the message.
	ID string `json:"id"`
	// Type is the message type discriminator (e.g. "coordination.pre-exec").
	Type string `json:"type"`
	// Payload is an open map of type-specific content.
	Payload map[string]any `json:"payload"`
	// Source identifies the sender.
	Source string `json:"source"`
	// Target identifies the receiving adapter or peer.
	Target string `json:"target"`
	// CreatedAt is the creation timestamp, RFC 3339.
	CreatedAt string `json:"created_at"`
}

// AcpError is the structured error carried by a failed dispatch.
type AcpError struct {
	// Code is a stable machine-readable code (e.g. "acp.invalid_message").
	Code string `json:"code"`
	// Message is the human-readable failure description.
	Message string `json:"message"`
	// Details carries supporting lines (validation violations, probe output).
	Details []string `json:"details,omitempty"`
	// Retriable reports whether retrying the same dispatch can succeed.
	Retriable bool `json:"retriable"`
}

// AcpDispatchResult is the outcome of one ACP dispatch.
// OK=false implies Error is present.
type AcpDispatchResult struct {
	// OK reports whether the dispatch succeeded.
	OK bool `json:"ok"`
	// Details is a human-readable outcome description.
	Details string `json:"details"`
	// Response is transport-specific response content (ack, mode, tallies).
	Response map[string]any `json:"response,omitempty"`
	// Error is the structured failure; nil when OK.
	Error *AcpError `json:"error,omitempty"`
}
