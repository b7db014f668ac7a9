package types

// Protocol selects how a coordination phase is carried out.
type Protocol string

// The closed protocol set. The legal backends are fixed and enumerable;
// dispatch switches over this set rather than relying on open registration.
const (
	ProtocolNone        Protocol = "none"
	ProtocolMCP         Protocol = "mcp"
	ProtocolAcpA2A      Protocol = "acp-a2a"
	ProtocolAcpOpenCode Protocol = "acp-opencode"
	ProtocolAcpMesh     Protocol = "acp-mesh"
)

// IsValid reports whether p is a member of the closed protocol set.
func (p Protocol) IsValid() bool {
	switch p {
	case ProtocolNone, ProtocolMCP, ProtocolAcpA2A, ProtocolAcpOpenCode, ProtocolAcpMesh:
		return true
	default:
		return false
	}
}

// Phase is the coordination phase relative to step execution.
type Phase string

const (
	PhasePreExec  Phase = "pre-exec"
	PhasePostExec Phase = "post-exec"
)

// IsValid reports whether ph is a known coordination phase.
func (ph Phase) IsValid() bool {
	return ph == PhasePreExec || ph == PhasePostExec
}

// MCPCommand describes how to start and call an MCP tool server.
type MCPCommand struct {
	// Command is the server executable.
	Command string `json:"command"`
	// Args are the server arguments.
	Args []string `json:"args,omitempty"`
	// Tool is the tool name to invoke.
	Tool string `json:"tool"`
	// Arguments is the tool's typed argument object.
	Arguments map[string]any `json:"arguments,omitempty"`
}

// CoordinationRequest is one coordinator invocation.
// Protocol is fixed for the call's lifetime.
type CoordinationRequest struct {
	// Protocol selects the transport family.
	Protocol Protocol `json:"protocol"`
	// Phase is pre-exec or post-exec.
	Phase Phase `json:"phase"`
	// Workdir is the working directory of the coordinated step.
	Workdir string `json:"workdir"`
	// Adapter is the name of the adapter being coordinated.
	Adapter string `json:"adapter"`
	// ContractID identifies the contract.
	ContractID string `json:"contract_id"`
	// StepCount is the number of steps in the contract's plan.
	StepCount int `json:"step_count"`
	// Payload is optional extra content forwarded to the transport.
	Payload map[string]any `json:"payload,omitempty"`
	// MCP is the tool server command spec, required for ProtocolMCP.
	MCP *MCPCommand `json:"mcp,omitempty"`
}

// CoordinationResult is the exposed result shape of a coordination call.
// Every call returns a result object; callers never need a recover path to
// learn that coordination failed.
type CoordinationResult struct {
	// OK reports whether the coordination succeeded.
	OK bool `json:"ok"`
	// Attempted reports whether any transport work was performed.
	// Protocol "none" is a deliberate no-op: OK=true, Attempted=false.
	Attempted bool `json:"attempted"`
	// Response is the transport response, when one was produced.
	Response map[string]any `json:"response,omitempty"`
	// Error is the structured failure; nil when OK.
	Error *AcpError `json:"error,omitempty"`
}
