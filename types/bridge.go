// Package types defines the shared value objects of the coordination layer.
//
// Everything here is a plain value passed between packages: work envelopes,
// dispatch results, ACP messages, votes, and coordination requests. No type
// in this package holds references to live resources.
package types

// AdapterKind discriminates the two behavioral families of executor adapters.
type AdapterKind string

const (
	// AdapterKindExecutor shells out to an external tool binary.
	AdapterKindExecutor AdapterKind = "executor"
	// AdapterKindIDEBridge materializes files for an IDE to pick up; never
	// executes anything.
	AdapterKindIDEBridge AdapterKind = "ide-bridge"
)

// SupportLevel is the declared support tier of an adapter.
type SupportLevel string

const (
	SupportGA     SupportLevel = "ga"
	SupportBridge SupportLevel = "bridge"
)

// Capability is a tag an adapter declares in its capability set.
type Capability string

const (
	CapabilityPlan         Capability = "plan"
	CapabilityExecute      Capability = "execute"
	CapabilityVerify       Capability = "verify"
	CapabilityRollback     Capability = "rollback"
	CapabilityBridgeRules  Capability = "bridge-rules"
	CapabilityBridgeTasks  Capability = "bridge-tasks"
	CapabilityApprove      Capability = "approve"
	CapabilityBridgeStatus Capability = "bridge-status"
)

// BridgeEnvelope is one unit of work sent to an adapter.
// StepID is unique within a contract's plan.
type BridgeEnvelope struct {
	// ContractID identifies the contract this step belongs to.
	ContractID string `json:"contract_id"`
	// StepID identifies the step within the contract's plan.
	StepID string `json:"step_id"`
	// Stage is the pipeline stage being advanced.
	Stage string `json:"stage"`
	// Summary is the human-readable description of the work.
	Summary string `json:"summary"`
	// VerifyCommands are shell commands that check the step's outcome.
	VerifyCommands []string `json:"verify_commands,omitempty"`
}

// DispatchContext is the execution environment for a single dispatch.
// Immutable per call; adapters never mutate it.
type DispatchContext struct {
	// Workdir is the working directory for the dispatch.
	Workdir string `json:"workdir"`
	// DryRun requests a no-side-effect rehearsal from the backend.
	DryRun bool `json:"dry_run"`
}

// BridgeDispatchResult is the outcome of one adapter dispatch.
// Success=true implies ExitCode=0 by convention; the registry does not
// enforce it.
type BridgeDispatchResult struct {
	// Success is the adapter's own success signal.
	Success bool `json:"success"`
	// RawOutput is the captured output text (stdout+stderr for executors,
	// explanatory text for failures).
	RawOutput string `json:"raw_output"`
	// Artifacts lists every path the dispatch produced.
	Artifacts []string `json:"artifacts,omitempty"`
	// ExitCode is the backend process exit code; -1 when no process ran.
	ExitCode int `json:"exit_code"`
	// Metadata carries dispatch annotations such as metadata["route"].
	Metadata map[string]string `json:"metadata,omitempty"`
}
