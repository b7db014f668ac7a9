package coordinate_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/concord-run/concord/acp"
	"github.com/concord-run/concord/coordinate"
	"github.com/concord-run/concord/metrics"
	"github.com/concord-run/concord/types"
)

// recordingTransport captures the dispatched message and returns a canned
// result.
type recordingTransport struct {
	name   string
	result *types.AcpDispatchResult
	seen   *types.AcpMessage
}

func (t *recordingTransport) Name() string { return t.name }

func (t *recordingTransport) Dispatch(_ context.Context, m *types.AcpMessage) *types.AcpDispatchResult {
	t.seen = m
	return t.result
}

var _ acp.Transport = (*recordingTransport)(nil)

// stubRunner returns a canned tool-call outcome.
type stubRunner struct {
	result map[string]any
	err    error
	calls  int
}

func (r *stubRunner) Call(_ context.Context, _ *types.MCPCommand) (map[string]any, error) {
	r.calls++
	return r.result, r.err
}

func baseRequest(protocol types.Protocol) *types.CoordinationRequest {
	return &types.CoordinationRequest{
		Protocol:   protocol,
		Phase:      types.PhasePreExec,
		Workdir:    "/tmp/work",
		Adapter:    "claude-code",
		ContractID: "contract-9",
		StepCount:  4,
	}
}

func TestCoordinator_NoneIsDeliberateNoOp(t *testing.T) {
	c := coordinate.NewCoordinator(coordinate.Options{})

	result := c.Dispatch(t.Context(), baseRequest(types.ProtocolNone))
	if !result.OK {
		t.Error("OK = false for protocol none")
	}
	if result.Attempted {
		t.Error("Attempted = true for protocol none")
	}
	if result.Error != nil {
		t.Errorf("Error = %v", result.Error)
	}
}

// Every protocol except none reports Attempted=true, failures included.
func TestCoordinator_AllOtherProtocolsAttempt(t *testing.T) {
	c := coordinate.NewCoordinator(coordinate.Options{})

	protocols := []types.Protocol{
		types.ProtocolMCP,
		types.ProtocolAcpA2A,
		types.ProtocolAcpOpenCode,
		types.ProtocolAcpMesh,
		types.Protocol("made-up"),
	}
	for _, p := range protocols {
		t.Run(string(p), func(t *testing.T) {
			result := c.Dispatch(t.Context(), baseRequest(p))
			if !result.Attempted {
				t.Errorf("Attempted = false for protocol %s", p)
			}
		})
	}
}

func TestCoordinator_BuildsMessageForTransport(t *testing.T) {
	transport := &recordingTransport{
		name:   acp.TransportA2A,
		result: &types.AcpDispatchResult{OK: true, Response: map[string]any{"ack": true}},
	}
	c := coordinate.NewCoordinator(coordinate.Options{
		Transports: map[types.Protocol]acp.Transport{types.ProtocolAcpA2A: transport},
	})

	req := baseRequest(types.ProtocolAcpA2A)
	req.Payload = map[string]any{"summary": "step summary"}

	result := c.Dispatch(t.Context(), req)
	if !result.OK || !result.Attempted {
		t.Fatalf("result = %+v", result)
	}

	m := transport.seen
	if m == nil {
		t.Fatal("transport never received a message")
	}
	if m.ID != "contract-9-4-pre-exec" {
		t.Errorf("ID = %s, want contract-9-4-pre-exec", m.ID)
	}
	if m.Type != "coordination.pre-exec" {
		t.Errorf("Type = %s", m.Type)
	}
	if m.Source != coordinate.DefaultIdentity {
		t.Errorf("Source = %s", m.Source)
	}
	if m.Target != "claude-code" {
		t.Errorf("Target = %s", m.Target)
	}
	if m.CreatedAt == "" {
		t.Error("CreatedAt empty")
	}
	if m.Payload["summary"] != "step summary" {
		t.Errorf("Payload = %v", m.Payload)
	}
}

func TestCoordinator_TransportFailureMapsOntoResult(t *testing.T) {
	transport := &recordingTransport{
		name: acp.TransportMesh,
		result: &types.AcpDispatchResult{
			OK: false,
			Error: &types.AcpError{
				Code:    types.ErrCodeQuorumNotReached,
				Message: "quorum not reached",
			},
		},
	}
	c := coordinate.NewCoordinator(coordinate.Options{
		Transports: map[types.Protocol]acp.Transport{types.ProtocolAcpMesh: transport},
	})

	result := c.Dispatch(t.Context(), baseRequest(types.ProtocolAcpMesh))
	if result.OK {
		t.Error("OK = true for failed transport dispatch")
	}
	if !result.Attempted {
		t.Error("Attempted = false")
	}
	if result.Error == nil || result.Error.Code != types.ErrCodeQuorumNotReached {
		t.Errorf("Error = %v", result.Error)
	}
}

func TestCoordinator_MCPRoundTrip(t *testing.T) {
	runner := &stubRunner{result: map[string]any{"valid": true}}
	c := coordinate.NewCoordinator(coordinate.Options{Runner: runner})

	req := baseRequest(types.ProtocolMCP)
	req.MCP = &types.MCPCommand{Command: "concord", Args: []string{"serve-mcp"}, Tool: "contract.validate"}

	result := c.Dispatch(t.Context(), req)
	if !result.OK || !result.Attempted {
		t.Fatalf("result = %+v", result)
	}
	if result.Response["valid"] != true {
		t.Errorf("Response = %v", result.Response)
	}
	if runner.calls != 1 {
		t.Errorf("runner called %d times", runner.calls)
	}
}

func TestCoordinator_MCPFailureIsAttempted(t *testing.T) {
	runner := &stubRunner{err: fmt.Errorf("server exited with code 1")}
	c := coordinate.NewCoordinator(coordinate.Options{Runner: runner})

	req := baseRequest(types.ProtocolMCP)
	req.MCP = &types.MCPCommand{Command: "concord", Tool: "contract.validate"}

	result := c.Dispatch(t.Context(), req)
	if result.OK {
		t.Error("OK = true for failed tool call")
	}
	if !result.Attempted {
		t.Error("Attempted = false for failed tool call")
	}
	if result.Error == nil || result.Error.Code != "mcp.call_failed" {
		t.Errorf("Error = %v", result.Error)
	}
}

func TestCoordinator_InvalidPhase(t *testing.T) {
	c := coordinate.NewCoordinator(coordinate.Options{})

	req := baseRequest(types.ProtocolAcpA2A)
	req.Phase = types.Phase("mid-exec")

	result := c.Dispatch(t.Context(), req)
	if result.OK {
		t.Error("OK = true for invalid phase")
	}
	if !result.Attempted {
		t.Error("Attempted = false for invalid phase")
	}
	if result.Error == nil || result.Error.Code != types.ErrCodeInvalidMessage {
		t.Errorf("Error = %v", result.Error)
	}
}

func TestCoordinator_MetricsRecorded(t *testing.T) {
	collector := metrics.NewCollector("test")
	c := coordinate.NewCoordinator(coordinate.Options{Metrics: collector})

	c.Dispatch(t.Context(), baseRequest(types.ProtocolNone))
	c.Dispatch(t.Context(), baseRequest(types.Protocol("made-up")))

	snap := collector.Snapshot()
	if snap.CoordinationsAttempted != 2 {
		t.Errorf("CoordinationsAttempted = %d, want 2", snap.CoordinationsAttempted)
	}
	if snap.CoordinationsSucceeded != 1 || snap.CoordinationsFailed != 1 {
		t.Errorf("succeeded/failed = %d/%d, want 1/1", snap.CoordinationsSucceeded, snap.CoordinationsFailed)
	}
}
