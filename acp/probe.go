package acp

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/concord-run/concord/iox"
	"github.com/concord-run/concord/metrics"
	"github.com/concord-run/concord/types"
)

// DefaultProbeTimeout bounds one backend introspection call.
const DefaultProbeTimeout = 15 * time.Second

// maxProbeOutput bounds captured probe output.
const maxProbeOutput = 16 * 1024

// ProbeTransport delivers messages to a backend reached over a subprocess
// bridge. Before acknowledging, it probes the backend's help/introspection
// command; a failed probe is a transient infrastructure failure and is
// reported retriable.
type ProbeTransport struct {
	validator *Validator
	backend   string
	command   []string
	timeout   time.Duration
	metrics   *metrics.Collector
}

// NewProbeTransport creates a subprocess-probed transport for the named
// backend. command defaults to `<backend> --help`; a zero timeout means
// DefaultProbeTimeout. metrics may be nil.
func NewProbeTransport(v *Validator, backend string, command []string, timeout time.Duration, collector *metrics.Collector) (*ProbeTransport, error) {
	if backend == "" {
		return nil, fmt.Errorf("probe transport requires a backend name")
	}
	if len(command) == 0 {
		command = []string{backend, "--help"}
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &ProbeTransport{
		validator: v,
		backend:   backend,
		command:   command,
		timeout:   timeout,
		metrics:   collector,
	}, nil
}

// Name returns the transport identifier.
func (t *ProbeTransport) Name() string { return "acp-" + t.backend }

// Dispatch validates the message, probes the backend, and acknowledges.
func (t *ProbeTransport) Dispatch(ctx context.Context, m *types.AcpMessage) *types.AcpDispatchResult {
	if violations := t.validator.Validate(m); len(violations) > 0 {
		return invalidMessageResult(violations)
	}

	probeCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, t.command[0], t.command[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.metrics.IncProbeFailure()
		details := []string{err.Error()}
		if output := iox.Truncate(string(out), maxProbeOutput); output != "" {
			details = append(details, output)
		}
		return &types.AcpDispatchResult{
			OK:      false,
			Details: fmt.Sprintf("%s backend unreachable", t.backend),
			Error: &types.AcpError{
				Code:      t.backend + ".probe_failed",
				Message:   fmt.Sprintf("%s probe failed: %v", t.backend, err),
				Details:   details,
				Retriable: true,
			},
		}
	}

	return &types.AcpDispatchResult{
		OK:      true,
		Details: fmt.Sprintf("message %s acknowledged via %s subprocess bridge", m.ID, t.backend),
		Response: map[string]any{
			"ack":        true,
			"message_id": m.ID,
			"transport":  t.Name(),
			"bridge":     "subprocess",
		},
	}
}

// Verify ProbeTransport implements the transport boundary.
var _ Transport = (*ProbeTransport)(nil)
