// Package coordinate implements the protocol dispatch coordinator.
//
// The coordinator is the single entry point for running a coordination phase
// around step execution. Depending on the request's protocol it no-ops,
// round-trips an MCP tool server, or builds an ACP message and hands it to a
// transport. Every call returns a result object; callers never need a
// recover path to learn that coordination failed.
package coordinate

import (
	"context"
	"fmt"
	"time"

	"github.com/concord-run/concord/acp"
	"github.com/concord-run/concord/log"
	"github.com/concord-run/concord/metrics"
	"github.com/concord-run/concord/types"
)

// DefaultIdentity is the coordinator's source identity on ACP messages.
const DefaultIdentity = "concord-coordinator"

// Coordinator routes coordination requests to the configured transports.
type Coordinator struct {
	identity   string
	transports map[types.Protocol]acp.Transport
	runner     Runner
	logger     *log.Logger
	metrics    *metrics.Collector
	now        func() time.Time
}

// Options configures a Coordinator. Zero values pick defaults.
type Options struct {
	// Identity is the source identity stamped on outgoing messages.
	Identity string
	// Transports maps ACP protocols to their transports.
	Transports map[types.Protocol]acp.Transport
	// Runner performs MCP tool calls. Required only for ProtocolMCP.
	Runner Runner
	// Logger may be nil.
	Logger *log.Logger
	// Metrics may be nil.
	Metrics *metrics.Collector
}

// NewCoordinator creates a coordinator from options.
func NewCoordinator(opts Options) *Coordinator {
	if opts.Identity == "" {
		opts.Identity = DefaultIdentity
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNop()
	}
	return &Coordinator{
		identity:   opts.Identity,
		transports: opts.Transports,
		runner:     opts.Runner,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		now:        time.Now,
	}
}

// Dispatch runs one coordination phase. Protocol "none" is a deliberate
// no-op with Attempted=false; every other protocol reports Attempted=true,
// validation failures included.
func (c *Coordinator) Dispatch(ctx context.Context, req *types.CoordinationRequest) *types.CoordinationResult {
	result := c.dispatch(ctx, req)
	c.metrics.IncCoordination(result.OK)
	c.logger.Debug("coordination dispatched", map[string]any{
		"protocol":  string(req.Protocol),
		"phase":     string(req.Phase),
		"adapter":   req.Adapter,
		"contract":  req.ContractID,
		"ok":        result.OK,
		"attempted": result.Attempted,
	})
	return result
}

func (c *Coordinator) dispatch(ctx context.Context, req *types.CoordinationRequest) *types.CoordinationResult {
	if req.Protocol == types.ProtocolNone {
		return &types.CoordinationResult{OK: true, Attempted: false}
	}

	if !req.Protocol.IsValid() {
		return &types.CoordinationResult{
			OK:        false,
			Attempted: true,
			Error: &types.AcpError{
				Code:      types.ErrCodeUnsupportedProtocol,
				Message:   fmt.Sprintf("unsupported protocol: %s", req.Protocol),
				Retriable: false,
			},
		}
	}

	if !req.Phase.IsValid() {
		return &types.CoordinationResult{
			OK:        false,
			Attempted: true,
			Error: &types.AcpError{
				Code:      types.ErrCodeInvalidMessage,
				Message:   fmt.Sprintf("unknown coordination phase: %s", req.Phase),
				Retriable: false,
			},
		}
	}

	if req.Protocol == types.ProtocolMCP {
		return c.dispatchMCP(ctx, req)
	}
	return c.dispatchACP(ctx, req)
}

// dispatchMCP round-trips the configured tool server. Start failures and
// tool errors surface as ordinary failed results.
func (c *Coordinator) dispatchMCP(ctx context.Context, req *types.CoordinationRequest) *types.CoordinationResult {
	if c.runner == nil {
		return &types.CoordinationResult{
			OK:        false,
			Attempted: true,
			Error: &types.AcpError{
				Code:      "mcp.call_failed",
				Message:   "no tool runner configured",
				Retriable: false,
			},
		}
	}

	response, err := c.runner.Call(ctx, req.MCP)
	if err != nil {
		return &types.CoordinationResult{
			OK:        false,
			Attempted: true,
			Error: &types.AcpError{
				Code:      "mcp.call_failed",
				Message:   err.Error(),
				Retriable: true,
			},
		}
	}
	return &types.CoordinationResult{OK: true, Attempted: true, Response: response}
}

// dispatchACP builds the coordination message and hands it to the matching
// transport.
func (c *Coordinator) dispatchACP(ctx context.Context, req *types.CoordinationRequest) *types.CoordinationResult {
	transport, ok := c.transports[req.Protocol]
	if !ok {
		return &types.CoordinationResult{
			OK:        false,
			Attempted: true,
			Error: &types.AcpError{
				Code:      types.ErrCodeUnsupportedProtocol,
				Message:   fmt.Sprintf("no transport configured for protocol %s", req.Protocol),
				Retriable: false,
			},
		}
	}

	message := c.buildMessage(req)
	dispatch := transport.Dispatch(ctx, message)
	return &types.CoordinationResult{
		OK:        dispatch.OK,
		Attempted: true,
		Response:  dispatch.Response,
		Error:     dispatch.Error,
	}
}

// buildMessage derives the ACP message from the request: the id encodes
// contract, plan size, and phase; the type carries the phase.
func (c *Coordinator) buildMessage(req *types.CoordinationRequest) *types.AcpMessage {
	return &types.AcpMessage{
		ID:        fmt.Sprintf("%s-%d-%s", req.ContractID, req.StepCount, req.Phase),
		Type:      "coordination." + string(req.Phase),
		Payload:   req.Payload,
		Source:    c.identity,
		Target:    req.Adapter,
		CreatedAt: c.now().UTC().Format(time.RFC3339Nano),
	}
}
