package coordinate

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/concord-run/concord/log"
	"github.com/concord-run/concord/mcp"
	"github.com/concord-run/concord/types"
)

// DefaultToolCallTimeout bounds one tool-server round trip.
const DefaultToolCallTimeout = 30 * time.Second

// Runner performs one MCP tool call.
type Runner interface {
	Call(ctx context.Context, spec *types.MCPCommand) (map[string]any, error)
}

// ProcessRunner spawns the tool server described by the command spec, sends
// one request line, and reads one response line. The server process is torn
// down after the call.
type ProcessRunner struct {
	timeout time.Duration
	logger  *log.Logger
}

// NewProcessRunner creates a runner. A zero timeout means
// DefaultToolCallTimeout.
func NewProcessRunner(timeout time.Duration, logger *log.Logger) *ProcessRunner {
	if timeout <= 0 {
		timeout = DefaultToolCallTimeout
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &ProcessRunner{timeout: timeout, logger: logger}
}

// Call runs one request/response round trip against a freshly spawned server.
func (r *ProcessRunner) Call(ctx context.Context, spec *types.MCPCommand) (map[string]any, error) {
	if spec == nil || spec.Command == "" {
		return nil, fmt.Errorf("tool server command is required")
	}
	if spec.Tool == "" {
		return nil, fmt.Errorf("tool name is required")
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(callCtx, spec.Command, spec.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open server stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open server stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start tool server %s: %w", spec.Command, err)
	}

	request := mcp.Request{ID: 1, Tool: spec.Tool, Arguments: spec.Arguments}
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encode tool request: %w", err)
	}
	if _, err := stdin.Write(append(payload, '\n')); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("send tool request: %w", err)
	}
	_ = stdin.Close()

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	if !scanner.Scan() {
		_ = cmd.Wait()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read tool response: %w", err)
		}
		if err := callCtx.Err(); err != nil {
			return nil, fmt.Errorf("tool server timed out: %w", err)
		}
		return nil, fmt.Errorf("tool server closed the stream without responding")
	}
	line := scanner.Bytes()

	var response mcp.Response
	if err := json.Unmarshal(line, &response); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, fmt.Errorf("decode tool response: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		r.logger.Warn("tool server exited abnormally", map[string]any{
			"command": spec.Command,
			"error":   err.Error(),
		})
	}

	if !response.OK {
		return nil, fmt.Errorf("tool %s failed: %s", spec.Tool, response.Error)
	}
	return response.Result, nil
}

// Verify ProcessRunner implements the runner boundary.
var _ Runner = (*ProcessRunner)(nil)
