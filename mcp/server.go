package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/concord-run/concord/log"
)

// maxLineBytes bounds one request line.
const maxLineBytes = 1024 * 1024

// Tool is one callable entry in the server's fixed surface.
type Tool interface {
	// Name is the tool identifier used in requests.
	Name() string
	// Describe is a one-line human-readable summary.
	Describe() string
	// Call invokes the tool with its argument object.
	Call(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Server serves tool calls over a line-oriented JSON stream.
// The tool surface is closed after construction.
type Server struct {
	tools  map[string]Tool
	order  []string
	logger *log.Logger
}

// NewServer builds a server over the given tools. Tool names must be unique
// and must not shadow the reserved list tool.
func NewServer(logger *log.Logger, tools ...Tool) (*Server, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Server{tools: make(map[string]Tool, len(tools)), logger: logger}
	for _, t := range tools {
		if t.Name() == ToolList {
			return nil, fmt.Errorf("tool name %q is reserved", ToolList)
		}
		if _, exists := s.tools[t.Name()]; exists {
			return nil, fmt.Errorf("duplicate tool name: %s", t.Name())
		}
		s.tools[t.Name()] = t
		s.order = append(s.order, t.Name())
	}
	return s, nil
}

// Serve reads request lines from r until EOF or context cancellation,
// writing one response line per request. Malformed lines produce an error
// response rather than terminating the stream.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			if encErr := encoder.Encode(Response{OK: false, Error: fmt.Sprintf("malformed request: %v", err)}); encErr != nil {
				return encErr
			}
			continue
		}

		resp := s.handle(ctx, &req)
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// handle dispatches one request to its tool.
func (s *Server) handle(ctx context.Context, req *Request) Response {
	if req.Tool == ToolList {
		entries := make([]map[string]any, 0, len(s.order))
		for _, name := range s.order {
			entries = append(entries, map[string]any{
				"name":        name,
				"description": s.tools[name].Describe(),
			})
		}
		return Response{ID: req.ID, OK: true, Result: map[string]any{"tools": entries}}
	}

	tool, ok := s.tools[req.Tool]
	if !ok {
		return Response{ID: req.ID, OK: false, Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
	}

	result, err := tool.Call(ctx, req.Arguments)
	if err != nil {
		s.logger.Warn("tool call failed", map[string]any{"tool": req.Tool, "error": err.Error()})
		return Response{ID: req.ID, OK: false, Error: err.Error()}
	}

	s.logger.Debug("tool call served", map[string]any{"tool": req.Tool})
	return Response{ID: req.ID, OK: true, Result: result}
}
