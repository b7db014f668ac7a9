// Package mcp implements the coordination tool server and its wire shapes.
//
// Framing is one JSON object per line over stdio: a Request line in, a
// Response line out. The tool surface is fixed at server construction.
package mcp

// Request is one tool invocation.
type Request struct {
	// ID correlates the response. Echoed back verbatim.
	ID int64 `json:"id"`
	// Tool names the tool to invoke, e.g. "contract.validate".
	Tool string `json:"tool"`
	// Arguments is the tool's typed argument object.
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Response is one tool invocation outcome.
// OK=false implies Error is non-empty.
type Response struct {
	ID     int64          `json:"id"`
	OK     bool           `json:"ok"`
	Result map[string]any `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// ToolList is the reserved tool name that enumerates the server's surface.
const ToolList = "tools.list"
