package mcp_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/concord-run/concord/mcp"
	"github.com/concord-run/concord/snapshot"
)

// roundTrip serves the given request lines and decodes one response per line.
func roundTrip(t *testing.T, s *mcp.Server, requests ...mcp.Request) []mcp.Response {
	t.Helper()

	var in bytes.Buffer
	enc := json.NewEncoder(&in)
	for _, req := range requests {
		if err := enc.Encode(req); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	var out bytes.Buffer
	if err := s.Serve(t.Context(), &in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	var responses []mcp.Response
	dec := json.NewDecoder(&out)
	for dec.More() {
		var resp mcp.Response
		if err := dec.Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		responses = append(responses, resp)
	}
	if len(responses) != len(requests) {
		t.Fatalf("got %d responses for %d requests", len(responses), len(requests))
	}
	return responses
}

func newServer(t *testing.T) *mcp.Server {
	t.Helper()
	store, err := snapshot.NewFSStore(filepath.Join(t.TempDir(), "snapshots"), t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	s, err := mcp.NewServer(nil, mcp.DefaultTools(store)...)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestServer_ToolList(t *testing.T) {
	s := newServer(t)

	resp := roundTrip(t, s, mcp.Request{ID: 1, Tool: mcp.ToolList})[0]
	if !resp.OK {
		t.Fatalf("tools.list failed: %s", resp.Error)
	}
	tools, ok := resp.Result["tools"].([]any)
	if !ok || len(tools) != 4 {
		t.Fatalf("tools = %v, want 4 entries", resp.Result["tools"])
	}
}

func TestServer_UnknownTool(t *testing.T) {
	s := newServer(t)

	resp := roundTrip(t, s, mcp.Request{ID: 7, Tool: "no.such.tool"})[0]
	if resp.OK {
		t.Fatal("OK = true for unknown tool")
	}
	if resp.ID != 7 {
		t.Errorf("ID = %d, want 7", resp.ID)
	}
	if !strings.Contains(resp.Error, "unknown tool") {
		t.Errorf("Error = %q", resp.Error)
	}
}

func TestServer_MalformedLineDoesNotTerminateStream(t *testing.T) {
	s := newServer(t)

	in := strings.NewReader("this is not json\n" + `{"id":2,"tool":"tools.list"}` + "\n")
	var out bytes.Buffer
	if err := s.Serve(t.Context(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d response lines, want 2", len(lines))
	}

	var first, second mcp.Response
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first response: %v", err)
	}
	if first.OK {
		t.Error("malformed line should yield an error response")
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("second response: %v", err)
	}
	if !second.OK {
		t.Errorf("stream should keep serving after a malformed line: %s", second.Error)
	}
}

func TestContractValidateTool(t *testing.T) {
	s := newServer(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "contract.yaml")
	if err := os.WriteFile(good, []byte("id: contract-9\nsteps:\n  - summary: do the work\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	bad := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(bad, []byte("name: no id or steps\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	responses := roundTrip(t, s,
		mcp.Request{ID: 1, Tool: "contract.validate", Arguments: map[string]any{"path": good}},
		mcp.Request{ID: 2, Tool: "contract.validate", Arguments: map[string]any{"path": bad}},
	)

	if !responses[0].OK || responses[0].Result["valid"] != true {
		t.Errorf("good contract: %+v", responses[0])
	}
	if !responses[1].OK || responses[1].Result["valid"] != false {
		t.Errorf("bad contract: %+v", responses[1])
	}
}

func TestPlanGenerateTool(t *testing.T) {
	s := newServer(t)

	resp := roundTrip(t, s, mcp.Request{
		ID: 1, Tool: "plan.generate",
		Arguments: map[string]any{"goal": "add retry handling"},
	})[0]
	if !resp.OK {
		t.Fatalf("plan.generate failed: %s", resp.Error)
	}
	steps, ok := resp.Result["steps"].([]any)
	if !ok || len(steps) != 3 {
		t.Fatalf("steps = %v, want 3", resp.Result["steps"])
	}
}

func TestProgressReadTool(t *testing.T) {
	s := newServer(t)
	dir := t.TempDir()

	stepsDir := filepath.Join(dir, "steps")
	if err := os.MkdirAll(stepsDir, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	for _, name := range []string{"step-1.json", "step-2.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(stepsDir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	resp := roundTrip(t, s, mcp.Request{
		ID: 1, Tool: "progress.read", Arguments: map[string]any{"dir": dir},
	})[0]
	if !resp.OK {
		t.Fatalf("progress.read failed: %s", resp.Error)
	}
	if resp.Result["steps"] != float64(2) {
		t.Errorf("steps = %v, want 2", resp.Result["steps"])
	}

	empty := roundTrip(t, s, mcp.Request{
		ID: 2, Tool: "progress.read", Arguments: map[string]any{"dir": t.TempDir()},
	})[0]
	if !empty.OK || empty.Result["steps"] != float64(0) {
		t.Errorf("empty dir: %+v", empty)
	}
}

func TestSnapshotCreateTool(t *testing.T) {
	workdir := t.TempDir()
	if err := os.WriteFile(filepath.Join(workdir, "main.go"), []byte("package main\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	store, err := snapshot.NewFSStore(filepath.Join(t.TempDir(), "snapshots"), workdir)
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	s, err := mcp.NewServer(nil, mcp.DefaultTools(store)...)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	resp := roundTrip(t, s, mcp.Request{
		ID: 1, Tool: "snapshot.create", Arguments: map[string]any{"label": "before-step-2"},
	})[0]
	if !resp.OK {
		t.Fatalf("snapshot.create failed: %s", resp.Error)
	}
	if resp.Result["id"] == "" || resp.Result["label"] != "before-step-2" {
		t.Errorf("Result = %+v", resp.Result)
	}
}
