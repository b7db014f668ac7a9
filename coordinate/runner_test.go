package coordinate_test

import (
	"strings"
	"testing"
	"time"

	"github.com/concord-run/concord/coordinate"
	"github.com/concord-run/concord/types"
)

func TestProcessRunner_RoundTrip(t *testing.T) {
	r := coordinate.NewProcessRunner(0, nil)

	result, err := r.Call(t.Context(), &types.MCPCommand{
		Command: "sh",
		Args:    []string{"-c", `read line; echo '{"id":1,"ok":true,"result":{"pong":true}}'`},
		Tool:    "ping",
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result["pong"] != true {
		t.Errorf("result = %v", result)
	}
}

func TestProcessRunner_ToolError(t *testing.T) {
	r := coordinate.NewProcessRunner(0, nil)

	_, err := r.Call(t.Context(), &types.MCPCommand{
		Command: "sh",
		Args:    []string{"-c", `read line; echo '{"id":1,"ok":false,"error":"no such contract"}'`},
		Tool:    "contract.validate",
	})
	if err == nil {
		t.Fatal("Call succeeded for a failed tool response")
	}
	if !strings.Contains(err.Error(), "no such contract") {
		t.Errorf("err = %v", err)
	}
}

func TestProcessRunner_ServerNeverResponds(t *testing.T) {
	r := coordinate.NewProcessRunner(0, nil)

	_, err := r.Call(t.Context(), &types.MCPCommand{Command: "true", Tool: "ping"})
	if err == nil {
		t.Fatal("Call succeeded with no response line")
	}
}

func TestProcessRunner_StartFailure(t *testing.T) {
	r := coordinate.NewProcessRunner(0, nil)

	_, err := r.Call(t.Context(), &types.MCPCommand{Command: "/no/such/server", Tool: "ping"})
	if err == nil {
		t.Fatal("Call succeeded for an unstartable server")
	}
}

func TestProcessRunner_Timeout(t *testing.T) {
	r := coordinate.NewProcessRunner(50*time.Millisecond, nil)

	start := time.Now()
	_, err := r.Call(t.Context(), &types.MCPCommand{Command: "sleep", Args: []string{"10"}, Tool: "ping"})
	if err == nil {
		t.Fatal("Call succeeded past its timeout")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Call took %v, timeout not applied", elapsed)
	}
}

func TestProcessRunner_RequiresSpec(t *testing.T) {
	r := coordinate.NewProcessRunner(0, nil)

	if _, err := r.Call(t.Context(), nil); err == nil {
		t.Error("Call(nil) should fail")
	}
	if _, err := r.Call(t.Context(), &types.MCPCommand{Command: "sh"}); err == nil {
		t.Error("Call without a tool name should fail")
	}
}
