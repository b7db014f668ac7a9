package acp_test

import (
	"testing"
	"time"

	"github.com/concord-run/concord/acp"
	"github.com/concord-run/concord/metrics"
)

func TestProbeTransport_RequiresBackend(t *testing.T) {
	if _, err := acp.NewProbeTransport(acp.NewValidator(), "", nil, 0, nil); err == nil {
		t.Error("NewProbeTransport with empty backend should fail")
	}
}

func TestProbeTransport_SuccessfulProbe(t *testing.T) {
	tr, err := acp.NewProbeTransport(acp.NewValidator(), "opencode", []string{"true"}, 0, nil)
	if err != nil {
		t.Fatalf("NewProbeTransport: %v", err)
	}

	result := tr.Dispatch(t.Context(), validMessage())
	if !result.OK {
		t.Fatalf("OK = false: %s", result.Details)
	}
	if result.Response["bridge"] != "subprocess" {
		t.Errorf("Response[bridge] = %v, want subprocess", result.Response["bridge"])
	}
	if result.Response["transport"] != "acp-opencode" {
		t.Errorf("Response[transport] = %v", result.Response["transport"])
	}
}

func TestProbeTransport_FailedProbeIsRetriable(t *testing.T) {
	collector := metrics.NewCollector("test")
	tr, err := acp.NewProbeTransport(acp.NewValidator(), "opencode",
		[]string{"sh", "-c", "echo backend offline >&2; exit 1"}, 0, collector)
	if err != nil {
		t.Fatalf("NewProbeTransport: %v", err)
	}

	result := tr.Dispatch(t.Context(), validMessage())
	if result.OK {
		t.Fatal("OK = true for failed probe")
	}
	if result.Error == nil {
		t.Fatal("Error = nil")
	}
	if result.Error.Code != "opencode.probe_failed" {
		t.Errorf("Code = %q, want opencode.probe_failed", result.Error.Code)
	}
	if !result.Error.Retriable {
		t.Error("probe failures are transient and must be retriable")
	}
	if collector.Snapshot().ProbeFailures != 1 {
		t.Errorf("ProbeFailures = %d, want 1", collector.Snapshot().ProbeFailures)
	}
}

func TestProbeTransport_MissingBinary(t *testing.T) {
	tr, err := acp.NewProbeTransport(acp.NewValidator(), "ghostbackend", nil, time.Second, nil)
	if err != nil {
		t.Fatalf("NewProbeTransport: %v", err)
	}

	// Default command is `ghostbackend --help`, which does not exist.
	result := tr.Dispatch(t.Context(), validMessage())
	if result.OK {
		t.Fatal("OK = true for missing backend binary")
	}
	if result.Error.Code != "ghostbackend.probe_failed" {
		t.Errorf("Code = %q", result.Error.Code)
	}
}
