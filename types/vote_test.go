package types

import "testing"

func TestVoteValueIsValid(t *testing.T) {
	valid := []VoteValue{VoteApprove, VoteReject, VoteAbstain}
	for _, v := range valid {
		if !v.IsValid() {
			t.Errorf("IsValid(%s) = false, want true", v)
		}
	}

	invalid := []VoteValue{"", "yes", "APPROVE", "maybe"}
	for _, v := range invalid {
		if v.IsValid() {
			t.Errorf("IsValid(%q) = true, want false", v)
		}
	}
}

func TestProtocolIsValid(t *testing.T) {
	valid := []Protocol{ProtocolNone, ProtocolMCP, ProtocolAcpA2A, ProtocolAcpOpenCode, ProtocolAcpMesh}
	for _, p := range valid {
		if !p.IsValid() {
			t.Errorf("IsValid(%s) = false, want true", p)
		}
	}

	if Protocol("acp").IsValid() {
		t.Error("IsValid(acp) = true, want false")
	}
}

func TestPhaseIsValid(t *testing.T) {
	if !PhasePreExec.IsValid() || !PhasePostExec.IsValid() {
		t.Error("known phases should be valid")
	}
	if Phase("mid-exec").IsValid() {
		t.Error("IsValid(mid-exec) = true, want false")
	}
}
