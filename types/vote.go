package types

// VoteValue is one validator's judgment on an artifact.
type VoteValue string

// The three legal vote values.
const (
	VoteApprove VoteValue = "approve"
	VoteReject  VoteValue = "reject"
	VoteAbstain VoteValue = "abstain"
)

// IsValid reports whether v is one of the three legal vote values.
func (v VoteValue) IsValid() bool {
	switch v {
	case VoteApprove, VoteReject, VoteAbstain:
		return true
	default:
		return false
	}
}

// Vote is one validator's judgment, derived either from structured output
// or from heuristic text inference.
type Vote struct {
	// Value is the judgment.
	Value VoteValue `json:"vote"`
	// Summary is the validator's reasoning, or the error text when the
	// validator could not be reached.
	Summary string `json:"summary"`
	// EvidenceRef points at the evidence the validator cites, if any.
	EvidenceRef string `json:"evidence_ref,omitempty"`
}

// ConsensusMode is the mesh consensus outcome reported in response.mode.
type ConsensusMode string

const (
	// ConsensusApproved means the approve count met the 2/3 threshold.
	ConsensusApproved ConsensusMode = "approved"
	// ConsensusNeedsHuman means quorum was not reached and a human must
	// approve the stage advance.
	ConsensusNeedsHuman ConsensusMode = "needs-human"
)
