package validator

import (
	"encoding/json"
	"strings"

	"github.com/concord-run/concord/iox"
	"github.com/concord-run/concord/types"
)

// maxSummaryLen bounds summaries derived from free-text output.
const maxSummaryLen = 512

// structuredVote is the JSON shape a well-behaved judge emits.
type structuredVote struct {
	Vote        string `json:"vote"`
	Summary     string `json:"summary"`
	EvidenceRef string `json:"evidence_ref"`
}

// ParseVote extracts a vote from judge output.
// Structured JSON is tried first; when parsing fails or the declared vote is
// not a legal value, the output falls through to ClassifyVoteText.
func ParseVote(output string) types.Vote {
	if sv, ok := decodeStructured(output); ok {
		value := types.VoteValue(strings.ToLower(strings.TrimSpace(sv.Vote)))
		if value.IsValid() {
			return types.Vote{Value: value, Summary: sv.Summary, EvidenceRef: sv.EvidenceRef}
		}
	}

	return types.Vote{
		Value:   ClassifyVoteText(output),
		Summary: iox.Truncate(strings.TrimSpace(output), maxSummaryLen),
	}
}

// decodeStructured tries the whole output as JSON, then the widest
// brace-delimited slice (judges often wrap JSON in prose).
func decodeStructured(output string) (structuredVote, bool) {
	var sv structuredVote
	trimmed := strings.TrimSpace(output)
	if err := json.Unmarshal([]byte(trimmed), &sv); err == nil && sv.Vote != "" {
		return sv, true
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(trimmed[start:end+1]), &sv); err == nil && sv.Vote != "" {
			return sv, true
		}
	}
	return structuredVote{}, false
}

// rejectTokens mark free-text output as a rejection.
var rejectTokens = []string{"reject", "fail", "failure", "error", "deny", "denied", "block", "broken"}

// abstainTokens mark free-text output as an abstention.
var abstainTokens = []string{"abstain", "unknown", "uncertain", "unsure", "cannot determine", "inconclusive"}

// ClassifyVoteText is the heuristic fallback classifier for free-text judge
// output. Reject-like tokens win over abstain-like tokens; anything else is
// an approval.
func ClassifyVoteText(text string) types.VoteValue {
	lower := strings.ToLower(text)

	for _, token := range rejectTokens {
		if strings.Contains(lower, token) {
			return types.VoteReject
		}
	}
	for _, token := range abstainTokens {
		if strings.Contains(lower, token) {
			return types.VoteAbstain
		}
	}
	return types.VoteApprove
}
