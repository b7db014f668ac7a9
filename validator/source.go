// Package validator implements the independent out-of-process judges that
// produce votes for mesh consensus.
//
// A source never returns an error: any invocation failure (binary missing,
// timeout, non-zero exit) is converted into an abstain vote carrying the
// error text, so a single validator outage cannot abort the quorum.
package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/concord-run/concord/iox"
	"github.com/concord-run/concord/types"
)

// DefaultTimeout bounds one validator invocation.
const DefaultTimeout = 30 * time.Second

// maxJudgeOutput bounds captured validator output.
const maxJudgeOutput = 64 * 1024

// Source produces exactly one vote for a mesh dispatch.
type Source interface {
	// Name identifies the validator in tallies and logs.
	Name() string

	// Collect invokes the validator for the given message and returns its
	// vote. Must respect ctx; expiry yields an abstain, never a hang.
	Collect(ctx context.Context, m *types.AcpMessage) types.Vote
}

// instruction is the structured request written to a judge's stdin.
type instruction struct {
	Instruction string         `json:"instruction"`
	MessageID   string         `json:"message_id"`
	Artifact    string         `json:"artifact"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// judgePrompt tells the validator how to respond.
const judgePrompt = "Review the artifact and respond with JSON: " +
	`{"vote": "approve"|"reject"|"abstain", "summary": "...", "evidence_ref": "..."}`

// CLIJudge invokes a judge binary as an external process.
// The judge receives a structured-JSON instruction plus the artifact text on
// stdin and is expected to emit a vote object on stdout; free-text output is
// classified heuristically.
type CLIJudge struct {
	name    string
	command []string
	timeout time.Duration
}

// NewCLIJudge creates a CLI-backed vote source.
// command is the argv of the judge entry point; a zero timeout means
// DefaultTimeout.
func NewCLIJudge(name string, command []string, timeout time.Duration) (*CLIJudge, error) {
	if name == "" {
		return nil, fmt.Errorf("validator requires a name")
	}
	if len(command) == 0 {
		return nil, fmt.Errorf("validator %q requires a command", name)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CLIJudge{name: name, command: command, timeout: timeout}, nil
}

// Name identifies the validator.
func (j *CLIJudge) Name() string { return j.name }

// Collect runs the judge and derives a vote from its output.
func (j *CLIJudge) Collect(ctx context.Context, m *types.AcpMessage) types.Vote {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	artifact, _ := m.Payload["artifact"].(string)
	input, err := json.Marshal(instruction{
		Instruction: judgePrompt,
		MessageID:   m.ID,
		Artifact:    artifact,
		Payload:     m.Payload,
	})
	if err != nil {
		return types.Vote{Value: types.VoteAbstain, Summary: fmt.Sprintf("encode instruction: %v", err)}
	}

	cmd := exec.CommandContext(ctx, j.command[0], j.command[1:]...)
	cmd.Stdin = bytes.NewReader(input)

	out, err := cmd.CombinedOutput()
	output := iox.Truncate(string(out), maxJudgeOutput)
	if err != nil {
		// Validator outage is never a hard failure; record what happened.
		summary := fmt.Sprintf("validator %s failed: %v", j.name, err)
		if output != "" {
			summary = fmt.Sprintf("%s: %s", summary, output)
		}
		return types.Vote{Value: types.VoteAbstain, Summary: summary}
	}

	return ParseVote(output)
}

// Verify CLIJudge implements the source boundary.
var _ Source = (*CLIJudge)(nil)
