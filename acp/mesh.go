package acp

import (
	"context"
	"fmt"
	"time"

	"github.com/concord-run/concord/log"
	"github.com/concord-run/concord/metrics"
	"github.com/concord-run/concord/types"
	"github.com/concord-run/concord/validator"
)

// DefaultVoteTimeout bounds one validator's vote collection.
const DefaultVoteTimeout = 60 * time.Second

// MeshTransport is the quorum-consensus transport. A dispatch fans the
// message out to every configured vote source in parallel and applies the
// 2/3-majority rule over the collected votes.
//
// The policy trades availability for safety: a minority of disagreeing or
// non-responsive validators cannot force approval, and insufficient
// majority always escalates to a human.
type MeshTransport struct {
	validator   *Validator
	sources     []validator.Source
	voteTimeout time.Duration
	logger      *log.Logger
	metrics     *metrics.Collector
}

// NewMeshTransport creates the mesh transport over the given vote sources.
// A zero voteTimeout means DefaultVoteTimeout. metrics may be nil.
func NewMeshTransport(v *Validator, sources []validator.Source, voteTimeout time.Duration, logger *log.Logger, collector *metrics.Collector) *MeshTransport {
	if voteTimeout <= 0 {
		voteTimeout = DefaultVoteTimeout
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &MeshTransport{
		validator:   v,
		sources:     sources,
		voteTimeout: voteTimeout,
		logger:      logger,
		metrics:     collector,
	}
}

// Name returns the transport identifier.
func (t *MeshTransport) Name() string { return TransportMesh }

// QuorumThreshold returns the approve count required for consensus over
// total eligible votes: ceil(2/3 * total).
func QuorumThreshold(total int) int {
	return (2*total + 2) / 3
}

// Dispatch validates the message, collects votes in parallel, and applies
// the majority rule. Vote collection is bounded by the slowest single
// validator, not their sum; each invocation is independently timeout-bounded
// and its failure is isolated as an abstain.
func (t *MeshTransport) Dispatch(ctx context.Context, m *types.AcpMessage) *types.AcpDispatchResult {
	if violations := t.validator.Validate(m); len(violations) > 0 {
		return invalidMessageResult(violations)
	}

	if len(t.sources) == 0 {
		t.metrics.IncQuorum(false)
		return &types.AcpDispatchResult{
			OK:      false,
			Details: "no validators configured; human approval is required",
			Response: map[string]any{
				"mode":       string(types.ConsensusNeedsHuman),
				"message_id": m.ID,
				"transport":  TransportMesh,
			},
			Error: &types.AcpError{
				Code:      types.ErrCodeQuorumNotReached,
				Message:   "quorum not reached: no validators configured",
				Retriable: false,
			},
		}
	}

	votes, deadlineHit := t.collect(ctx, m)
	tally := tallyVotes(t.sources, votes)
	for _, entry := range tally.entries {
		t.metrics.IncVote(entry.vote)
	}

	eligible := len(votes)
	threshold := QuorumThreshold(eligible)
	approved := tally.approve >= threshold

	t.logger.Info("mesh consensus tallied", map[string]any{
		"message_id": m.ID,
		"approve":    tally.approve,
		"reject":     tally.reject,
		"abstain":    tally.abstain,
		"threshold":  threshold,
		"approved":   approved && !deadlineHit,
	})

	response := map[string]any{
		"message_id": m.ID,
		"transport":  TransportMesh,
		"eligible":   eligible,
		"threshold":  threshold,
		"approve":    tally.approve,
		"reject":     tally.reject,
		"abstain":    tally.abstain,
		"votes":      tally.detail(),
	}

	// A deadline cut the collection short: never report a false approval.
	if deadlineHit {
		t.metrics.IncQuorum(false)
		response["mode"] = string(types.ConsensusNeedsHuman)
		return &types.AcpDispatchResult{
			OK:       false,
			Details:  "mesh deadline expired before all votes arrived; human approval is required",
			Response: response,
			Error: &types.AcpError{
				Code:      types.ErrCodeDeadlineExceeded,
				Message:   fmt.Sprintf("deadline expired with %d of %d votes pending", tally.pending, eligible),
				Retriable: true,
			},
		}
	}

	t.metrics.IncQuorum(approved)
	if approved {
		response["mode"] = string(types.ConsensusApproved)
		return &types.AcpDispatchResult{
			OK:       true,
			Details:  fmt.Sprintf("quorum reached: %d of %d approvals (threshold %d)", tally.approve, eligible, threshold),
			Response: response,
		}
	}

	response["mode"] = string(types.ConsensusNeedsHuman)
	details := fmt.Sprintf("quorum not reached: %d of %d approvals (threshold %d); human approval is required",
		tally.approve, eligible, threshold)
	return &types.AcpDispatchResult{
		OK:       false,
		Details:  details,
		Response: response,
		Error: &types.AcpError{
			Code:      types.ErrCodeQuorumNotReached,
			Message:   details,
			Retriable: false,
		},
	}
}

// collectedVote pairs a vote slot with its completion flag.
type collectedVote struct {
	vote types.Vote
	done bool
}

// collect fans the message out to every source in parallel and waits for
// all votes or the caller's deadline, whichever comes first. Slots still
// pending at deadline expiry are abstains.
func (t *MeshTransport) collect(ctx context.Context, m *types.AcpMessage) ([]collectedVote, bool) {
	votes := make([]types.Vote, len(t.sources))
	done := make(chan int, len(t.sources))

	for i, src := range t.sources {
		go func(i int, src validator.Source) {
			voteCtx, cancel := context.WithTimeout(ctx, t.voteTimeout)
			defer cancel()
			votes[i] = src.Collect(voteCtx, m)
			done <- i
		}(i, src)
	}

	collected := make([]collectedVote, len(t.sources))
	remaining := len(t.sources)
	deadlineHit := false

	for remaining > 0 {
		select {
		case i := <-done:
			// Safe to read: the writing goroutine signaled completion.
			collected[i] = collectedVote{vote: votes[i], done: true}
			remaining--
		case <-ctx.Done():
			deadlineHit = true
			remaining = 0
		}
	}

	return collected, deadlineHit
}

// voteTally aggregates collected votes for the majority rule.
type voteTally struct {
	approve int
	reject  int
	abstain int
	pending int
	entries []tallyEntry
}

// tallyEntry is one validator's line in the response detail.
type tallyEntry struct {
	name    string
	vote    string
	summary string
}

// tallyVotes folds the collected slots into counts. Pending slots count as
// abstain: they stay in the denominator but never toward approval.
func tallyVotes(sources []validator.Source, votes []collectedVote) voteTally {
	var tally voteTally
	for i, cv := range votes {
		vote := cv.vote
		if !cv.done {
			vote = types.Vote{Value: types.VoteAbstain, Summary: "no response before deadline"}
			tally.pending++
		}

		switch vote.Value {
		case types.VoteApprove:
			tally.approve++
		case types.VoteReject:
			tally.reject++
		default:
			tally.abstain++
		}

		tally.entries = append(tally.entries, tallyEntry{
			name:    sources[i].Name(),
			vote:    string(vote.Value),
			summary: vote.Summary,
		})
	}
	return tally
}

// detail renders the per-validator entries for the response map.
func (t voteTally) detail() []map[string]any {
	out := make([]map[string]any, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, map[string]any{
			"validator": e.name,
			"vote":      e.vote,
			"summary":   e.summary,
		})
	}
	return out
}

// Verify MeshTransport implements the transport boundary.
var _ Transport = (*MeshTransport)(nil)
