// Package metrics provides per-process coordination metrics collection.
//
// The Collector accumulates counters across dispatches, mesh votes, and
// rollback attempts. It is a leaf package with no internal dependencies.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Coordination
	CoordinationsAttempted int64
	CoordinationsSucceeded int64
	CoordinationsFailed    int64

	// Adapter dispatch
	DispatchesSucceeded int64
	DispatchesFailed    int64

	// Mesh voting
	VotesByValue  map[string]int64
	QuorumReached int64
	QuorumMissed  int64

	// Transport probes
	ProbeFailures int64

	// Rollback
	RollbackAttempts  int64
	RollbackExhausted int64

	// Dimensions (informational, set at construction)
	Identity string
}

// Collector accumulates coordination metrics.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	coordinationsAttempted int64
	coordinationsSucceeded int64
	coordinationsFailed    int64

	dispatchesSucceeded int64
	dispatchesFailed    int64

	votesByValue  map[string]int64
	quorumReached int64
	quorumMissed  int64

	probeFailures int64

	rollbackAttempts  int64
	rollbackExhausted int64

	identity string
}

// NewCollector creates a Collector labeled with the coordinator identity.
func NewCollector(identity string) *Collector {
	return &Collector{
		votesByValue: make(map[string]int64),
		identity:     identity,
	}
}

// IncCoordination records one coordination call and its outcome.
func (c *Collector) IncCoordination(ok bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.coordinationsAttempted++
	if ok {
		c.coordinationsSucceeded++
	} else {
		c.coordinationsFailed++
	}
	c.mu.Unlock()
}

// IncDispatch records one adapter dispatch outcome.
func (c *Collector) IncDispatch(success bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	if success {
		c.dispatchesSucceeded++
	} else {
		c.dispatchesFailed++
	}
	c.mu.Unlock()
}

// IncVote records one mesh vote by value.
func (c *Collector) IncVote(value string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.votesByValue[value]++
	c.mu.Unlock()
}

// IncQuorum records one mesh consensus outcome.
func (c *Collector) IncQuorum(reached bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	if reached {
		c.quorumReached++
	} else {
		c.quorumMissed++
	}
	c.mu.Unlock()
}

// IncProbeFailure records a failed transport probe.
func (c *Collector) IncProbeFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.probeFailures++
	c.mu.Unlock()
}

// IncRollbackAttempt records one full restore-then-verify cycle.
func (c *Collector) IncRollbackAttempt() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.rollbackAttempts++
	c.mu.Unlock()
}

// IncRollbackExhausted records a rollback that consumed its retry budget.
func (c *Collector) IncRollbackExhausted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.rollbackExhausted++
	c.mu.Unlock()
}

// Snapshot returns an immutable point-in-time view of all counters.
// The Collector can continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	votes := make(map[string]int64, len(c.votesByValue))
	for k, v := range c.votesByValue {
		votes[k] = v
	}

	return Snapshot{
		CoordinationsAttempted: c.coordinationsAttempted,
		CoordinationsSucceeded: c.coordinationsSucceeded,
		CoordinationsFailed:    c.coordinationsFailed,

		DispatchesSucceeded: c.dispatchesSucceeded,
		DispatchesFailed:    c.dispatchesFailed,

		VotesByValue:  votes,
		QuorumReached: c.quorumReached,
		QuorumMissed:  c.quorumMissed,

		ProbeFailures: c.probeFailures,

		RollbackAttempts:  c.rollbackAttempts,
		RollbackExhausted: c.rollbackExhausted,

		Identity: c.identity,
	}
}
