package metrics

import (
	"sync"
	"testing"
)

func TestCollector_NilReceiverSafe(t *testing.T) {
	var c *Collector

	// None of these may panic.
	c.IncCoordination(true)
	c.IncDispatch(false)
	c.IncVote("approve")
	c.IncQuorum(true)
	c.IncProbeFailure()
	c.IncRollbackAttempt()
	c.IncRollbackExhausted()

	snap := c.Snapshot()
	if snap.CoordinationsAttempted != 0 {
		t.Errorf("nil collector recorded %d coordinations", snap.CoordinationsAttempted)
	}
}

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("concord-coordinator")

	c.IncCoordination(true)
	c.IncCoordination(false)
	c.IncVote("approve")
	c.IncVote("approve")
	c.IncVote("abstain")
	c.IncQuorum(true)
	c.IncRollbackAttempt()
	c.IncRollbackAttempt()
	c.IncRollbackExhausted()

	snap := c.Snapshot()
	if snap.CoordinationsAttempted != 2 || snap.CoordinationsSucceeded != 1 || snap.CoordinationsFailed != 1 {
		t.Errorf("coordination counters = %d/%d/%d, want 2/1/1",
			snap.CoordinationsAttempted, snap.CoordinationsSucceeded, snap.CoordinationsFailed)
	}
	if snap.VotesByValue["approve"] != 2 || snap.VotesByValue["abstain"] != 1 {
		t.Errorf("vote counters = %v", snap.VotesByValue)
	}
	if snap.RollbackAttempts != 2 || snap.RollbackExhausted != 1 {
		t.Errorf("rollback counters = %d/%d, want 2/1", snap.RollbackAttempts, snap.RollbackExhausted)
	}
	if snap.Identity != "concord-coordinator" {
		t.Errorf("Identity = %q", snap.Identity)
	}
}

func TestCollector_SnapshotDefensiveCopy(t *testing.T) {
	c := NewCollector("x")
	c.IncVote("reject")

	snap := c.Snapshot()
	snap.VotesByValue["reject"] = 999

	if c.Snapshot().VotesByValue["reject"] != 1 {
		t.Error("Snapshot map is not a defensive copy")
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector("x")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncVote("approve")
			c.IncDispatch(true)
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.VotesByValue["approve"] != 50 {
		t.Errorf("approve votes = %d, want 50", snap.VotesByValue["approve"])
	}
	if snap.DispatchesSucceeded != 50 {
		t.Errorf("dispatches = %d, want 50", snap.DispatchesSucceeded)
	}
}
