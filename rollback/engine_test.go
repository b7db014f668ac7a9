package rollback

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/concord-run/concord/log"
	"github.com/concord-run/concord/snapshot"
)

// stubStore records restore calls and returns a scripted error.
type stubStore struct {
	restores   int
	restoreErr error
}

func (s *stubStore) Create(_ context.Context, label string) (*snapshot.Info, error) {
	return &snapshot.Info{ID: "stub", Label: label}, nil
}

func (s *stubStore) Restore(_ context.Context, _ string) error {
	s.restores++
	return s.restoreErr
}

func intPtr(n int) *int { return &n }

func TestRollback_SucceedsFirstAttempt(t *testing.T) {
	store := &stubStore{}
	engine := NewEngine(store, log.NewNop(), nil)

	err := engine.Rollback(t.Context(), "snap-1", Options{
		VerifyCommands: []string{"true"},
		Workdir:        t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Rollback = %v, want nil", err)
	}
	if store.restores != 1 {
		t.Errorf("restores = %d, want 1", store.restores)
	}
}

func TestRollback_VerifyFailureRetriesFullSequence(t *testing.T) {
	store := &stubStore{}
	engine := NewEngine(store, log.NewNop(), nil)

	// Restore always succeeds, verification always fails, retries=1:
	// exactly 2 full restore-then-verify cycles, then an exhausted error.
	err := engine.Rollback(t.Context(), "snap-2", Options{
		VerifyCommands: []string{"echo broken workspace; exit 7"},
		Retries:        intPtr(1),
		Workdir:        t.TempDir(),
	})
	if err == nil {
		t.Fatal("Rollback = nil, want exhausted error")
	}
	if store.restores != 2 {
		t.Errorf("restores = %d, want exactly 2", store.restores)
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("error type = %T, want *ExhaustedError", err)
	}
	if exhausted.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", exhausted.Attempts)
	}
	// The thrown error embeds the last verification failure's message.
	if !strings.Contains(err.Error(), "broken workspace") {
		t.Errorf("error %q does not embed the verify failure output", err)
	}
}

func TestRollback_StopsAtFirstFailingCommand(t *testing.T) {
	store := &stubStore{}
	engine := NewEngine(store, log.NewNop(), nil)

	marker := t.TempDir() + "/after-failure"
	err := engine.Rollback(t.Context(), "snap-3", Options{
		VerifyCommands: []string{"exit 1", "touch " + marker},
		Retries:        intPtr(0),
		Workdir:        t.TempDir(),
	})
	if err == nil {
		t.Fatal("Rollback = nil, want error")
	}
	if _, statErr := os.Stat(marker); statErr == nil {
		t.Error("command after the failing one still ran")
	}
}

func TestRollback_RestoreFailurePropagatesInMessage(t *testing.T) {
	store := &stubStore{restoreErr: errors.New("disk exploded")}
	engine := NewEngine(store, log.NewNop(), nil)

	err := engine.Rollback(t.Context(), "snap-4", Options{
		VerifyCommands: []string{"true"},
		Retries:        intPtr(0),
		Workdir:        t.TempDir(),
	})
	if err == nil {
		t.Fatal("Rollback = nil, want error")
	}
	if !strings.Contains(err.Error(), "disk exploded") {
		t.Errorf("error %q does not embed the restore failure", err)
	}
}

func TestRollback_DefaultRetryBudget(t *testing.T) {
	store := &stubStore{restoreErr: errors.New("nope")}
	engine := NewEngine(store, log.NewNop(), nil)

	// Nil retries means DefaultRetries (1 extra attempt).
	err := engine.Rollback(t.Context(), "snap-5", Options{Workdir: t.TempDir()})
	if err == nil {
		t.Fatal("Rollback = nil, want error")
	}
	if store.restores != 1+DefaultRetries {
		t.Errorf("restores = %d, want %d", store.restores, 1+DefaultRetries)
	}
}
