// Package rollback implements the retry-protected restore-then-verify
// safety net invoked when post-execution verification fails.
package rollback

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/concord-run/concord/iox"
	"github.com/concord-run/concord/log"
	"github.com/concord-run/concord/metrics"
	"github.com/concord-run/concord/snapshot"
)

// DefaultRetries is the extra attempts beyond the first.
const DefaultRetries = 1

// defaultVerifyCommand is the workspace-sanity check run when the caller
// supplies no verification commands.
const defaultVerifyCommand = "git status --short"

// maxVerifyOutput bounds captured verify command output.
const maxVerifyOutput = 8 * 1024

// Options configures one rollback call.
type Options struct {
	// VerifyCommands run in order after a successful restore; the first
	// failing command fails the attempt. Empty means the default
	// workspace-sanity check.
	VerifyCommands []string
	// Retries is the extra full restore-then-verify attempts beyond the
	// first. Nil means DefaultRetries; zero disables retrying.
	Retries *int
	// Workdir is where verification commands run.
	Workdir string
}

// ExhaustedError is returned once the retry budget is consumed.
// The message embeds the last underlying failure.
type ExhaustedError struct {
	// SnapshotID is the snapshot that could not be rolled back to.
	SnapshotID string
	// Attempts is the number of full restore-then-verify cycles performed.
	Attempts int
	// LastErr is the failure of the final attempt.
	LastErr error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("rollback to %s exhausted after %d attempts: %v", e.SnapshotID, e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}

// Engine runs restore-then-verify sequences against a snapshot store.
type Engine struct {
	store   snapshot.Store
	logger  *log.Logger
	metrics *metrics.Collector
}

// NewEngine creates a rollback engine over the given store.
// metrics may be nil.
func NewEngine(store snapshot.Store, logger *log.Logger, collector *metrics.Collector) *Engine {
	return &Engine{store: store, logger: logger, metrics: collector}
}

// Rollback restores the snapshot and verifies the workspace, retrying the
// full sequence from scratch on any failure (no partial resume). Retries
// are immediate: restore is deterministic, and the budget exists to absorb
// transient verification flakiness, not backend unavailability.
func (e *Engine) Rollback(ctx context.Context, snapshotID string, opts Options) error {
	commands := opts.VerifyCommands
	if len(commands) == 0 {
		commands = []string{defaultVerifyCommand}
	}
	retries := DefaultRetries
	if opts.Retries != nil && *opts.Retries >= 0 {
		retries = *opts.Retries
	}
	attempts := 1 + retries

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = e.attempt(ctx, snapshotID, commands, opts.Workdir)
		e.metrics.IncRollbackAttempt()
		if lastErr == nil {
			e.logger.Info("rollback succeeded", map[string]any{
				"snapshot_id": snapshotID,
				"attempt":     attempt,
			})
			return nil
		}
		e.logger.Warn("rollback attempt failed", map[string]any{
			"snapshot_id": snapshotID,
			"attempt":     attempt,
			"error":       lastErr.Error(),
		})
	}

	e.metrics.IncRollbackExhausted()
	return &ExhaustedError{SnapshotID: snapshotID, Attempts: attempts, LastErr: lastErr}
}

// attempt runs one full restore-then-verify cycle.
func (e *Engine) attempt(ctx context.Context, snapshotID string, commands []string, workdir string) error {
	if err := e.store.Restore(ctx, snapshotID); err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	for _, command := range commands {
		if err := runVerify(ctx, command, workdir); err != nil {
			return err
		}
	}
	return nil
}

// runVerify executes one verification command through the shell.
func runVerify(ctx context.Context, command, workdir string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = workdir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("verify %q failed: %s: %w", command, iox.Truncate(string(out), maxVerifyOutput), err)
	}
	return nil
}
