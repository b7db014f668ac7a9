// Package snapshot defines the snapshot store boundary consumed by the
// rollback engine.
//
// A snapshot is an opaque, restorable checkpoint of workspace state. The
// coordination layer only relies on the create/restore contract; callers
// reference snapshots by id and never mutate them.
package snapshot

import (
	"context"
	"time"
)

// Info describes one stored snapshot.
type Info struct {
	// ID is the opaque snapshot identifier.
	ID string `json:"id" msgpack:"id"`
	// Label is the caller-supplied human-readable label.
	Label string `json:"label" msgpack:"label"`
	// CreatedAt is the creation time, UTC.
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
}

// Store is the snapshot boundary: create a restorable checkpoint of the
// workspace, restore one by id.
type Store interface {
	// Create captures the current workspace state under a new id.
	Create(ctx context.Context, label string) (*Info, error)

	// Restore rewrites the workspace from the snapshot with the given id.
	// Fails with ErrNotFound if the id is unknown.
	Restore(ctx context.Context, id string) error
}
