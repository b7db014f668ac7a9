// Package snapshot store error classification.
//
// Sentinel errors and a wrapper enable callers to use errors.Is/errors.As
// for typed assertions rather than string matching.
package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Sentinel errors for snapshot failure classification.
var (
	// ErrNotFound indicates the snapshot id is unknown.
	ErrNotFound = errors.New("snapshot not found")

	// ErrCorruptManifest indicates the snapshot manifest could not be decoded.
	ErrCorruptManifest = errors.New("corrupt snapshot manifest")

	// ErrPermissionDenied indicates a filesystem permission failure.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDiskFull indicates storage is out of space.
	ErrDiskFull = errors.New("no space left on device")
)

// StoreError wraps an underlying error with snapshot classification.
// The original error stays in the chain for inspection via errors.As.
type StoreError struct {
	// Kind is the sentinel error for classification.
	Kind error
	// Op is the operation that failed ("create", "restore").
	Op string
	// ID is the snapshot id involved, if any.
	ID string
	// Err is the underlying error.
	Err error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("snapshot %s %s: %v: %v", e.Op, e.ID, e.Kind, e.Err)
	}
	return fmt.Sprintf("snapshot %s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// wrapError classifies and wraps a store operation error.
// Returns nil if err is nil.
func wrapError(op, id string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Kind: classify(err), Op: op, ID: id, Err: err}
}

// classify determines the sentinel for the given error.
func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	default:
		var pathErr *os.PathError
		if errors.As(err, &pathErr) && pathErr.Err != nil && pathErr.Err.Error() == "no space left on device" {
			return ErrDiskFull
		}
		return errors.New("snapshot storage error")
	}
}
