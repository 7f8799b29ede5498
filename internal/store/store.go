// Package store defines the backend-agnostic interface for task persistence.
package store

import (
	"context"
	"errors"
)

// Errors returned by TaskStore implementations. Backends wrap the underlying
// cause, so callers match them with errors.Is.
var (
	// ErrStorageInit means the store could not be opened or created.
	ErrStorageInit = errors.New("storage init failed")

	// ErrStorageWrite means a single add or remove did not complete.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrStorageRead means the stored records could not be read back.
	ErrStorageRead = errors.New("storage read failed")
)

// TaskStore defines durable CRUD for task records.
// Commands and the controller never import a backend directly.
type TaskStore interface {
	// Add stores a new task and returns its ID.
	// IDs increase monotonically and are never reused.
	// The caller must pass a trimmed, non-empty description.
	Add(ctx context.Context, description string) (int64, error)

	// ListAll returns every task in insertion order.
	// An empty store yields an empty slice, never nil.
	ListAll(ctx context.Context) ([]Task, error)

	// Remove deletes the task with the given ID.
	// Removing an ID that does not exist is a no-op.
	Remove(ctx context.Context, id int64) error

	// Close releases the underlying files.
	Close() error
}
