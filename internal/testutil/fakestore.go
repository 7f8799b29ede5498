// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"todo/internal/store"
)

// FakeStore is an in-memory implementation of store.TaskStore for testing.
type FakeStore struct {
	mu     sync.RWMutex
	tasks  []store.Task
	nextID int64
	closed bool

	// Calls counts mutating calls that reached the store.
	AddCalls    int
	RemoveCalls int

	// Error injection for testing
	AddErr     error
	ListAllErr error
	RemoveErr  error
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{nextID: 1}
}

// Seed appends tasks directly, bypassing error injection.
func (f *FakeStore) Seed(descriptions ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range descriptions {
		f.tasks = append(f.tasks, store.Task{ID: f.nextID, Description: d})
		f.nextID++
	}
}

// Snapshot returns the stored tasks without error injection.
func (f *FakeStore) Snapshot() []store.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]store.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Closed reports whether Close was called.
func (f *FakeStore) Closed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.closed
}

// Add implements store.TaskStore.
func (f *FakeStore) Add(ctx context.Context, description string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AddCalls++
	if f.AddErr != nil {
		return 0, f.AddErr
	}
	id := f.nextID
	f.nextID++
	f.tasks = append(f.tasks, store.Task{ID: id, Description: description})
	return id, nil
}

// ListAll implements store.TaskStore.
func (f *FakeStore) ListAll(ctx context.Context) ([]store.Task, error) {
	if f.ListAllErr != nil {
		return nil, f.ListAllErr
	}
	return f.Snapshot(), nil
}

// Remove implements store.TaskStore.
func (f *FakeStore) Remove(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RemoveCalls++
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

// Close implements store.TaskStore.
func (f *FakeStore) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// RecordingDisplay records controller notifications for assertions.
type RecordingDisplay struct {
	mu     sync.Mutex
	Events []string
	Rows   []store.Task
}

// Reset implements controller.Display.
func (d *RecordingDisplay) Reset(tasks []store.Task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Events = append(d.Events, "reset")
	d.Rows = append([]store.Task(nil), tasks...)
}

// Inserted implements controller.Display.
func (d *RecordingDisplay) Inserted(index int, task store.Task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Events = append(d.Events, "inserted")
	d.Rows = append(d.Rows[:index], append([]store.Task{task}, d.Rows[index:]...)...)
}

// Removed implements controller.Display.
func (d *RecordingDisplay) Removed(index int, task store.Task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Events = append(d.Events, "removed")
	d.Rows = append(d.Rows[:index], d.Rows[index+1:]...)
}
