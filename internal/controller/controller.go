// Package controller keeps an in-memory, ordered view of the task store
// and drives a display adapter from it.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-kratos/kratos/v2/log"

	"todo/internal/store"
)

var (
	// ErrEmptyDescription is returned by AddTask for blank input.
	ErrEmptyDescription = errors.New("description required")

	// ErrPositionOutOfRange is returned when a list position has no task.
	ErrPositionOutOfRange = errors.New("task number out of range")
)

// Display renders the ordered task list.
// Notifications are delivered after the store mutation succeeded.
type Display interface {
	// Reset replaces everything shown.
	Reset(tasks []store.Task)

	// Inserted reports a new task at index (0-based).
	Inserted(index int, task store.Task)

	// Removed reports that the task at index (0-based) is gone.
	Removed(index int, task store.Task)
}

type nopDisplay struct{}

func (nopDisplay) Reset([]store.Task)       {}
func (nopDisplay) Inserted(int, store.Task) {}
func (nopDisplay) Removed(int, store.Task)  {}

// Controller mediates between a TaskStore and a Display.
// Mutations run one at a time in call order, and the cache only changes
// after the store confirmed the write.
type Controller struct {
	mu      sync.Mutex
	store   store.TaskStore
	display Display
	tasks   []store.Task
	log     *log.Helper
}

// New creates a controller over st. Call Load before use.
func New(st store.TaskStore, logger log.Logger) *Controller {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Controller{
		store:   st,
		display: nopDisplay{},
		tasks:   make([]store.Task, 0),
		log:     log.NewHelper(log.With(logger, "module", "controller")),
	}
}

// Attach binds the display and pushes the current list to it.
// A nil display detaches.
func (c *Controller) Attach(d Display) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d == nil {
		d = nopDisplay{}
	}
	c.display = d
	c.display.Reset(c.snapshot())
}

// Load reads the whole store and replaces the cache.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks, err := c.store.ListAll(ctx)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = make([]store.Task, 0)
	}
	c.tasks = tasks
	c.log.Debugf("loaded %d tasks", len(tasks))
	c.display.Reset(c.snapshot())
	return nil
}

// AddTask trims raw and stores it as a new task appended to the list.
func (c *Controller) AddTask(ctx context.Context, raw string) (store.Task, error) {
	desc := strings.TrimSpace(raw)
	if desc == "" {
		return store.Task{}, ErrEmptyDescription
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.store.Add(ctx, desc)
	if err != nil {
		c.log.Errorf("add task: %v", err)
		return store.Task{}, err
	}

	task := store.Task{ID: id, Description: desc}
	c.tasks = append(c.tasks, task)
	c.display.Inserted(len(c.tasks)-1, task)
	return task, nil
}

// RemoveTask deletes the task with the given ID from the store and the
// list. Unknown IDs are ignored.
func (c *Controller) RemoveTask(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return nil
	}

	if err := c.store.Remove(ctx, id); err != nil {
		c.log.Errorf("remove task %d: %v", id, err)
		return err
	}

	task := c.tasks[idx]
	c.tasks = append(c.tasks[:idx], c.tasks[idx+1:]...)
	c.display.Removed(idx, task)
	return nil
}

// ResolvePositions maps 1-based list positions to task IDs using the
// current list. Every position is checked before any ID is returned.
func (c *Controller) ResolvePositions(positions ...int) ([]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]int64, 0, len(positions))
	for _, pos := range positions {
		if pos < 1 || pos > len(c.tasks) {
			return nil, fmt.Errorf("%w: %d", ErrPositionOutOfRange, pos)
		}
		ids = append(ids, c.tasks[pos-1].ID)
	}
	return ids, nil
}

// Tasks returns a copy of the current list.
func (c *Controller) Tasks() []store.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Len returns the number of tasks in the list.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

func (c *Controller) snapshot() []store.Task {
	out := make([]store.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

func (c *Controller) indexOf(id int64) int {
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
