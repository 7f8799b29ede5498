package store

// Task represents a single to-do entry.
type Task struct {
	ID          int64
	Description string
}
