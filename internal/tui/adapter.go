// Package tui is the interactive single-screen front end: a text input to
// submit tasks above the task list, where rows can be completed or dismissed.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/controller"
	"todo/internal/store"
)

type resetMsg struct{ tasks []store.Task }

type insertedMsg struct {
	index int
	task  store.Task
}

type removedMsg struct {
	index int
	task  store.Task
}

// Adapter implements controller.Display by forwarding every notification
// to the program's event loop as a message.
type Adapter struct {
	send func(tea.Msg)
}

var _ controller.Display = (*Adapter)(nil)

// NewAdapter returns an Adapter posting through send, usually
// (*tea.Program).Send.
func NewAdapter(send func(tea.Msg)) *Adapter {
	return &Adapter{send: send}
}

func (a *Adapter) Reset(tasks []store.Task) {
	a.send(resetMsg{tasks: tasks})
}

func (a *Adapter) Inserted(index int, task store.Task) {
	a.send(insertedMsg{index: index, task: task})
}

func (a *Adapter) Removed(index int, task store.Task) {
	a.send(removedMsg{index: index, task: task})
}
