package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todo/internal/controller"
	"todo/internal/output"
	"todo/internal/store"
)

type focus int

const (
	focusInput focus = iota
	focusList
)

type opKind int

const (
	opAdd opKind = iota
	opComplete
	opDismiss
)

// op is one queued mutation. Removals carry the ID resolved from the
// cursor position when the key was pressed.
type op struct {
	kind opKind
	text string
	id   int64
	desc string
}

type opDoneMsg struct {
	op  op
	err error
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	emptyStyle    = lipgloss.NewStyle().Faint(true).Italic(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// Model is the bubbletea model of the task screen.
//
// Store I/O never runs on the event loop: each mutation is a command, and
// the next queued mutation starts only after the previous one finished.
// Rows change only through controller notifications.
type Model struct {
	ctx     context.Context
	tasks   *controller.Controller
	display controller.Display

	input  textinput.Model
	rows   []store.Task
	cursor int
	focus  focus

	pending []op
	busy    bool

	status    string
	statusErr bool
}

// New builds the screen model. display must deliver to the same program
// that runs the model.
func New(ctx context.Context, tasks *controller.Controller, display controller.Display) Model {
	ti := textinput.New()
	ti.Placeholder = "New task"
	ti.CharLimit = 512
	ti.Width = 40
	ti.Prompt = "> "
	ti.Focus()

	return Model{
		ctx:     ctx,
		tasks:   tasks,
		display: display,
		input:   ti,
		focus:   focusInput,
		status:  "Type a task and press Enter.",
	}
}

// Run shows the screen until the user quits or ctx is done.
func Run(ctx context.Context, tasks *controller.Controller, in io.Reader, out io.Writer) error {
	var p *tea.Program
	adapter := NewAdapter(func(msg tea.Msg) { p.Send(msg) })
	p = tea.NewProgram(New(ctx, tasks, adapter),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	defer tasks.Attach(nil)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	tasks, display := m.tasks, m.display
	attach := func() tea.Msg {
		tasks.Attach(display)
		return nil
	}
	return tea.Batch(attach, textinput.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-6, 10)
		return m, nil

	case resetMsg:
		m.rows = msg.tasks
		m.cursor = clampCursor(m.cursor, len(m.rows))
		return m, nil

	case insertedMsg:
		idx := min(max(msg.index, 0), len(m.rows))
		m.rows = append(m.rows[:idx:idx], append([]store.Task{msg.task}, m.rows[idx:]...)...)
		return m, nil

	case removedMsg:
		m.rows = removeRow(m.rows, msg.index, msg.task.ID)
		m.cursor = clampCursor(m.cursor, len(m.rows))
		return m, nil

	case opDoneMsg:
		m.busy = false
		m.setResult(msg)
		return m, m.next()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and other input internals.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "shift+tab":
		m.toggleFocus()
		return m, nil
	}

	if m.focus == focusInput {
		if msg.String() == "enter" {
			text := m.input.Value()
			m.input.SetValue("")
			return m, m.enqueue(op{kind: opAdd, text: text})
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(m.rows))
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = clampCursor(len(m.rows)-1, len(m.rows))
	case "a", "i":
		m.toggleFocus()
	case "enter", " ":
		return m, m.removeSelected(opComplete)
	case "d", "x", "delete", "backspace":
		return m, m.removeSelected(opDismiss)
	}
	return m, nil
}

func (m *Model) toggleFocus() {
	if m.focus == focusInput {
		m.focus = focusList
		m.input.Blur()
		return
	}
	m.focus = focusInput
	m.input.Focus()
}

// removeSelected resolves the row under the cursor to its ID now and
// queues its removal.
func (m *Model) removeSelected(kind opKind) tea.Cmd {
	if len(m.rows) == 0 {
		return nil
	}
	task := m.rows[m.cursor]
	return m.enqueue(op{kind: kind, id: task.ID, desc: output.Description(task)})
}

func (m *Model) enqueue(o op) tea.Cmd {
	m.pending = append(m.pending, o)
	return m.next()
}

// next starts the oldest pending mutation unless one is running.
func (m *Model) next() tea.Cmd {
	if m.busy || len(m.pending) == 0 {
		return nil
	}
	o := m.pending[0]
	m.pending = m.pending[1:]
	m.busy = true

	ctx, tasks := m.ctx, m.tasks
	return func() tea.Msg {
		var err error
		switch o.kind {
		case opAdd:
			_, err = tasks.AddTask(ctx, o.text)
		case opComplete, opDismiss:
			err = tasks.RemoveTask(ctx, o.id)
		}
		return opDoneMsg{op: o, err: err}
	}
}

func (m *Model) setResult(msg opDoneMsg) {
	m.statusErr = msg.err != nil
	switch {
	case errors.Is(msg.err, controller.ErrEmptyDescription):
		m.status = "Please enter a task."
	case msg.err != nil:
		m.status = fmt.Sprintf("Storage error: %v", msg.err)
	case msg.op.kind == opAdd:
		m.status = "Task added."
	case msg.op.kind == opComplete:
		m.status = fmt.Sprintf("Completed %q.", msg.op.desc)
	case msg.op.kind == opDismiss:
		m.status = fmt.Sprintf("Deleted %q.", msg.op.desc)
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("To-do"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(emptyStyle.Render("  no tasks"))
		b.WriteString("\n")
	}
	for i, task := range m.rows {
		line := fmt.Sprintf("%3d  %s", i+1, output.Description(task))
		if m.focus == focusList && i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.statusErr {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.helpLine()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) helpLine() string {
	if m.focus == focusInput {
		return "enter: add • tab: list • esc: quit"
	}
	return "↑/↓: move • enter: done • d: delete • tab: input • esc: quit"
}

// removeRow drops the row at index, falling back to a lookup by ID when
// the index does not point at that task.
func removeRow(rows []store.Task, index int, id int64) []store.Task {
	if index < 0 || index >= len(rows) || rows[index].ID != id {
		index = -1
		for i, r := range rows {
			if r.ID == id {
				index = i
				break
			}
		}
		if index < 0 {
			return rows
		}
	}
	out := make([]store.Task, 0, len(rows)-1)
	out = append(out, rows[:index]...)
	return append(out, rows[index+1:]...)
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
