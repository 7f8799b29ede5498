package tui

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/controller"
	"todo/internal/store"
	"todo/internal/testutil"
)

// harness drives a Model the way a tea.Program would, running commands
// synchronously and feeding their messages back in order.
type harness struct {
	t     *testing.T
	m     tea.Model
	mu    sync.Mutex
	queue []tea.Msg
}

func newHarness(t *testing.T, st *testutil.FakeStore) (*harness, *controller.Controller) {
	t.Helper()
	ctrl := controller.New(st, log.NewStdLogger(io.Discard))
	require.NoError(t, ctrl.Load(context.Background()))

	h := &harness{t: t}
	h.m = New(context.Background(), ctrl, NewAdapter(h.post))
	h.exec(h.m.Init())
	h.drain()
	t.Cleanup(func() { ctrl.Attach(nil) })
	return h, ctrl
}

func (h *harness) post(msg tea.Msg) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queue = append(h.queue, msg)
}

// exec runs cmd and queues what it returns. Timers such as cursor blink
// are abandoned.
func (h *harness) exec(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		switch msg := msg.(type) {
		case nil:
		case tea.BatchMsg:
			for _, c := range msg {
				h.exec(c)
			}
		default:
			h.post(msg)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func (h *harness) drain() {
	for {
		h.mu.Lock()
		if len(h.queue) == 0 {
			h.mu.Unlock()
			return
		}
		msg := h.queue[0]
		h.queue = h.queue[1:]
		h.mu.Unlock()

		var cmd tea.Cmd
		h.m, cmd = h.m.Update(msg)
		h.exec(cmd)
	}
}

func (h *harness) send(msgs ...tea.Msg) {
	for _, msg := range msgs {
		var cmd tea.Cmd
		h.m, cmd = h.m.Update(msg)
		h.exec(cmd)
		h.drain()
	}
}

func (h *harness) model() Model {
	return h.m.(Model)
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestModel_ShowsStoredTasksOnStart(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("Buy milk", "Walk dog")

	h, _ := newHarness(t, st)

	assert.Equal(t, st.Snapshot(), h.model().rows)
	view := h.m.View()
	assert.Contains(t, view, "Buy milk")
	assert.Contains(t, view, "Walk dog")
}

func TestModel_SubmitAddsTask(t *testing.T) {
	st := testutil.NewFakeStore()
	h, ctrl := newHarness(t, st)

	h.send(keys("  Buy milk "), enter)

	want := []store.Task{{ID: 1, Description: "Buy milk"}}
	assert.Equal(t, want, st.Snapshot())
	assert.Equal(t, want, ctrl.Tasks())
	assert.Equal(t, want, h.model().rows)
	assert.Equal(t, "", h.model().input.Value())
	assert.Equal(t, "Task added.", h.model().status)
}

func TestModel_BlankSubmitShowsHint(t *testing.T) {
	st := testutil.NewFakeStore()
	h, _ := newHarness(t, st)

	h.send(keys("   "), enter)

	assert.Equal(t, 0, st.AddCalls)
	assert.Empty(t, h.model().rows)
	assert.True(t, h.model().statusErr)
	assert.Equal(t, "Please enter a task.", h.model().status)
}

func TestModel_DismissSelectedRow(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("a", "b", "c")
	h, ctrl := newHarness(t, st)

	h.send(tab, down, keys("d"))

	want := []store.Task{{ID: 1, Description: "a"}, {ID: 3, Description: "c"}}
	assert.Equal(t, want, st.Snapshot())
	assert.Equal(t, want, ctrl.Tasks())
	assert.Equal(t, want, h.model().rows)
	assert.Equal(t, `Deleted "b".`, h.model().status)
}

func TestModel_ActivateCompletesRow(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("a", "b")
	h, _ := newHarness(t, st)

	h.send(tab, enter)

	assert.Equal(t, []store.Task{{ID: 2, Description: "b"}}, h.model().rows)
	assert.Equal(t, `Completed "a".`, h.model().status)
}

func TestModel_StorageErrorKeepsRows(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Seed("a")
	h, _ := newHarness(t, st)

	st.RemoveErr = store.ErrStorageWrite
	h.send(tab, keys("x"))

	assert.Equal(t, st.Snapshot(), h.model().rows)
	assert.True(t, h.model().statusErr)
	assert.True(t, strings.HasPrefix(h.model().status, "Storage error:"))
}

func TestModel_MutationsRunInIssueOrder(t *testing.T) {
	st := testutil.NewFakeStore()
	h, _ := newHarness(t, st)

	// Queue two adds without letting the first finish.
	m := h.model()
	m.input.SetValue("first")
	next, cmd1 := m.Update(enter)
	m = next.(Model)
	m.input.SetValue("second")
	next, cmd2 := m.Update(enter)
	m = next.(Model)

	require.NotNil(t, cmd1)
	assert.Nil(t, cmd2, "second add must wait for the first")
	assert.Len(t, m.pending, 1)

	h.m = m
	h.exec(cmd1)
	h.drain()

	assert.Equal(t, []store.Task{
		{ID: 1, Description: "first"},
		{ID: 2, Description: "second"},
	}, h.model().rows)
	assert.Empty(t, h.model().pending)
	assert.False(t, h.model().busy)
}

func TestModel_QuitKeys(t *testing.T) {
	h, _ := newHarness(t, testutil.NewFakeStore())

	for _, k := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := h.m.Update(k)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestRemoveRow_FallsBackToID(t *testing.T) {
	rows := []store.Task{{ID: 1}, {ID: 2}, {ID: 3}}

	assert.Equal(t, []store.Task{{ID: 1}, {ID: 3}}, removeRow(rows, 0, 2))
	assert.Equal(t, rows, removeRow(rows, 1, 9))
}
