// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/taskmaster-tui/internal/todo"
	"github.com/jeranaias/taskmaster-tui/internal/ui/styles"
)

func newList(items ...todo.Todo) TodoList {
	l := NewTodoList(styles.NewTheme())
	l.SetSize(60, 20)
	l.SetPage(todo.Page{Todos: items, Total: len(items)})
	return l
}

func sampleTodos() []todo.Todo {
	return []todo.Todo{
		{ID: "a", Todo: "Buy milk"},
		{ID: "b", Todo: "Write report", Completed: true},
		{ID: "c", Todo: "Call mom"},
	}
}

func TestTodoListNavigation(t *testing.T) {
	l := newList(sampleTodos()...)

	sel, ok := l.Selected()
	require.True(t, ok)
	assert.Equal(t, "a", sel.ID)

	l, _ = l.Update(runes("j"))
	l, _ = l.Update(keyOf(tea.KeyDown))
	sel, _ = l.Selected()
	assert.Equal(t, "c", sel.ID)

	// Stops at the end.
	l, _ = l.Update(runes("j"))
	sel, _ = l.Selected()
	assert.Equal(t, "c", sel.ID)

	l, _ = l.Update(runes("k"))
	sel, _ = l.Selected()
	assert.Equal(t, "b", sel.ID)
}

func TestTodoListRequests(t *testing.T) {
	l := newList(sampleTodos()...)

	_, cmd := l.Update(runes("x"))
	assert.Equal(t, ToggleTodoMsg{ID: "a", Completed: true}, exec(cmd))

	l, _ = l.Update(runes("j"))
	_, cmd = l.Update(runes("x"))
	assert.Equal(t, ToggleTodoMsg{ID: "b", Completed: false}, exec(cmd))

	_, cmd = l.Update(runes("d"))
	assert.Equal(t, DeleteTodoMsg{ID: "b"}, exec(cmd))

	_, cmd = l.Update(runes("r"))
	assert.Equal(t, ReloadTodosMsg{}, exec(cmd))
}

func TestTodoListEmptyHasNoSelection(t *testing.T) {
	l := newList()
	_, ok := l.Selected()
	assert.False(t, ok)

	_, cmd := l.Update(runes("x"))
	assert.Nil(t, cmd)
	assert.Contains(t, l.View(), "Nothing to do")
}

func TestTodoListCreate(t *testing.T) {
	l := newList()

	l, _ = l.Update(runes("n"))
	require.True(t, l.Adding())

	l = typeInto(l, "Water plants")
	l, cmd := l.Update(keyOf(tea.KeyEnter))
	assert.False(t, l.Adding())
	assert.Equal(t, CreateTodoMsg{Text: "Water plants"}, exec(cmd))
}

func TestTodoListCreateCancelAndBlank(t *testing.T) {
	l := newList()

	l, _ = l.Update(runes("n"))
	l = typeInto(l, "draft")
	l, cmd := l.Update(keyOf(tea.KeyEsc))
	assert.False(t, l.Adding())
	assert.Nil(t, cmd)

	l, _ = l.Update(runes("n"))
	l = typeInto(l, "   ")
	_, cmd = l.Update(keyOf(tea.KeyEnter))
	assert.Nil(t, cmd, "blank todos are not submitted")
}

func TestTodoListEdit(t *testing.T) {
	l := newList(sampleTodos()...)

	l, _ = l.Update(runes("e"))
	require.True(t, l.Editing())
	assert.False(t, l.Adding())
	assert.Contains(t, l.View(), editPrompt)

	l = typeInto(l, " and eggs")
	l, cmd := l.Update(keyOf(tea.KeyEnter))
	assert.False(t, l.Editing())
	assert.Equal(t, EditTodoMsg{ID: "a", Text: "Buy milk and eggs"}, exec(cmd))
}

func TestTodoListEditUnchangedOrEmpty(t *testing.T) {
	l := newList(sampleTodos()...)

	l, _ = l.Update(runes("e"))
	l, cmd := l.Update(keyOf(tea.KeyEnter))
	assert.False(t, l.Editing())
	assert.Nil(t, cmd, "unchanged text is not sent")

	l, _ = l.Update(runes("e"))
	for range "Buy milk" {
		l, _ = l.Update(keyOf(tea.KeyBackspace))
	}
	l, cmd = l.Update(keyOf(tea.KeyEnter))
	assert.True(t, l.Editing(), "an emptied edit stays open")
	assert.Nil(t, cmd)

	l, _ = l.Update(keyOf(tea.KeyEsc))
	assert.False(t, l.Editing())
	assert.Equal(t, "Buy milk", l.Items()[0].Todo)
}

func TestTodoListFilter(t *testing.T) {
	l := newList(sampleTodos()...)
	assert.Equal(t, FilterAll, l.Filter())

	l, _ = l.Update(runes("f"))
	assert.Equal(t, FilterPending, l.Filter())
	require.Len(t, l.Visible(), 2)
	view := l.View()
	assert.Contains(t, view, "Todos (pending)")
	assert.NotContains(t, view, "Write report")
	assert.Contains(t, view, "showing pending")

	l, _ = l.Update(runes("j"))
	sel, ok := l.Selected()
	require.True(t, ok)
	assert.Equal(t, "c", sel.ID, "navigation follows the filtered rows")

	l, _ = l.Update(runes("f"))
	assert.Equal(t, FilterCompleted, l.Filter())
	sel, _ = l.Selected()
	assert.Equal(t, "b", sel.ID)

	l, _ = l.Update(runes("f"))
	assert.Equal(t, FilterAll, l.Filter())
	assert.Len(t, l.Visible(), 3)
}

func TestTodoListFilterEmptyAndClamp(t *testing.T) {
	l := newList(todo.Todo{ID: "a", Todo: "Buy milk"})
	l.SetFilter(FilterCompleted)
	assert.Contains(t, l.View(), "No completed todos")
	_, ok := l.Selected()
	assert.False(t, ok)

	l.SetFilter(FilterPending)
	l.Upsert(todo.Todo{ID: "a", Todo: "Buy milk", Completed: true})
	_, ok = l.Selected()
	assert.False(t, ok, "completed row leaves the pending view")
	assert.Contains(t, l.View(), "No pending todos")
}

func TestTodoListUpsertAndRemove(t *testing.T) {
	l := newList(sampleTodos()...)

	l.Upsert(todo.Todo{ID: "a", Todo: "Buy oat milk", Completed: true})
	l.Upsert(todo.Todo{ID: "d", Todo: "New one"})
	require.Len(t, l.Items(), 4)
	assert.Equal(t, "Buy oat milk", l.Items()[0].Todo)

	l, _ = l.Update(runes("j"))
	l, _ = l.Update(runes("j"))
	l, _ = l.Update(runes("j"))
	l.Remove("d")
	require.Len(t, l.Items(), 3)
	sel, ok := l.Selected()
	require.True(t, ok)
	assert.Equal(t, "c", sel.ID, "cursor is clamped after removing the last row")
}

func TestTodoListView(t *testing.T) {
	l := newList(sampleTodos()...)
	view := l.View()

	assert.Contains(t, view, "[ ] Buy milk")
	assert.Contains(t, view, "[x]")
	assert.Contains(t, view, "1/3 done")
}

func TestTodoListTruncatesLongTitles(t *testing.T) {
	l := newList(todo.Todo{ID: "a", Todo: strings.Repeat("long ", 40)})
	l.SetSize(30, 10)

	for _, line := range strings.Split(l.View(), "\n") {
		assert.LessOrEqual(t, len([]rune(stripANSI(line))), 30)
	}
}

func TestTodoListErrorAndLoading(t *testing.T) {
	l := newList(sampleTodos()...)

	cmd := l.SetLoading(true)
	assert.NotNil(t, cmd)
	assert.Contains(t, l.View(), "Loading todos")

	l.SetError(errors.New("backend down"))
	assert.Contains(t, l.View(), "backend down")

	l.SetError(nil)
	assert.Contains(t, l.View(), "Buy milk")
}

func TestTodoListReset(t *testing.T) {
	l := newList(sampleTodos()...)
	l.SetFilter(FilterCompleted)
	l, _ = l.Update(runes("e"))
	l.Reset()
	assert.Empty(t, l.Items())
	assert.False(t, l.Adding())
	assert.False(t, l.Editing())
	assert.Equal(t, FilterAll, l.Filter())
}

// stripANSI removes SGR escape sequences.
func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && r == 'm':
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
