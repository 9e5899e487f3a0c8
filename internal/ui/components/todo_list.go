// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskmaster-tui/internal/todo"
	"github.com/jeranaias/taskmaster-tui/internal/ui/styles"
	"github.com/jeranaias/taskmaster-tui/internal/util"
)

// =============================================================================
// TODO LIST COMPONENT
// =============================================================================

// Requests emitted by the list. The root model performs the API calls.
type (
	CreateTodoMsg struct{ Text string }
	EditTodoMsg   struct {
		ID   string
		Text string
	}
	ToggleTodoMsg struct {
		ID        string
		Completed bool
	}
	DeleteTodoMsg  struct{ ID string }
	ReloadTodosMsg struct{}
)

// Filter selects which todos the list shows.
type Filter int

const (
	FilterAll Filter = iota
	FilterPending
	FilterCompleted
)

func (f Filter) String() string {
	switch f {
	case FilterPending:
		return "pending"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// Next cycles all -> pending -> completed -> all.
func (f Filter) Next() Filter {
	return (f + 1) % 3
}

// Match reports whether t is shown under f.
func (f Filter) Match(t todo.Todo) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

const (
	addPrompt  = "+ "
	editPrompt = "~ "
)

// TodoList renders the user's todos with a cursor, a filter and one inline
// input used both for new todos and for editing the selected one.
type TodoList struct {
	items  []todo.Todo
	total  int
	cursor int
	offset int
	filter Filter

	adding bool
	editID string
	input  textinput.Model

	loading bool
	spinner spinner.Model
	err     string

	keys     ListKeys
	formKeys FormKeys
	theme    *styles.Theme
	width    int
	height   int
}

// NewTodoList creates an empty list.
func NewTodoList(theme *styles.Theme) TodoList {
	in := textinput.New()
	in.Placeholder = "What needs doing?"
	in.CharLimit = 200
	in.Prompt = addPrompt

	return TodoList{
		input:    in,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Line)),
		keys:     DefaultListKeys(),
		formKeys: DefaultFormKeys(),
		theme:    theme,
	}
}

// SetSize sets the component dimensions.
func (l *TodoList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.input.Width = width - 8
}

// SetPage replaces the items and clears loading and error state.
func (l *TodoList) SetPage(page todo.Page) {
	l.items = page.Todos
	l.total = page.Total
	l.loading = false
	l.err = ""
	l.clampCursor()
}

// Upsert replaces the item with the same ID or appends it.
func (l *TodoList) Upsert(t todo.Todo) {
	for i := range l.items {
		if l.items[i].ID == t.ID {
			l.items[i] = t
			l.clampCursor()
			return
		}
	}
	l.items = append(l.items, t)
	l.total++
	l.clampCursor()
}

// Remove drops the item with the given ID.
func (l *TodoList) Remove(id string) {
	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			l.total--
			l.clampCursor()
			return
		}
	}
}

// SetLoading toggles the spinner. The returned command starts it.
func (l *TodoList) SetLoading(loading bool) tea.Cmd {
	l.loading = loading
	if loading {
		return l.spinner.Tick
	}
	return nil
}

// SetError shows err in place of the list. Nil clears it.
func (l *TodoList) SetError(err error) {
	l.loading = false
	if err == nil {
		l.err = ""
		return
	}
	l.err = err.Error()
}

// Items returns every loaded item regardless of the filter.
func (l TodoList) Items() []todo.Todo { return l.items }

// Visible returns the items that pass the filter.
func (l TodoList) Visible() []todo.Todo {
	if l.filter == FilterAll {
		return l.items
	}
	out := make([]todo.Todo, 0, len(l.items))
	for _, t := range l.items {
		if l.filter.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Filter returns the active filter.
func (l TodoList) Filter() Filter { return l.filter }

// SetFilter changes the filter and moves the cursor to the top.
func (l *TodoList) SetFilter(f Filter) {
	l.filter = f
	l.cursor = 0
	l.offset = 0
}

// Selected returns the item under the cursor.
func (l TodoList) Selected() (todo.Todo, bool) {
	visible := l.Visible()
	if l.cursor < 0 || l.cursor >= len(visible) {
		return todo.Todo{}, false
	}
	return visible[l.cursor], true
}

// Adding reports whether the new-todo input has focus.
func (l TodoList) Adding() bool { return l.adding }

// Editing reports whether an existing todo is being edited.
func (l TodoList) Editing() bool { return l.editID != "" }

// Reset clears everything, used on sign-out.
func (l *TodoList) Reset() {
	l.items = nil
	l.total = 0
	l.cursor = 0
	l.offset = 0
	l.filter = FilterAll
	l.err = ""
	l.closeInput()
}

func (l *TodoList) closeInput() {
	l.adding = false
	l.editID = ""
	l.input.Reset()
	l.input.Blur()
	l.input.Prompt = addPrompt
}

// Update handles navigation and the inline input.
func (l TodoList) Update(msg tea.Msg) (TodoList, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		if !l.loading {
			return l, nil
		}
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(tick)
		return l, cmd
	}

	if l.adding || l.editID != "" {
		return l.updateInput(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}

	switch {
	case key.Matches(km, l.keys.Up):
		if l.cursor > 0 {
			l.cursor--
		}
	case key.Matches(km, l.keys.Down):
		if l.cursor < len(l.Visible())-1 {
			l.cursor++
		}
	case key.Matches(km, l.keys.Toggle):
		if t, ok := l.Selected(); ok {
			return l, func() tea.Msg { return ToggleTodoMsg{ID: t.ID, Completed: !t.Completed} }
		}
	case key.Matches(km, l.keys.Delete):
		if t, ok := l.Selected(); ok {
			return l, func() tea.Msg { return DeleteTodoMsg{ID: t.ID} }
		}
	case key.Matches(km, l.keys.New):
		l.adding = true
		cmd := l.input.Focus()
		return l, cmd
	case key.Matches(km, l.keys.Edit):
		t, ok := l.Selected()
		if !ok {
			return l, nil
		}
		l.editID = t.ID
		l.input.Prompt = editPrompt
		l.input.SetValue(t.Todo)
		l.input.CursorEnd()
		cmd := l.input.Focus()
		return l, cmd
	case key.Matches(km, l.keys.Filter):
		l.SetFilter(l.filter.Next())
		return l, nil
	case key.Matches(km, l.keys.Reload):
		return l, func() tea.Msg { return ReloadTodosMsg{} }
	}
	l.scroll()
	return l, nil
}

func (l TodoList) updateInput(msg tea.Msg) (TodoList, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, l.formKeys.Cancel):
			l.closeInput()
			return l, nil
		case key.Matches(km, l.formKeys.Submit):
			text := strings.TrimSpace(l.input.Value())
			if id := l.editID; id != "" {
				// An emptied edit stays open.
				if text == "" {
					return l, nil
				}
				l.closeInput()
				if text == l.title(id) {
					return l, nil
				}
				return l, func() tea.Msg { return EditTodoMsg{ID: id, Text: text} }
			}
			l.closeInput()
			if text == "" {
				return l, nil
			}
			return l, func() tea.Msg { return CreateTodoMsg{Text: text} }
		}
	}

	var cmd tea.Cmd
	l.input, cmd = l.input.Update(msg)
	return l, cmd
}

func (l TodoList) title(id string) string {
	for _, t := range l.items {
		if t.ID == id {
			return t.Todo
		}
	}
	return ""
}

func (l *TodoList) clampCursor() {
	if n := len(l.Visible()); l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	l.scroll()
}

// scroll keeps the cursor inside the visible window.
func (l *TodoList) scroll() {
	rows := l.visibleRows()
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+rows {
		l.offset = l.cursor - rows + 1
	}
}

func (l TodoList) visibleRows() int {
	// Title, blank line, input line, footer.
	rows := l.height - 4
	if rows < 1 {
		rows = 1
	}
	return rows
}

// View renders the list.
func (l TodoList) View() string {
	width := l.width
	if width <= 0 {
		width = 60
	}

	title := "Todos"
	if l.filter != FilterAll {
		title += " (" + l.filter.String() + ")"
	}

	var b strings.Builder
	b.WriteString(l.theme.FormTitle.Render(title))
	b.WriteString("\n")

	visible := l.Visible()
	switch {
	case l.err != "":
		b.WriteString(styles.RenderError(l.err))
	case l.loading:
		b.WriteString(l.theme.TodoEmpty.Render(l.spinner.View() + " Loading todos"))
	case len(l.items) == 0:
		b.WriteString(l.theme.TodoEmpty.Render("Nothing to do. Press n to add a todo."))
	case len(visible) == 0:
		b.WriteString(l.theme.TodoEmpty.Render("No " + l.filter.String() + " todos. Press f to change the filter."))
	default:
		end := l.offset + l.visibleRows()
		if end > len(visible) {
			end = len(visible)
		}
		rows := make([]string, 0, end-l.offset)
		for i := l.offset; i < end; i++ {
			rows = append(rows, l.renderRow(visible[i], i == l.cursor, width))
		}
		b.WriteString(strings.Join(rows, "\n"))
	}

	b.WriteString("\n")
	if l.adding || l.editID != "" {
		b.WriteString(l.input.View())
	}

	b.WriteString("\n")
	b.WriteString(l.renderFooter())
	return b.String()
}

func (l TodoList) renderRow(t todo.Todo, selected bool, width int) string {
	box := "[ ] "
	if t.Completed {
		box = "[x] "
	}
	title := util.Truncate(t.Todo, width-lipgloss.Width(box)-4)
	if t.Completed {
		title = l.theme.TodoCompleted.Render(title)
	}

	style := l.theme.TodoItem
	if selected {
		style = l.theme.TodoSelected
	}
	return style.Width(width).Render(box + title)
}

func (l TodoList) renderFooter() string {
	done := 0
	for _, t := range l.items {
		if t.Completed {
			done++
		}
	}
	summary := util.IntToString(done) + "/" + util.IntToString(len(l.items)) + " done"
	if l.total > len(l.items) {
		summary += " (" + util.IntToString(l.total) + " total)"
	}
	if l.filter != FilterAll {
		summary += " · showing " + l.filter.String()
	}
	return l.theme.FormHint.Render(summary)
}
