// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/taskmaster-tui/internal/auth"
	"github.com/jeranaias/taskmaster-tui/internal/config"
	"github.com/jeranaias/taskmaster-tui/internal/session"
	"github.com/jeranaias/taskmaster-tui/internal/todo"
	"github.com/jeranaias/taskmaster-tui/internal/ui/components"
	"github.com/jeranaias/taskmaster-tui/internal/ui/styles"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Auth is the signed-in session. *auth.Session implements it.
type Auth interface {
	IsAuthenticated() bool
	User() (auth.User, bool)
	Login(ctx context.Context, username, password string) (auth.User, error)
	Signup(ctx context.Context, req auth.SignupRequest) (auth.User, error)
	SetPersistence(ctx context.Context, stay bool) error
}

// Todos is the todo API. *todo.Client implements it.
type Todos interface {
	List(ctx context.Context, limit, skip int) (todo.Page, error)
	Create(ctx context.Context, text string) (todo.Todo, error)
	SetCompleted(ctx context.Context, id string, completed bool) (todo.Todo, error)
	Update(ctx context.Context, id, text string) (todo.Todo, error)
	Delete(ctx context.Context, id string) error
}

// Lifecycle is the auto-logout controller. *session.Controller implements it.
type Lifecycle interface {
	Status() session.Status
	StayLoggedIn()
	ForceLogout()
	Logout()
}

// PreferenceStore persists preferences. *config.Store implements it.
type PreferenceStore interface {
	Preferences() config.Preferences
	SetPreferences(p config.Preferences) error
}

// Options configures the root model.
type Options struct {
	Auth      Auth
	Todos     Todos
	Lifecycle Lifecycle
	Prefs     PreferenceStore
	Events    Publisher
	Theme     *styles.Theme
	Logger    *slog.Logger

	// RequestTimeout bounds each API call. Defaults to 15s.
	RequestTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// PageSize is the number of todos requested per load.
const PageSize = 50

// StatusRefreshInterval is how often the status bar countdown is redrawn.
const StatusRefreshInterval = time.Second

// =============================================================================
// MESSAGES
// =============================================================================

type (
	statusTickMsg struct{}
	authResultMsg struct {
		user auth.User
		err  error
	}
	todosLoadedMsg struct {
		page todo.Page
		err  error
	}
	todoSavedMsg struct {
		todo todo.Todo
		err  error
	}
	todoDeletedMsg struct {
		id  string
		err error
	}
	prefsSavedMsg struct {
		prefs config.Preferences
		err   error
	}
)

// =============================================================================
// MODEL
// =============================================================================

type globalKeys struct {
	Quit   key.Binding
	Logout key.Binding
	Todos  key.Binding
	Prefs  key.Binding
}

func defaultGlobalKeys() globalKeys {
	return globalKeys{
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Logout: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "logout")),
		Todos:  key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "todos")),
		Prefs:  key.NewBinding(key.WithKeys("f2"), key.WithHelp("f2", "prefs")),
	}
}

// Model is the root Bubble Tea model.
type Model struct {
	opts Options

	theme  *styles.Theme
	header *components.Header
	status *components.StatusBar
	login  components.LoginForm
	todos  components.TodoList
	prefs  components.PrefsForm
	dialog components.WarningDialog

	keys     globalKeys
	listKeys components.ListKeys

	signedIn bool
	tab      components.Tab
	width    int
	height   int
}

// New creates the root model. Auth, Todos, Lifecycle, Prefs and Events are
// required.
func New(opts Options) *Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = auth.DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	m := &Model{
		opts:     opts,
		theme:    opts.Theme,
		header:   components.NewHeader(opts.Theme),
		status:   components.NewStatusBar(opts.Theme),
		login:    components.NewLoginForm(opts.Theme),
		todos:    components.NewTodoList(opts.Theme),
		prefs:    components.NewPrefsForm(opts.Theme, opts.Prefs.Preferences()),
		dialog:   components.NewWarningDialog(opts.Theme),
		keys:     defaultGlobalKeys(),
		listKeys: components.DefaultListKeys(),
	}
	if user, ok := opts.Auth.User(); ok && opts.Auth.IsAuthenticated() {
		m.enterSignedIn(user)
	}
	m.refreshStatus()
	return m
}

// Init starts the status refresh and, when a session was restored, loads
// the todo list.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.login.Init(), statusTick()}
	if m.signedIn {
		cmds = append(cmds, m.loadTodos())
	}
	return tea.Batch(cmds...)
}

func statusTick() tea.Cmd {
	return tea.Tick(StatusRefreshInterval, func(time.Time) tea.Msg { return statusTickMsg{} })
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Every interaction counts as presence before it is routed anywhere.
	if ev, ok := EventFor(msg, m.opts.Now()); ok {
		m.opts.Events.Publish(ev)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.header.SetWidth(msg.Width)
		m.status.SetWidth(msg.Width)
		m.login.SetWidth(msg.Width)
		m.todos.SetSize(msg.Width, m.bodyHeight())
		m.dialog.SetSize(msg.Width, msg.Height)
		return m, nil

	case statusTickMsg:
		m.refreshStatus()
		return m, statusTick()

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	// Session lifecycle
	case WarningMsg:
		m.refreshStatus()
		return m, m.dialog.Show(msg.Timeout)

	case ResumedMsg:
		m.dialog.Hide()
		m.refreshStatus()
		return m, nil

	case LoggedOutMsg:
		return m.handleLoggedOut(msg.Reason)

	case components.StayLoggedInMsg:
		m.dialog.Hide()
		m.opts.Lifecycle.StayLoggedIn()
		m.refreshStatus()
		return m, nil

	case components.ForceLogoutMsg:
		m.opts.Lifecycle.ForceLogout()
		return m, nil

	case components.WarningTickMsg:
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.Update(msg)
		return m, cmd

	// Authentication
	case components.LoginSubmitMsg:
		m.login.SetBusy(true)
		return m, m.doLogin(msg)

	case components.SignupSubmitMsg:
		m.login.SetBusy(true)
		return m, m.doSignup(msg)

	case authResultMsg:
		if msg.err != nil {
			m.login.SetError(authError(msg.err))
			return m, nil
		}
		m.login.Reset()
		m.enterSignedIn(msg.user)
		m.status.SetMessage("")
		m.refreshStatus()
		return m, m.loadTodos()

	// Todos
	case components.ReloadTodosMsg:
		return m, m.loadTodos()

	case components.CreateTodoMsg:
		return m, m.apiTodo(func(ctx context.Context) (todo.Todo, error) {
			return m.opts.Todos.Create(ctx, msg.Text)
		})

	case components.EditTodoMsg:
		return m, m.apiTodo(func(ctx context.Context) (todo.Todo, error) {
			return m.opts.Todos.Update(ctx, msg.ID, msg.Text)
		})

	case components.ToggleTodoMsg:
		return m, m.apiTodo(func(ctx context.Context) (todo.Todo, error) {
			return m.opts.Todos.SetCompleted(ctx, msg.ID, msg.Completed)
		})

	case components.DeleteTodoMsg:
		return m, m.deleteTodo(msg.ID)

	case todosLoadedMsg:
		if msg.err != nil {
			return m, m.apiFailed(msg.err, &m.todos)
		}
		m.todos.SetPage(msg.page)
		return m, nil

	case todoSavedMsg:
		if msg.err != nil {
			return m, m.apiFailed(msg.err, nil)
		}
		m.todos.Upsert(msg.todo)
		return m, nil

	case todoDeletedMsg:
		if msg.err != nil {
			return m, m.apiFailed(msg.err, nil)
		}
		m.todos.Remove(msg.id)
		return m, nil

	// Preferences
	case components.SavePreferencesMsg:
		return m, m.savePrefs(msg.Preferences)

	case prefsSavedMsg:
		if msg.err != nil {
			m.prefs.SetError(msg.err)
			return m, nil
		}
		m.prefs.Saved(msg.prefs)
		m.refreshStatus()
		return m, nil
	}

	// Everything else (cursor blink, spinner ticks) goes to the active view.
	return m, m.routeToView(msg)
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	// The warning dialog is modal.
	if m.dialog.Visible() {
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.Update(msg)
		return m, cmd
	}

	if !m.signedIn {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Logout):
		m.opts.Lifecycle.Logout()
		return m, nil
	case key.Matches(msg, m.keys.Todos):
		m.setTab(components.TabTodos)
		return m, nil
	case key.Matches(msg, m.keys.Prefs):
		m.setTab(components.TabPreferences)
		return m, nil
	}

	return m, m.routeToView(msg)
}

func (m *Model) routeToView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case !m.signedIn:
		m.login, cmd = m.login.Update(msg)
	case m.tab == components.TabPreferences:
		m.prefs, cmd = m.prefs.Update(msg)
	default:
		m.todos, cmd = m.todos.Update(msg)
	}
	return cmd
}

func (m *Model) setTab(tab components.Tab) {
	m.tab = tab
	m.header.SetActive(tab)
	if tab == components.TabPreferences {
		m.prefs.SetPreferences(m.opts.Prefs.Preferences())
		m.status.SetShortcuts(m.keys.Todos, m.keys.Logout, m.keys.Quit)
		return
	}
	shortcuts := []key.Binding{m.listKeys.New, m.listKeys.Toggle, m.listKeys.Delete, m.keys.Prefs, m.keys.Logout}
	if m.theme.GetLayoutMode() == styles.LayoutWide {
		shortcuts = append(shortcuts, m.listKeys.Edit, m.listKeys.Filter, m.keys.Quit)
	}
	m.status.SetShortcuts(shortcuts...)
}

func (m *Model) enterSignedIn(user auth.User) {
	m.signedIn = true
	m.header.SetUser(user.DisplayName())
	m.setTab(components.TabTodos)
}

func (m *Model) handleLoggedOut(reason string) (tea.Model, tea.Cmd) {
	m.dialog.Hide()
	m.signedIn = false
	m.header.SetUser("")
	m.todos.Reset()
	m.login.Reset()
	m.status.SetShortcuts(m.keys.Quit)

	switch reason {
	case session.ReasonInactivity:
		m.status.SetMessage(styles.RenderWarning("Logged out due to inactivity"))
	case session.ReasonWarningDismissed:
		m.status.SetMessage(styles.RenderInfo("Logged out"))
	default:
		m.status.SetMessage(styles.RenderInfo("Signed out"))
	}
	m.refreshStatus()
	return m, nil
}

func (m *Model) refreshStatus() {
	m.status.SetSession(m.opts.Lifecycle.Status())
}

func (m *Model) bodyHeight() int {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.opts.RequestTimeout)
}

func (m *Model) doLogin(msg components.LoginSubmitMsg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		user, err := m.opts.Auth.Login(ctx, msg.Username, msg.Password)
		return authResultMsg{user: user, err: err}
	}
}

func (m *Model) doSignup(msg components.SignupSubmitMsg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		user, err := m.opts.Auth.Signup(ctx, msg.Request)
		return authResultMsg{user: user, err: err}
	}
}

func (m *Model) loadTodos() tea.Cmd {
	spin := m.todos.SetLoading(true)
	load := func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		page, err := m.opts.Todos.List(ctx, PageSize, 0)
		return todosLoadedMsg{page: page, err: err}
	}
	return tea.Batch(spin, load)
}

func (m *Model) apiTodo(call func(ctx context.Context) (todo.Todo, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		t, err := call(ctx)
		return todoSavedMsg{todo: t, err: err}
	}
}

func (m *Model) deleteTodo(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		return todoDeletedMsg{id: id, err: m.opts.Todos.Delete(ctx, id)}
	}
}

// savePrefs persists p. The config store notifies the session controller,
// which rebuilds the tracker when the activity settings changed.
func (m *Model) savePrefs(p config.Preferences) tea.Cmd {
	previous := m.opts.Prefs.Preferences()
	return func() tea.Msg {
		if err := m.opts.Prefs.SetPreferences(p); err != nil {
			return prefsSavedMsg{err: err}
		}
		if p.StaySignedIn != previous.StaySignedIn {
			ctx, cancel := m.ctx()
			defer cancel()
			if err := m.opts.Auth.SetPersistence(ctx, p.StaySignedIn); err != nil {
				m.opts.Logger.Warn("failed to update credential persistence", "error", err)
			}
		}
		return prefsSavedMsg{prefs: p}
	}
}

// apiFailed reports err. A rejected token ends the session.
func (m *Model) apiFailed(err error, list *components.TodoList) tea.Cmd {
	if auth.IsUnauthorized(err) {
		m.opts.Logger.Info("api rejected token, signing out")
		m.opts.Lifecycle.Logout()
		return nil
	}
	m.opts.Logger.Warn("api request failed", "error", err)
	if list != nil {
		list.SetError(err)
		return nil
	}
	m.status.SetMessage(styles.RenderError(err.Error()))
	return nil
}

func authError(err error) error {
	var apiErr *auth.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return errors.New(apiErr.Message)
	}
	return err
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the application.
func (m *Model) View() string {
	if m.dialog.Visible() {
		return m.dialog.View()
	}

	var body string
	switch {
	case !m.signedIn:
		body = m.login.View()
	case m.tab == components.TabPreferences:
		body = m.prefs.View()
	default:
		body = m.todos.View()
	}

	if m.width > 0 && m.height > 0 {
		position := lipgloss.Top
		if !m.signedIn {
			position = lipgloss.Center
		}
		body = lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, position, body)
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.status.View())
}

// =============================================================================
// PROGRAM
// =============================================================================

// Run starts the full-screen program and blocks until it exits. notifier is
// the one given to the session controller; Run starts and stops its pump.
func Run(ctx context.Context, m *Model, notifier *Notifier) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	go notifier.Run(p)
	defer notifier.Close()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
