// Package ui is the Bubble Tea front end: one root model hosting the active
// screen, a header, the status bar notifier and a help line.
package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/taigaterm/internal/async"
	"github.com/smileynet/taigaterm/internal/controllers"
	"github.com/smileynet/taigaterm/internal/session"
	"github.com/smileynet/taigaterm/internal/signals"
	"github.com/smileynet/taigaterm/internal/statemachine"
	"github.com/smileynet/taigaterm/internal/taiga"
)

// Executor is everything the screens' controllers request, plus the
// bookkeeping the App reads for the header and logout.
type Executor interface {
	controllers.LoginExecutor
	controllers.ProjectsExecutor
	controllers.MilestoneExecutor
	CurrentUser() *async.Future[taiga.User]
	InFlight() int
	Logout()
}

// SessionStore persists the login across runs.
type SessionStore interface {
	Save(s session.Session) error
	Clear() error
}

// Options configures an App.
type Options struct {
	Executor Executor
	// Queue delivers request completions to the update loop. The executor
	// must post to the same queue.
	Queue    *async.Queue
	Bus      *signals.Bus
	Sessions SessionStore
	Host     string
	Logger   *slog.Logger
	Now      func() time.Time
	// Restore skips the login screen with a saved session.
	Restore *session.Session
}

// screen is one full-window view.
type screen interface {
	update(msg tea.KeyMsg) tea.Cmd
	view(width, height int) string
	setSize(width, height int)
	// sources are the signal sources to disconnect when the screen goes away.
	sources() []any
	keyMap() help.KeyMap
}

// textCapturer is implemented by screens with a focused text field, where
// printable global keys must be typed instead.
type textCapturer interface {
	capturesText() bool
}

// completionMsg carries a request completion into Update.
type completionMsg struct{ fn func() }

// App is the root model. It is used as a pointer so signal listeners can
// mutate views in place between Update calls.
type App struct {
	exec     Executor
	queue    *async.Queue
	bus      *signals.Bus
	sessions SessionStore
	host     string
	logger   *slog.Logger
	now      func() time.Time

	sm     *statemachine.Machine
	status *StatusBar
	screen screen

	// Cached between screens.
	user     string
	username string
	projects []taiga.Project
	project  string
	sprint   string

	spinner  spinner.Model
	help     help.Model
	keys     globalKeys
	width    int
	height   int
	quitting bool
}

// NewApp creates the root model on the login screen, or on the project
// list when opts.Restore is set.
func NewApp(opts Options) *App {
	bus := opts.Bus
	if bus == nil {
		bus = signals.Default
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentColor)

	a := &App{
		exec:     opts.Executor,
		queue:    opts.Queue,
		bus:      bus,
		sessions: opts.Sessions,
		host:     opts.Host,
		logger:   logger.With(slog.String("component", "ui")),
		now:      now,
		status:   &StatusBar{},
		spinner:  s,
		help:     help.New(),
		keys:     defaultGlobalKeys(),
	}
	a.sm = statemachine.New(a.onEnter)
	a.showLogin("")

	if opts.Restore != nil {
		a.logger.Info("restoring session", slog.String("user", opts.Restore.Username))
		if err := a.sm.LoggedIn(opts.Restore.Auth()); err != nil {
			a.logger.Error("restore failed", slog.Any("error", err))
		} else {
			a.checkRestored(*opts.Restore)
		}
	}
	return a
}

// checkRestored asks the API who the restored token belongs to. An expired
// token sends the user back to the login screen; otherwise the name in the
// header and the saved session are refreshed.
func (a *App) checkRestored(s session.Session) {
	a.exec.CurrentUser().OnDone(func(r async.Result[taiga.User]) {
		switch {
		case r.Err == nil:
			if r.Value.FullName == "" || r.Value.FullName == s.FullName {
				return
			}
			if a.sm.State() != statemachine.Login && a.sm.State() != statemachine.Quit {
				a.user = r.Value.FullName
			}
			if a.sessions != nil {
				s.FullName = r.Value.FullName
				if err := a.sessions.Save(s); err != nil {
					a.logger.Warn("saving session", slog.Any("error", err))
				}
			}
		case taiga.IsUnauthorized(r.Err):
			a.logger.Info("saved session rejected", slog.String("user", s.Username))
			if a.sm.State() != statemachine.Login && a.sm.State() != statemachine.Quit {
				if err := a.sm.LoggedOut(); err != nil {
					a.logger.Error("logout rejected", slog.Any("error", err))
				}
			}
			a.status.ErrorMsg("Session expired, log in again")
		default:
			a.logger.Warn("checking saved session", slog.Any("error", r.Err))
		}
	})
}

// State returns the current screen state.
func (a *App) State() statemachine.State { return a.sm.State() }

// Status returns the notifier shared by every screen.
func (a *App) Status() *StatusBar { return a.status }

// Init starts listening for completions and the spinner.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.listen(), a.spinner.Tick)
}

// listen waits for the next completion posted to the queue.
func (a *App) listen() tea.Cmd {
	q := a.queue
	if q == nil {
		return nil
	}
	return func() tea.Msg {
		fn, ok := q.Next(context.Background())
		if !ok {
			return nil
		}
		return completionMsg{fn: fn}
	}
}

// Update handles incoming messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case completionMsg:
		msg.fn()
		cmd = a.listen()

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		a.screen.setSize(a.width, a.bodyHeight())

	case spinner.TickMsg:
		a.spinner, cmd = a.spinner.Update(msg)

	case tea.KeyMsg:
		cmd = a.handleKey(msg)
	}

	if a.quitting {
		return a, tea.Quit
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	typing := false
	if tc, ok := a.screen.(textCapturer); ok {
		typing = tc.capturesText()
	}

	switch {
	case key.Matches(msg, a.keys.ForceQuit):
		a.quit()
		return nil
	case key.Matches(msg, a.keys.Logout) && a.sm.State() != statemachine.Login:
		if err := a.sm.LoggedOut(); err != nil {
			a.logger.Debug("logout ignored", slog.Any("error", err))
		}
		return nil
	case !typing && key.Matches(msg, a.keys.Quit):
		a.quit()
		return nil
	case !typing && key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return nil
	}
	return a.screen.update(msg)
}

func (a *App) quit() {
	if err := a.sm.Quit(); err != nil {
		a.logger.Error("quit rejected", slog.Any("error", err))
	}
}

// onEnter swaps the active screen after every transition.
func (a *App) onEnter(from, to statemachine.State, payload any) {
	a.logger.Debug("screen changed", slog.String("from", from.String()), slog.String("to", to.String()))
	a.status.Clear()

	switch to {
	case statemachine.Login:
		a.exec.Logout()
		if a.sessions != nil {
			if err := a.sessions.Clear(); err != nil {
				a.logger.Warn("clearing session", slog.Any("error", err))
			}
		}
		a.showLogin(a.username)
		a.user, a.username, a.projects, a.project, a.sprint = "", "", nil, "", ""

	case statemachine.Projects:
		a.project, a.sprint = "", ""
		if auth, ok := payload.(taiga.Auth); ok {
			a.loggedIn(auth)
			return
		}
		v := NewProjectsView(a.status, a.projects, a.bus)
		controllers.NewProjectsController(v, a.exec, a.sm, a.bus, a.controllerOpts()...)
		a.setScreen(v)

	case statemachine.ProjectDetail:
		project, _ := payload.(taiga.Project)
		a.project, a.sprint = project.Name, ""
		v := NewProjectDetailView(a.status, project, a.bus)
		controllers.NewProjectDetailController(v, a.exec, a.sm, a.bus, a.controllerOpts()...)
		a.setScreen(v)

	case statemachine.ProjectMilestones:
		d, _ := payload.(taiga.MilestoneDashboard)
		a.project, a.sprint = d.Project.Name, d.Milestone.Name
		if current, ok := a.screen.(*MilestoneView); ok && from == statemachine.ProjectMilestones {
			current.Populate(d)
			return
		}
		v := NewMilestoneView(a.status, d, a.now, a.bus)
		controllers.NewMilestoneController(v, a.exec, a.sm, a.bus, a.controllerOpts()...)
		a.setScreen(v)

	case statemachine.Quit:
		a.quitting = true
		if a.queue != nil {
			if n := a.queue.Len(); n > 0 {
				a.logger.Debug("dropping pending completions", slog.Int("count", n))
			}
			a.queue.Close()
		}
	}
}

func (a *App) loggedIn(auth taiga.Auth) {
	a.user, a.username = auth.FullName, auth.Username
	if a.user == "" {
		a.user = auth.Username
	}
	if a.sessions != nil && auth.AuthToken != "" {
		if err := a.sessions.Save(session.FromAuth(a.host, auth)); err != nil {
			a.logger.Warn("saving session", slog.Any("error", err))
		}
	}
	v := NewProjectsView(a.status, nil, a.bus)
	c := controllers.NewProjectsController(v, a.exec, a.sm, a.bus, a.controllerOpts()...)
	a.setScreen(v)
	c.Load()
}

func (a *App) showLogin(username string) {
	v := NewLoginView(a.status, a.host, a.bus)
	if username != "" {
		v.SetUsername(username)
	}
	controllers.NewLoginController(v, a.exec, a.sm, a.bus, a.controllerOpts()...)
	a.setScreen(v)
}

func (a *App) controllerOpts() []controllers.Option {
	return []controllers.Option{controllers.WithLogger(a.logger.With(slog.String("component", "controllers")))}
}

// setScreen replaces the active screen and drops the old screen's listeners.
func (a *App) setScreen(s screen) {
	if a.screen != nil {
		if pv, ok := a.screen.(*ProjectsView); ok {
			a.projects = pv.Projects()
		}
		for _, src := range a.screen.sources() {
			a.bus.Disconnect(src)
		}
	}
	a.screen = s
	s.setSize(a.width, a.bodyHeight())
}

func (a *App) bodyHeight() int {
	return max(a.height-headerHeight-statusHeight-helpHeight, 1)
}

// View renders header, active screen, status bar and help.
func (a *App) View() string {
	if a.quitting {
		return ""
	}
	body := lipgloss.NewStyle().
		Width(a.width).
		Height(a.bodyHeight()).
		MaxHeight(a.bodyHeight()).
		Render(a.screen.view(a.width, a.bodyHeight()))

	return lipgloss.JoinVertical(lipgloss.Left,
		a.header(),
		body,
		a.status.View(a.width),
		a.help.View(a.screen.keyMap()),
	)
}

func (a *App) header() string {
	parts := []string{"taigaterm"}
	for _, p := range []string{a.project, a.sprint} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	left := headerStyle.Render(strings.Join(parts, " › "))

	var right []string
	if a.exec != nil && a.exec.InFlight() > 0 {
		right = append(right, a.spinner.View())
	}
	if a.user != "" {
		right = append(right, labelStyle.Render(a.user))
	}
	line := left
	if r := strings.Join(right, " "); r != "" {
		gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(r), 1)
		line = left + strings.Repeat(" ", gap) + r
	}
	rule := headerRuleStyle.Render(strings.Repeat("─", max(a.width, 1)))
	return line + "\n" + rule
}
