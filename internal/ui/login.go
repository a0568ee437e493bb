package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/taigaterm/internal/controllers"
	"github.com/smileynet/taigaterm/internal/signals"
	"github.com/smileynet/taigaterm/internal/ui/widgets"
)

// Login form focus positions.
const (
	focusUsername = iota
	focusPassword
	focusLoginButton
	loginFocusCount
)

// LoginView asks for username and password.
type LoginView struct {
	status   *StatusBar
	username textinput.Model
	password textinput.Model
	button   *widgets.Button[struct{}]
	focus    int
	host     string

	keys loginKeyMap
}

// NewLoginView creates the login form. host is shown as a hint.
func NewLoginView(status *StatusBar, host string, bus *signals.Bus) *LoginView {
	username := textinput.New()
	username.Placeholder = "username or email"
	username.CharLimit = 255
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &LoginView{
		status:   status,
		username: username,
		password: password,
		button:   widgets.NewButton("Login", struct{}{}, bus),
		host:     host,
		keys:     loginKeyMap{form: defaultFormKeys(), global: defaultGlobalKeys()},
	}
}

// Notifier implements controllers.LoginView.
func (v *LoginView) Notifier() controllers.Notifier { return v.status }

// LoginButton implements controllers.LoginView.
func (v *LoginView) LoginButton() any { return v.button }

// Username implements controllers.LoginView.
func (v *LoginView) Username() string { return strings.TrimSpace(v.username.Value()) }

// Password implements controllers.LoginView.
func (v *LoginView) Password() string { return v.password.Value() }

// SetUsername prefills the username field.
func (v *LoginView) SetUsername(s string) { v.username.SetValue(s) }

func (v *LoginView) capturesText() bool { return v.focus != focusLoginButton }

func (v *LoginView) sources() []any { return []any{v.button} }

func (v *LoginView) keyMap() help.KeyMap { return v.keys }

func (v *LoginView) setSize(int, int) {}

func (v *LoginView) update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.form.Press):
		if v.focus == focusUsername {
			return v.setFocus(focusPassword)
		}
		v.button.Press()
		return nil
	case key.Matches(msg, v.keys.form.Next):
		return v.setFocus((v.focus + 1) % loginFocusCount)
	case key.Matches(msg, v.keys.form.Prev):
		return v.setFocus((v.focus + loginFocusCount - 1) % loginFocusCount)
	}

	var cmd tea.Cmd
	switch v.focus {
	case focusUsername:
		v.username, cmd = v.username.Update(msg)
	case focusPassword:
		v.password, cmd = v.password.Update(msg)
	}
	return cmd
}

func (v *LoginView) setFocus(i int) tea.Cmd {
	v.focus = i
	v.username.Blur()
	v.password.Blur()
	switch i {
	case focusUsername:
		return v.username.Focus()
	case focusPassword:
		return v.password.Focus()
	}
	return nil
}

func (v *LoginView) view(width, height int) string {
	fieldWidth := min(max(width-10, 20), 50)
	v.username.Width = fieldWidth - 4
	v.password.Width = fieldWidth - 4

	field := func(label string, input textinput.Model, focused bool) string {
		style := fieldStyle
		if focused {
			style = focusedFieldStyle
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			labelStyle.Render(label),
			style.Width(fieldWidth).Render(input.View()),
		)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Log in to Taiga"),
		labelStyle.Render(v.host),
		"",
		field("Username", v.username, v.focus == focusUsername),
		field("Password", v.password, v.focus == focusPassword),
		"",
		v.button.View(v.focus == focusLoginButton),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, form)
}
