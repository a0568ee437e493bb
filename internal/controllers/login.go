package controllers

import (
	"github.com/smileynet/taigaterm/internal/async"
	"github.com/smileynet/taigaterm/internal/signals"
	"github.com/smileynet/taigaterm/internal/taiga"
)

// LoginView is the login screen.
type LoginView interface {
	Notifier() Notifier
	LoginButton() any
	Username() string
	Password() string
}

// LoginExecutor performs the login request.
type LoginExecutor interface {
	Login(username, password string) *async.Future[taiga.Auth]
}

// LoginStateMachine is entered once the user is authenticated.
type LoginStateMachine interface {
	LoggedIn(auth taiga.Auth) error
}

// LoginController handles the login button.
type LoginController struct {
	base
	view     LoginView
	executor LoginExecutor
	sm       LoginStateMachine
}

// NewLoginController binds to the view's login button.
func NewLoginController(view LoginView, executor LoginExecutor, sm LoginStateMachine, bus *signals.Bus, opts ...Option) *LoginController {
	c := &LoginController{base: newBase(bus, opts), view: view, executor: executor, sm: sm}
	c.bus.Connect(view.LoginButton(), signals.Click, c.HandleLoginRequest)
	return c
}

// HandleLoginRequest submits the credentials currently in the view.
func (c *LoginController) HandleLoginRequest(any) {
	f := c.executor.Login(c.view.Username(), c.view.Password())
	f.OnDone(c.handleLoginResponse)
}

func (c *LoginController) handleLoginResponse(r async.Result[taiga.Auth]) {
	if r.Err != nil {
		c.view.Notifier().ErrorMsg("Login error: " + describe(r.Err))
		return
	}
	c.transitioned(c.view.Notifier(), "logged_in", c.sm.LoggedIn(r.Value))
}
