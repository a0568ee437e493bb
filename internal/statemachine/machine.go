// Package statemachine tracks which screen the client is on and which
// screen changes are allowed.
package statemachine

import (
	"fmt"
	"slices"

	"github.com/smileynet/taigaterm/internal/taiga"
)

// State identifies a screen.
type State int

const (
	Login State = iota
	Projects
	ProjectDetail
	ProjectMilestones
	Quit
)

var stateNames = [...]string{
	Login:             "login",
	Projects:          "projects",
	ProjectDetail:     "project_detail",
	ProjectMilestones: "project_milestones",
	Quit:              "quit",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// EnterFunc is called after every successful transition. payload is the
// value passed to the transition method (taiga.Auth, taiga.Project,
// taiga.MilestoneDashboard) or nil.
type EnterFunc func(from, to State, payload any)

// TransitionError reports a transition attempted from a state that may not
// precede it.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("statemachine: cannot go from %s to %s", e.From, e.To)
}

// Machine holds the current screen. It is not safe for concurrent use; all
// calls happen on the UI goroutine.
type Machine struct {
	state   State
	onEnter EnterFunc
}

// New returns a Machine in the Login state. onEnter may be nil.
func New(onEnter EnterFunc) *Machine {
	return &Machine{state: Login, onEnter: onEnter}
}

// State returns the current screen.
func (m *Machine) State() State { return m.state }

// LoggedIn moves from Login to Projects.
func (m *Machine) LoggedIn(auth taiga.Auth) error {
	return m.transition(Projects, auth, Login)
}

// Projects returns to the project list.
func (m *Machine) Projects() error {
	return m.transition(Projects, nil, ProjectDetail, ProjectMilestones)
}

// ProjectDetail opens a project.
func (m *Machine) ProjectDetail(project taiga.Project) error {
	return m.transition(ProjectDetail, project, Projects, ProjectMilestones)
}

// ProjectMilestones opens a milestone dashboard. It is also legal from
// Projects so a dashboard that arrives after the user went back still opens.
func (m *Machine) ProjectMilestones(dashboard taiga.MilestoneDashboard) error {
	return m.transition(ProjectMilestones, dashboard, Projects, ProjectDetail)
}

// LoggedOut returns to the login screen.
func (m *Machine) LoggedOut() error {
	return m.transition(Login, nil, Projects, ProjectDetail, ProjectMilestones)
}

// Quit ends the session. It is legal from every state.
func (m *Machine) Quit() error {
	return m.enter(Quit, nil)
}

// transition enters to if the current state is to itself or one of from.
func (m *Machine) transition(to State, payload any, from ...State) error {
	if m.state != to && !slices.Contains(from, m.state) {
		return &TransitionError{From: m.state, To: to}
	}
	return m.enter(to, payload)
}

func (m *Machine) enter(to State, payload any) error {
	from := m.state
	m.state = to
	if m.onEnter != nil {
		m.onEnter(from, to, payload)
	}
	return nil
}
