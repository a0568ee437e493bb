package controllers

import (
	"github.com/stretchr/testify/mock"

	"github.com/smileynet/taigaterm/internal/async"
	"github.com/smileynet/taigaterm/internal/taiga"
)

// --- Test mocks ---

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) InfoMsg(text string)  { m.Called(text) }
func (m *mockNotifier) ErrorMsg(text string) { m.Called(text) }

type mockExecutor struct{ mock.Mock }

func (m *mockExecutor) Login(username, password string) *async.Future[taiga.Auth] {
	return m.Called(username, password).Get(0).(*async.Future[taiga.Auth])
}

func (m *mockExecutor) Projects() *async.Future[[]taiga.Project] {
	return m.Called().Get(0).(*async.Future[[]taiga.Project])
}

func (m *mockExecutor) ProjectDetail(project taiga.Project) *async.Future[taiga.Project] {
	return m.Called(project).Get(0).(*async.Future[taiga.Project])
}

func (m *mockExecutor) MilestoneDashboard(project taiga.Project, milestone taiga.Milestone) *async.Future[taiga.MilestoneDashboard] {
	return m.Called(project, milestone).Get(0).(*async.Future[taiga.MilestoneDashboard])
}

type mockStateMachine struct{ mock.Mock }

func (m *mockStateMachine) LoggedIn(auth taiga.Auth) error {
	return m.Called(auth).Error(0)
}

func (m *mockStateMachine) Projects() error {
	return m.Called().Error(0)
}

func (m *mockStateMachine) ProjectDetail(project taiga.Project) error {
	return m.Called(project).Error(0)
}

func (m *mockStateMachine) ProjectMilestones(dashboard taiga.MilestoneDashboard) error {
	return m.Called(dashboard).Error(0)
}

// --- Fake views ---

type button struct{ label string }

type fakeLoginView struct {
	notifier           *mockNotifier
	button             *button
	username, password string
}

func newFakeLoginView(username, password string) *fakeLoginView {
	return &fakeLoginView{
		notifier: &mockNotifier{},
		button:   &button{label: "login"},
		username: username,
		password: password,
	}
}

func (v *fakeLoginView) Notifier() Notifier { return v.notifier }
func (v *fakeLoginView) LoginButton() any   { return v.button }
func (v *fakeLoginView) Username() string   { return v.username }
func (v *fakeLoginView) Password() string   { return v.password }

type fakeProjectsView struct {
	notifier *mockNotifier
	projects []taiga.Project
	buttons  []any
}

func newFakeProjectsView(projects []taiga.Project) *fakeProjectsView {
	v := &fakeProjectsView{notifier: &mockNotifier{}}
	v.SetProjects(projects)
	return v
}

func (v *fakeProjectsView) Notifier() Notifier        { return v.notifier }
func (v *fakeProjectsView) Projects() []taiga.Project { return v.projects }
func (v *fakeProjectsView) ProjectButtons() []any     { return v.buttons }

func (v *fakeProjectsView) SetProjects(projects []taiga.Project) {
	v.projects = projects
	v.buttons = nil
	for _, p := range projects {
		v.buttons = append(v.buttons, &button{label: p.Name})
	}
}

type fakeProjectDetailView struct {
	notifier   *mockNotifier
	project    taiga.Project
	milestones *button
	projects   *button
}

func newFakeProjectDetailView(project taiga.Project) *fakeProjectDetailView {
	return &fakeProjectDetailView{
		notifier:   &mockNotifier{},
		project:    project,
		milestones: &button{label: "milestones"},
		projects:   &button{label: "projects"},
	}
}

func (v *fakeProjectDetailView) Notifier() Notifier     { return v.notifier }
func (v *fakeProjectDetailView) Project() taiga.Project { return v.project }
func (v *fakeProjectDetailView) MilestonesButton() any  { return v.milestones }
func (v *fakeProjectDetailView) ProjectsButton() any    { return v.projects }

type fakeMilestoneView struct {
	notifier  *mockNotifier
	dashboard taiga.MilestoneDashboard

	change, refresh, back, cancel *button
	options                       []MilestoneOption
	selectorOpen                  bool
}

func newFakeMilestoneView(d taiga.MilestoneDashboard) *fakeMilestoneView {
	return &fakeMilestoneView{
		notifier:  &mockNotifier{},
		dashboard: d,
		change:    &button{label: "change"},
		refresh:   &button{label: "refresh"},
		back:      &button{label: "back"},
	}
}

func (v *fakeMilestoneView) Notifier() Notifier                  { return v.notifier }
func (v *fakeMilestoneView) Dashboard() taiga.MilestoneDashboard { return v.dashboard }
func (v *fakeMilestoneView) ChangeButton() any                   { return v.change }
func (v *fakeMilestoneView) RefreshButton() any                  { return v.refresh }
func (v *fakeMilestoneView) BackButton() any                     { return v.back }

func (v *fakeMilestoneView) OpenSelector() ([]MilestoneOption, any) {
	v.selectorOpen = true
	v.options = nil
	for _, m := range v.dashboard.Project.Milestones {
		if m.ID == v.dashboard.Milestone.ID {
			continue
		}
		v.options = append(v.options, MilestoneOption{Source: &button{label: m.Name}, Milestone: m})
	}
	v.cancel = &button{label: "cancel"}
	return v.options, v.cancel
}

func (v *fakeMilestoneView) CloseSelector() { v.selectorOpen = false }
