package controllers

import (
	"github.com/smileynet/taigaterm/internal/async"
	"github.com/smileynet/taigaterm/internal/signals"
	"github.com/smileynet/taigaterm/internal/taiga"
)

// ProjectsView lists the user's projects, one button per project.
// ProjectButtons()[i] opens Projects()[i].
type ProjectsView interface {
	Notifier() Notifier
	Projects() []taiga.Project
	ProjectButtons() []any
	SetProjects(projects []taiga.Project)
}

// ProjectsExecutor loads the project list and project details.
type ProjectsExecutor interface {
	Projects() *async.Future[[]taiga.Project]
	ProjectDetail(project taiga.Project) *async.Future[taiga.Project]
}

// ProjectsStateMachine is entered once a project is fetched.
type ProjectsStateMachine interface {
	ProjectDetail(project taiga.Project) error
}

// ProjectsController handles clicks on the project list.
type ProjectsController struct {
	base
	view     ProjectsView
	executor ProjectsExecutor
	sm       ProjectsStateMachine
	bound    []any
}

// NewProjectsController binds to every project button currently in the view.
func NewProjectsController(view ProjectsView, executor ProjectsExecutor, sm ProjectsStateMachine, bus *signals.Bus, opts ...Option) *ProjectsController {
	c := &ProjectsController{base: newBase(bus, opts), view: view, executor: executor, sm: sm}
	c.bind()
	return c
}

// Load fetches the project list and rebuilds the view's buttons.
func (c *ProjectsController) Load() {
	f := c.executor.Projects()
	f.OnDone(func(r async.Result[[]taiga.Project]) {
		if r.Err != nil {
			c.view.Notifier().ErrorMsg("Failed to fetch projects: " + describe(r.Err))
			return
		}
		c.view.SetProjects(r.Value)
		c.bind()
	})
}

func (c *ProjectsController) bind() {
	for _, src := range c.bound {
		c.bus.Disconnect(src)
	}
	c.bound = c.view.ProjectButtons()
	projects := c.view.Projects()
	for i, src := range c.bound {
		if i >= len(projects) {
			break
		}
		project := projects[i]
		c.bus.Connect(src, signals.Click, func(any) { c.HandleProjectClick(project) })
	}
}

// HandleProjectClick announces the fetch and requests the project detail.
func (c *ProjectsController) HandleProjectClick(project taiga.Project) {
	c.view.Notifier().InfoMsg("Fetching project data")
	f := c.executor.ProjectDetail(project)
	f.OnDone(c.handleProjectDetailResponse)
}

func (c *ProjectsController) handleProjectDetailResponse(r async.Result[taiga.Project]) {
	if r.Err != nil {
		c.view.Notifier().ErrorMsg("Failed to fetch project data: " + describe(r.Err))
		return
	}
	c.transitioned(c.view.Notifier(), "project_detail", c.sm.ProjectDetail(r.Value))
}
