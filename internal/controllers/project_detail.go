package controllers

import (
	"github.com/smileynet/taigaterm/internal/async"
	"github.com/smileynet/taigaterm/internal/data"
	"github.com/smileynet/taigaterm/internal/signals"
	"github.com/smileynet/taigaterm/internal/taiga"
)

// ProjectDetailView shows one project.
type ProjectDetailView interface {
	Notifier() Notifier
	Project() taiga.Project
	MilestonesButton() any
	ProjectsButton() any
}

// MilestoneExecutor fetches a milestone dashboard.
type MilestoneExecutor interface {
	MilestoneDashboard(project taiga.Project, milestone taiga.Milestone) *async.Future[taiga.MilestoneDashboard]
}

// ProjectDetailStateMachine is what the project screen can navigate to.
type ProjectDetailStateMachine interface {
	ProjectMilestones(dashboard taiga.MilestoneDashboard) error
	Projects() error
}

// ProjectDetailController handles the project screen buttons.
type ProjectDetailController struct {
	base
	view     ProjectDetailView
	executor MilestoneExecutor
	sm       ProjectDetailStateMachine
}

// NewProjectDetailController binds to the Milestones and Projects buttons.
func NewProjectDetailController(view ProjectDetailView, executor MilestoneExecutor, sm ProjectDetailStateMachine, bus *signals.Bus, opts ...Option) *ProjectDetailController {
	c := &ProjectDetailController{base: newBase(bus, opts), view: view, executor: executor, sm: sm}
	c.bus.Connect(view.MilestonesButton(), signals.Click, c.HandleMilestonesClick)
	c.bus.Connect(view.ProjectsButton(), signals.Click, c.HandleProjectsClick)
	return c
}

// HandleMilestonesClick opens the dashboard of the project's current milestone.
func (c *ProjectDetailController) HandleMilestonesClick(any) {
	project := c.view.Project()
	milestone, ok := data.CurrentMilestone(project)
	if !ok {
		c.view.Notifier().ErrorMsg("This project has no milestones")
		return
	}
	c.view.Notifier().InfoMsg("Fetching milestone " + data.MilestoneName(milestone))
	f := c.executor.MilestoneDashboard(project, milestone)
	f.OnDone(c.handleDashboardResponse)
}

// HandleProjectsClick returns to the project list.
func (c *ProjectDetailController) HandleProjectsClick(any) {
	c.transitioned(c.view.Notifier(), "projects", c.sm.Projects())
}

func (c *ProjectDetailController) handleDashboardResponse(r async.Result[taiga.MilestoneDashboard]) {
	if r.Err != nil {
		c.view.Notifier().ErrorMsg("Failed to fetch milestone data: " + describe(r.Err))
		return
	}
	c.transitioned(c.view.Notifier(), "project_milestones", c.sm.ProjectMilestones(r.Value))
}
