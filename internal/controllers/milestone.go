package controllers

import (
	"github.com/smileynet/taigaterm/internal/async"
	"github.com/smileynet/taigaterm/internal/data"
	"github.com/smileynet/taigaterm/internal/signals"
	"github.com/smileynet/taigaterm/internal/taiga"
)

// MilestoneOption is one selectable entry of the milestone selector.
type MilestoneOption struct {
	Source    any
	Milestone taiga.Milestone
}

// MilestoneView is the milestone dashboard screen.
type MilestoneView interface {
	Notifier() Notifier
	Dashboard() taiga.MilestoneDashboard
	ChangeButton() any
	RefreshButton() any
	BackButton() any
	// OpenSelector shows the milestone selector and returns its selectable
	// options and its cancel button.
	OpenSelector() (options []MilestoneOption, cancel any)
	CloseSelector()
}

// MilestoneStateMachine is what the milestone screen can navigate to.
type MilestoneStateMachine interface {
	ProjectMilestones(dashboard taiga.MilestoneDashboard) error
	ProjectDetail(project taiga.Project) error
}

// MilestoneController handles the dashboard buttons and the selector popup.
type MilestoneController struct {
	base
	view     MilestoneView
	executor MilestoneExecutor
	sm       MilestoneStateMachine
	popup    []any
}

// NewMilestoneController binds to the Change, Refresh and Back buttons.
func NewMilestoneController(view MilestoneView, executor MilestoneExecutor, sm MilestoneStateMachine, bus *signals.Bus, opts ...Option) *MilestoneController {
	c := &MilestoneController{base: newBase(bus, opts), view: view, executor: executor, sm: sm}
	c.bus.Connect(view.ChangeButton(), signals.Click, c.HandleChangeClick)
	c.bus.Connect(view.RefreshButton(), signals.Click, c.HandleRefreshClick)
	c.bus.Connect(view.BackButton(), signals.Click, c.HandleBackClick)
	return c
}

// HandleChangeClick opens the selector and binds its entries.
func (c *MilestoneController) HandleChangeClick(any) {
	c.unbindPopup()
	options, cancel := c.view.OpenSelector()
	for _, opt := range options {
		milestone := opt.Milestone
		c.bus.Connect(opt.Source, signals.Click, func(any) { c.HandleSelect(milestone) })
		c.popup = append(c.popup, opt.Source)
	}
	if cancel != nil {
		c.bus.Connect(cancel, signals.Click, func(any) { c.closePopup() })
		c.popup = append(c.popup, cancel)
	}
}

// HandleSelect closes the selector and loads the chosen milestone.
func (c *MilestoneController) HandleSelect(milestone taiga.Milestone) {
	c.closePopup()
	c.view.Notifier().InfoMsg("Fetching milestone " + data.MilestoneName(milestone))
	c.request(milestone)
}

// HandleRefreshClick reloads the milestone on screen.
func (c *MilestoneController) HandleRefreshClick(any) {
	d := c.view.Dashboard()
	c.view.Notifier().InfoMsg("Refreshing milestone " + data.MilestoneName(d.Milestone))
	c.request(d.Milestone)
}

// HandleBackClick returns to the project screen.
func (c *MilestoneController) HandleBackClick(any) {
	c.transitioned(c.view.Notifier(), "project_detail", c.sm.ProjectDetail(c.view.Dashboard().Project))
}

func (c *MilestoneController) request(milestone taiga.Milestone) {
	f := c.executor.MilestoneDashboard(c.view.Dashboard().Project, milestone)
	f.OnDone(c.handleDashboardResponse)
}

func (c *MilestoneController) handleDashboardResponse(r async.Result[taiga.MilestoneDashboard]) {
	if r.Err != nil {
		c.view.Notifier().ErrorMsg("Failed to fetch milestone data: " + describe(r.Err))
		return
	}
	c.transitioned(c.view.Notifier(), "project_milestones", c.sm.ProjectMilestones(r.Value))
}

func (c *MilestoneController) closePopup() {
	c.unbindPopup()
	c.view.CloseSelector()
}

func (c *MilestoneController) unbindPopup() {
	for _, src := range c.popup {
		c.bus.Disconnect(src)
	}
	c.popup = nil
}
