package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/taigaterm/internal/controllers"
	"github.com/smileynet/taigaterm/internal/data"
	"github.com/smileynet/taigaterm/internal/signals"
	"github.com/smileynet/taigaterm/internal/taiga"
	"github.com/smileynet/taigaterm/internal/ui/widgets"
)

// ProjectDetailView summarizes one project.
type ProjectDetailView struct {
	status     *StatusBar
	project    taiga.Project
	milestones *widgets.Button[struct{}]
	projects   *widgets.Button[struct{}]
	focus      int

	keys listKeyMap
}

// NewProjectDetailView creates the project screen.
func NewProjectDetailView(status *StatusBar, project taiga.Project, bus *signals.Bus) *ProjectDetailView {
	return &ProjectDetailView{
		status:     status,
		project:    project,
		milestones: widgets.NewButton("Milestones", struct{}{}, bus),
		projects:   widgets.NewButton("Projects", struct{}{}, bus),
		keys:       listKeyMap{form: defaultFormKeys(), global: defaultGlobalKeys()},
	}
}

// Notifier implements controllers.ProjectDetailView.
func (v *ProjectDetailView) Notifier() controllers.Notifier { return v.status }

// Project implements controllers.ProjectDetailView.
func (v *ProjectDetailView) Project() taiga.Project { return v.project }

// MilestonesButton implements controllers.ProjectDetailView.
func (v *ProjectDetailView) MilestonesButton() any { return v.milestones }

// ProjectsButton implements controllers.ProjectDetailView.
func (v *ProjectDetailView) ProjectsButton() any { return v.projects }

func (v *ProjectDetailView) sources() []any { return []any{v.milestones, v.projects} }

func (v *ProjectDetailView) keyMap() help.KeyMap { return v.keys }

func (v *ProjectDetailView) setSize(int, int) {}

func (v *ProjectDetailView) buttons() []*widgets.Button[struct{}] {
	return []*widgets.Button[struct{}]{v.milestones, v.projects}
}

func (v *ProjectDetailView) update(msg tea.KeyMsg) tea.Cmd {
	n := len(v.buttons())
	switch {
	case key.Matches(msg, v.keys.form.Next):
		v.focus = (v.focus + 1) % n
	case key.Matches(msg, v.keys.form.Prev):
		v.focus = (v.focus + n - 1) % n
	case key.Matches(msg, v.keys.form.Press):
		v.buttons()[v.focus].Press()
	}
	return nil
}

func (v *ProjectDetailView) view(width, _ int) string {
	p := v.project
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Name))
	b.WriteString("\n")
	if p.Description != "" {
		b.WriteString(lipgloss.NewStyle().Width(max(width, 20)).Render(p.Description))
		b.WriteString("\n\n")
	}

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("Members", fmt.Sprintf("%d", len(p.Members)))
	row("Milestones", fmt.Sprintf("%d", len(p.Milestones)))
	if m, ok := data.CurrentMilestone(p); ok {
		row("Current", fmt.Sprintf("%s (%s/%s points, finishes %s)",
			data.MilestoneName(m),
			widgets.FormatNumber(data.MilestoneClosedPoints(m)),
			widgets.FormatNumber(data.MilestoneTotalPoints(m)),
			data.MilestoneFinishDate(m)))
	}
	var roles []string
	for _, r := range data.ComputableRoles(p) {
		roles = append(roles, r.Name)
	}
	if len(roles) > 0 {
		row("Roles", strings.Join(roles, ", "))
	}
	b.WriteString("\n")

	buttons := make([]string, 0, 2)
	for i, btn := range v.buttons() {
		buttons = append(buttons, btn.View(i == v.focus))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	return b.String()
}
