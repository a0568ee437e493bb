package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/taigaterm/internal/controllers"
	"github.com/smileynet/taigaterm/internal/signals"
	"github.com/smileynet/taigaterm/internal/taiga"
	"github.com/smileynet/taigaterm/internal/ui/widgets"
)

// ProjectsView lists the user's projects as buttons.
type ProjectsView struct {
	status   *StatusBar
	bus      *signals.Bus
	projects []taiga.Project
	buttons  []*widgets.Button[taiga.Project]
	cursor   int
	loaded   bool

	keys listKeyMap
}

// NewProjectsView creates the list. projects may be a cached list shown
// until a fresh one arrives.
func NewProjectsView(status *StatusBar, projects []taiga.Project, bus *signals.Bus) *ProjectsView {
	v := &ProjectsView{
		status: status,
		bus:    bus,
		keys:   listKeyMap{form: defaultFormKeys(), global: defaultGlobalKeys()},
	}
	v.setProjects(projects)
	v.loaded = len(projects) > 0
	return v
}

// Notifier implements controllers.ProjectsView.
func (v *ProjectsView) Notifier() controllers.Notifier { return v.status }

// Projects implements controllers.ProjectsView.
func (v *ProjectsView) Projects() []taiga.Project { return v.projects }

// ProjectButtons implements controllers.ProjectsView.
func (v *ProjectsView) ProjectButtons() []any {
	out := make([]any, len(v.buttons))
	for i, b := range v.buttons {
		out[i] = b
	}
	return out
}

// SetProjects replaces the list and its buttons.
func (v *ProjectsView) SetProjects(projects []taiga.Project) {
	v.setProjects(projects)
	v.loaded = true
}

func (v *ProjectsView) setProjects(projects []taiga.Project) {
	v.projects = projects
	v.buttons = make([]*widgets.Button[taiga.Project], len(projects))
	for i, p := range projects {
		v.buttons[i] = widgets.NewButton(p.Name, p, v.bus)
	}
	v.cursor = min(v.cursor, max(len(projects)-1, 0))
}

func (v *ProjectsView) sources() []any { return v.ProjectButtons() }

func (v *ProjectsView) keyMap() help.KeyMap { return v.keys }

func (v *ProjectsView) setSize(int, int) {}

func (v *ProjectsView) update(msg tea.KeyMsg) tea.Cmd {
	if len(v.buttons) == 0 {
		return nil
	}
	switch {
	case key.Matches(msg, v.keys.form.Next):
		v.cursor = (v.cursor + 1) % len(v.buttons)
	case key.Matches(msg, v.keys.form.Prev):
		v.cursor = (v.cursor + len(v.buttons) - 1) % len(v.buttons)
	case key.Matches(msg, v.keys.form.Press):
		v.buttons[v.cursor].Press()
	}
	return nil
}

func (v *ProjectsView) view(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Projects"))
	b.WriteString("\n")

	switch {
	case !v.loaded:
		b.WriteString(labelStyle.Render("Loading projects…"))
		return b.String()
	case len(v.buttons) == 0:
		b.WriteString(labelStyle.Render("You are not a member of any project."))
		return b.String()
	}

	// Keep the cursor row visible: one line per project.
	rows := max(height-2, 1)
	start := 0
	if v.cursor >= rows {
		start = v.cursor - rows + 1
	}
	end := min(start+rows, len(v.buttons))
	for i := start; i < end; i++ {
		p := v.projects[i]
		marker := "  "
		name := p.Name
		if i == v.cursor {
			marker = cursorStyle.Render("▸ ")
			name = cursorStyle.Render(name)
		}
		line := marker + name
		if p.Description != "" {
			line += "  " + labelStyle.Render(widgets.ListText(p.Description, max(width-lipgloss.Width(line)-2, 1)))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if len(v.buttons) > rows {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%d/%d", v.cursor+1, len(v.buttons))))
	}
	return b.String()
}
