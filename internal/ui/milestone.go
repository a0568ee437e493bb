package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/taigaterm/internal/controllers"
	"github.com/smileynet/taigaterm/internal/signals"
	"github.com/smileynet/taigaterm/internal/taiga"
	"github.com/smileynet/taigaterm/internal/ui/widgets"
)

// MilestoneView is the milestone dashboard: name, stats panels, taskboard
// and the milestone selector popup.
type MilestoneView struct {
	status    *StatusBar
	bus       *signals.Bus
	now       func() time.Time
	dashboard taiga.MilestoneDashboard

	info      widgets.MilestoneInfo
	stats     widgets.MilestoneStats
	taskboard *widgets.MilestoneTaskboard
	popup     *widgets.MilestoneSelectorPopup

	change  *widgets.Button[struct{}]
	refresh *widgets.Button[struct{}]
	back    *widgets.Button[struct{}]
	focus   int

	width, height int
	keys          milestoneKeyMap
	boardKeys     widgets.TaskboardKeys
}

// NewMilestoneView creates the dashboard for d. now is the clock used for
// remaining days.
func NewMilestoneView(status *StatusBar, d taiga.MilestoneDashboard, now func() time.Time, bus *signals.Bus) *MilestoneView {
	if now == nil {
		now = time.Now
	}
	boardKeys := widgets.DefaultTaskboardKeys()
	v := &MilestoneView{
		status:    status,
		bus:       bus,
		now:       now,
		taskboard: widgets.NewMilestoneTaskboard(d.Project),
		change:    widgets.NewButton("Change milestone", struct{}{}, bus),
		refresh:   widgets.NewButton("Refresh", struct{}{}, bus),
		back:      widgets.NewButton("Back", struct{}{}, bus),
		boardKeys: boardKeys,
		keys: milestoneKeyMap{
			form:      defaultFormKeys(),
			milestone: defaultMilestoneKeys(),
			global:    defaultGlobalKeys(),
			up:        boardKeys.Up,
			down:      boardKeys.Down,
		},
	}
	v.Populate(d)
	return v
}

// Populate replaces the dashboard shown.
func (v *MilestoneView) Populate(d taiga.MilestoneDashboard) {
	v.dashboard = d
	v.info.Populate(d.Milestone)
	v.stats.Populate(d.Stats, v.now())
	v.taskboard.Populate(d.UserStories, d.Tasks)
	v.layout()
}

// Notifier implements controllers.MilestoneView.
func (v *MilestoneView) Notifier() controllers.Notifier { return v.status }

// Dashboard implements controllers.MilestoneView.
func (v *MilestoneView) Dashboard() taiga.MilestoneDashboard { return v.dashboard }

// ChangeButton implements controllers.MilestoneView.
func (v *MilestoneView) ChangeButton() any { return v.change }

// RefreshButton implements controllers.MilestoneView.
func (v *MilestoneView) RefreshButton() any { return v.refresh }

// BackButton implements controllers.MilestoneView.
func (v *MilestoneView) BackButton() any { return v.back }

// OpenSelector implements controllers.MilestoneView.
func (v *MilestoneView) OpenSelector() ([]controllers.MilestoneOption, any) {
	v.popup = widgets.NewMilestoneSelectorPopup(v.dashboard.Project, v.dashboard.Milestone, v.bus)
	var options []controllers.MilestoneOption
	for _, e := range v.popup.Options() {
		options = append(options, controllers.MilestoneOption{Source: e, Milestone: e.Milestone})
	}
	return options, v.popup.Cancel
}

// CloseSelector implements controllers.MilestoneView.
func (v *MilestoneView) CloseSelector() { v.popup = nil }

// SelectorOpen reports whether the milestone selector is showing.
func (v *MilestoneView) SelectorOpen() bool { return v.popup != nil }

func (v *MilestoneView) sources() []any {
	out := []any{v.change, v.refresh, v.back}
	if v.popup != nil {
		for _, e := range v.popup.Entries {
			out = append(out, e)
		}
		out = append(out, v.popup.Cancel)
	}
	return out
}

func (v *MilestoneView) keyMap() help.KeyMap {
	if v.popup != nil {
		return widgets.DefaultSelectorKeys()
	}
	return v.keys
}

func (v *MilestoneView) buttons() []*widgets.Button[struct{}] {
	return []*widgets.Button[struct{}]{v.change, v.refresh, v.back}
}

func (v *MilestoneView) setSize(width, height int) {
	v.width, v.height = width, height
	v.layout()
}

// Rows above the taskboard: name line, stats row and button row.
const (
	infoRows    = 1
	statsRows   = 5
	buttonsRows = 3
)

func (v *MilestoneView) layout() {
	v.taskboard.SetSize(v.width, max(v.height-infoRows-statsRows-buttonsRows, 3))
}

func (v *MilestoneView) update(msg tea.KeyMsg) tea.Cmd {
	if v.popup != nil {
		return v.popup.Update(msg)
	}
	switch {
	case key.Matches(msg, v.boardKeys.Up), key.Matches(msg, v.boardKeys.Down),
		key.Matches(msg, v.boardKeys.Top), key.Matches(msg, v.boardKeys.Bottom):
		return v.taskboard.Update(msg)
	case key.Matches(msg, v.keys.milestone.Change):
		v.change.Press()
	case key.Matches(msg, v.keys.milestone.Refresh):
		v.refresh.Press()
	case key.Matches(msg, v.keys.milestone.Back):
		v.back.Press()
	case key.Matches(msg, v.keys.form.Next):
		v.focus = (v.focus + 1) % len(v.buttons())
	case key.Matches(msg, v.keys.form.Prev):
		v.focus = (v.focus + len(v.buttons()) - 1) % len(v.buttons())
	case key.Matches(msg, v.keys.form.Press):
		v.buttons()[v.focus].Press()
	}
	return nil
}

func (v *MilestoneView) view(width, height int) string {
	if v.popup != nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, v.popup.View(min(width, 90), height))
	}
	buttons := make([]string, 0, 3)
	for i, b := range v.buttons() {
		buttons = append(buttons, b.View(i == v.focus))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		v.info.View(width),
		v.stats.View(width),
		v.taskboard.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, buttons...),
	)
}
