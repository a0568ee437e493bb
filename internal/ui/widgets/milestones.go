package widgets

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/taigaterm/internal/data"
	"github.com/smileynet/taigaterm/internal/signals"
	"github.com/smileynet/taigaterm/internal/taiga"
)

const (
	closedGlyph = "☑"
	openGlyph   = "☒"
)

func glyph(closed bool) string {
	if closed {
		return Green(closedGlyph)
	}
	return Red(openGlyph)
}

// --- Info ---

// MilestoneInfo is the milestone name line.
type MilestoneInfo struct {
	name string
}

// Populate sets the milestone shown.
func (w *MilestoneInfo) Populate(m taiga.Milestone) {
	w.name = data.MilestoneName(m)
}

// View renders the name line.
func (w *MilestoneInfo) View(width int) string {
	return boldStyle.Render(ListText(w.name, width))
}

// --- Stats ---

// MilestoneStats is the row of Status, Points, Tasks and Dates panels.
type MilestoneStats struct {
	stats     taiga.MilestoneStats
	remaining int
	populated bool
}

// Populate sets the stats shown. now fixes the remaining-days computation.
func (w *MilestoneStats) Populate(stats taiga.MilestoneStats, now time.Time) {
	w.stats = stats
	w.remaining = data.RemainingDays(stats, now)
	w.populated = true
}

// Panel weights, in tenths of the row.
var statsWeights = [4]int{2, 3, 3, 3}

// View renders the four panels side by side.
func (w *MilestoneStats) View(width int) string {
	if !w.populated {
		return ""
	}
	total := 0
	for _, wt := range statsWeights {
		total += wt
	}
	widths := make([]int, len(statsWeights))
	used := 0
	for i, wt := range statsWeights {
		widths[i] = max(width*wt/total, 12)
		used += widths[i]
	}
	// Give rounding leftovers to the last panel.
	if width > used {
		widths[len(widths)-1] += width - used
	}

	panels := []string{
		LineBox("Status", w.statusPanel(widths[0]-4), widths[0]),
		LineBox("Points", w.pointsPanel(widths[1]-4), widths[1]),
		LineBox("Tasks", w.tasksPanel(widths[2]-4), widths[2]),
		LineBox("Dates", w.datesPanel(widths[3]-4), widths[3]),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panels...)
}

func (w *MilestoneStats) statusPanel(width int) string {
	return "\n" + ProgressBar(data.StatsCompletedPoints(w.stats), data.StatsTotalPoints(w.stats), width)
}

func (w *MilestoneStats) pointsPanel(width int) string {
	total := data.StatsTotalPoints(w.stats)
	completed := data.StatsCompletedPoints(w.stats)
	return breakdown(total, completed, width)
}

func (w *MilestoneStats) tasksPanel(width int) string {
	total := float64(data.StatsTotalTasks(w.stats))
	completed := float64(data.StatsCompletedTasks(w.stats))
	return breakdown(total, completed, width)
}

// breakdown renders Total, Completed and Remaining columns.
func breakdown(total, completed float64, width int) string {
	col := max(width/3, 6)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		labeled("Total", SemaphorePercentText(total, total, false), col),
		labeled("Completed", SemaphorePercentText(completed, total, false), col),
		labeled("Remaining", SemaphorePercentText(total-completed, total, true), col),
	)
}

func (w *MilestoneStats) datesPanel(width int) string {
	col := max(width/3, 6)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		labeled("Start", Cyan(data.StatsEstimatedStart(w.stats)), col),
		labeled("Finish", Cyan(data.StatsEstimatedFinish(w.stats)), col),
		labeled("Remaining", RemainingDaysText(w.remaining), col),
	)
}

// RemainingDaysText renders the remaining-days value: "N days" or "1 day"
// in green while time is left, "0 days" in bold red otherwise.
func RemainingDaysText(days int) string {
	switch {
	case days > 1:
		return Green(fmt.Sprintf("%d days", days))
	case days == 1:
		return Green("1 day")
	default:
		return overdueStyle.Render("0 days")
	}
}

// --- Taskboard ---

type entryKind int

const (
	storyEntry entryKind = iota
	taskEntry
	unassignedHeaderEntry
)

type boardEntry struct {
	kind  entryKind
	story taiga.UserStory
	task  taiga.Task
}

// MilestoneTaskboard lists user stories each followed by their tasks, then
// the tasks that belong to no story. It scrolls to keep the focused entry
// visible.
type MilestoneTaskboard struct {
	project taiga.Project
	roles   []taiga.Role

	entries   []boardEntry
	populated bool
	cursor    int

	viewport viewport.Model
	keys     TaskboardKeys
}

// NewMilestoneTaskboard creates an empty board for project.
func NewMilestoneTaskboard(project taiga.Project) *MilestoneTaskboard {
	return &MilestoneTaskboard{
		project:  project,
		roles:    data.ComputableRoles(project),
		viewport: viewport.New(0, 0),
		keys:     DefaultTaskboardKeys(),
	}
}

// Populate replaces every entry at once.
func (w *MilestoneTaskboard) Populate(stories []taiga.UserStory, tasks []taiga.Task) {
	entries := make([]boardEntry, 0, len(stories)+len(tasks)+1)
	for _, us := range stories {
		entries = append(entries, boardEntry{kind: storyEntry, story: us})
		for _, t := range data.TasksPerUserStory(tasks, us) {
			entries = append(entries, boardEntry{kind: taskEntry, task: t})
		}
	}
	entries = append(entries, boardEntry{kind: unassignedHeaderEntry})
	for _, t := range data.UnassignedTasks(tasks) {
		entries = append(entries, boardEntry{kind: taskEntry, task: t})
	}

	w.entries = entries
	w.populated = true
	w.cursor = 0
	w.refresh()
}

// Len returns the number of entries, headers included.
func (w *MilestoneTaskboard) Len() int { return len(w.entries) }

// Cursor returns the index of the focused entry.
func (w *MilestoneTaskboard) Cursor() int { return w.cursor }

// SetSize sets the board's outer size.
func (w *MilestoneTaskboard) SetSize(width, height int) {
	w.viewport.Width = width
	w.viewport.Height = height
	w.refresh()
}

// Update moves the focus cursor.
func (w *MilestoneTaskboard) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok || len(w.entries) == 0 {
		return nil
	}
	switch {
	case key.Matches(km, w.keys.Up):
		w.cursor = max(w.cursor-1, 0)
	case key.Matches(km, w.keys.Down):
		w.cursor = min(w.cursor+1, len(w.entries)-1)
	case key.Matches(km, w.keys.Top):
		w.cursor = 0
	case key.Matches(km, w.keys.Bottom):
		w.cursor = len(w.entries) - 1
	default:
		return nil
	}
	w.refresh()
	return nil
}

// View renders the visible part of the board.
func (w *MilestoneTaskboard) View() string {
	if !w.populated {
		return "Fetching data"
	}
	return w.viewport.View()
}

// refresh re-renders every entry into the viewport and scrolls to the cursor.
func (w *MilestoneTaskboard) refresh() {
	if !w.populated {
		return
	}
	width := max(w.viewport.Width, 40)
	var (
		lines       []string
		cursorStart int
		cursorEnd   int
	)
	for i, e := range w.entries {
		rendered := w.renderEntry(e, width, i == w.cursor)
		if i == w.cursor {
			cursorStart = len(lines)
		}
		lines = append(lines, strings.Split(rendered, "\n")...)
		if i == w.cursor {
			cursorEnd = len(lines) - 1
		}
	}
	w.viewport.SetContent(strings.Join(lines, "\n"))

	if h := w.viewport.Height; h > 0 {
		switch {
		case cursorStart < w.viewport.YOffset:
			w.viewport.SetYOffset(cursorStart)
		case cursorEnd >= w.viewport.YOffset+h:
			w.viewport.SetYOffset(cursorEnd - h + 1)
		}
	}
}

func (w *MilestoneTaskboard) renderEntry(e boardEntry, width int, focused bool) string {
	switch e.kind {
	case storyEntry:
		return w.renderStory(e.story, width, focused)
	case unassignedHeaderEntry:
		line := cell("Unassigned tasks", width-4)
		if focused {
			line = focusStyle.Render(line)
		}
		return LineBox("", cyanStyle.Render(line), width)
	default:
		return w.renderTask(e.task, width, focused)
	}
}

// Column widths of the board rows.
const (
	glyphWidth    = 2
	statusWidth   = 16
	roleWidth     = 11
	totalWidth    = 12
	assigneeWidth = 18
)

func (w *MilestoneTaskboard) renderStory(us taiga.UserStory, width int, focused bool) string {
	inner := width - 4
	points := data.UsPointsByRoleWithNames(us, w.project, w.roles)
	subjectWidth := max(inner-glyphWidth-statusWidth-roleWidth*len(points)-totalWidth, 10)

	statusColor, status := data.UsStatusWithColor(us, w.project)
	var b strings.Builder
	b.WriteString(cell(glyph(data.UsIsClosed(us)), glyphWidth))
	b.WriteString(cell(fmt.Sprintf("US #%-4d %s", data.UsRef(us), data.UsSubject(us)), subjectWidth))
	b.WriteString(cell(HexStyle(statusColor).Render(status), statusWidth))
	for _, rp := range points {
		b.WriteString(cell(fmt.Sprintf("%s: %s", rp.Role, rp.Points), roleWidth))
	}
	b.WriteString(cell(Green(fmt.Sprintf("TOTAL: %.1f", data.UsTotalPoints(us))), totalWidth))

	line := b.String()
	if focused {
		line = focusStyle.Render(line)
	}
	return LineBox("", line, width)
}

func (w *MilestoneTaskboard) renderTask(t taiga.Task, width int, focused bool) string {
	_, finished := data.TaskFinishedDate(t)
	assigneeColor, assignee := data.TaskAssignedToWithColor(t, w.project)
	statusColor, status := data.TaskStatusWithColor(t, w.project)
	subjectWidth := max(width-2-glyphWidth-assigneeWidth-statusWidth, 10)

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(cell(glyph(finished), glyphWidth))
	b.WriteString(cell(fmt.Sprintf("Task #%-4d %s", data.TaskRef(t), data.TaskSubject(t)), subjectWidth))
	b.WriteString(cell(HexStyle(assigneeColor).Render(assignee), assigneeWidth))
	b.WriteString(cell(HexStyle(statusColor).Render(status), statusWidth))

	line := b.String()
	if focused {
		return focusStyle.Render(line)
	}
	return line
}

// --- Milestone selector ---

// MilestoneOptionEntry is one milestone in the selector. The current
// milestone is shown but cannot be selected.
type MilestoneOptionEntry struct {
	Milestone  taiga.Milestone
	Selectable bool

	bus *signals.Bus
}

// Press emits signals.Click with the entry as source.
func (e *MilestoneOptionEntry) Press() {
	e.bus.Emit(e, signals.Click)
}

// View renders the entry's two rows inside a box.
func (e *MilestoneOptionEntry) View(width int, focused bool) string {
	m := e.Milestone
	inner := max(width-4, 30)
	barWidth := max(inner/4, 10)
	nameWidth := inner - 3 - barWidth

	total := data.MilestoneTotalPoints(m)
	closed := data.MilestoneClosedPoints(m)

	name := data.MilestoneName(m)
	if !e.Selectable {
		name += " (current)"
	}
	top := cell(glyph(data.MilestoneIsClosed(m)), 3) +
		cell(name, nameWidth) +
		ProgressBar(closed, total, barWidth)

	col := max((inner-3)/3, 10)
	bottom := "   " +
		cell("Finish date "+Cyan(data.MilestoneFinishDate(m)), col) +
		cell("Total points "+SemaphorePercentText(total, total, false), col) +
		cell("Closed points "+SemaphorePercentText(closed, total, false), col)

	body := top + "\n" + bottom
	if !e.Selectable {
		body = dimStyle.Render(body)
	}
	box := LineBox("", body, width)
	if focused {
		return lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(colorAccent).
			Render(box)
	}
	return box
}

// MilestoneSelectorPopup lets the user switch to another milestone of the
// project. Focus moves over the selectable entries and the Cancel button.
type MilestoneSelectorPopup struct {
	Entries []*MilestoneOptionEntry
	Cancel  *Button[struct{}]

	selectable []*MilestoneOptionEntry
	cursor     int
	keys       SelectorKeys
	viewport   viewport.Model
}

// SelectorTitle is the popup's title.
const SelectorTitle = "Change to another Milestone"

// NewMilestoneSelectorPopup lists the project's milestones, most recent first.
func NewMilestoneSelectorPopup(project taiga.Project, current taiga.Milestone, bus *signals.Bus) *MilestoneSelectorPopup {
	if bus == nil {
		bus = signals.Default
	}
	p := &MilestoneSelectorPopup{
		Cancel:   NewButton("Cancel", struct{}{}, bus),
		keys:     DefaultSelectorKeys(),
		viewport: viewport.New(0, 0),
	}
	for _, m := range data.ListOfMilestones(project) {
		e := &MilestoneOptionEntry{
			Milestone:  m,
			Selectable: !data.MilestonesAreEqual(current, m),
			bus:        bus,
		}
		p.Entries = append(p.Entries, e)
		if e.Selectable {
			p.selectable = append(p.selectable, e)
		}
	}
	return p
}

// Options returns the entries that can be selected.
func (p *MilestoneSelectorPopup) Options() []*MilestoneOptionEntry {
	return p.selectable
}

// Focused returns the focused entry, or nil when Cancel has focus.
func (p *MilestoneSelectorPopup) Focused() *MilestoneOptionEntry {
	if p.cursor < len(p.selectable) {
		return p.selectable[p.cursor]
	}
	return nil
}

// Update moves focus and presses the focused entry or Cancel on enter.
func (p *MilestoneSelectorPopup) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	last := len(p.selectable) // Cancel sits after the last option.
	switch {
	case key.Matches(km, p.keys.Up):
		p.cursor = max(p.cursor-1, 0)
	case key.Matches(km, p.keys.Down), key.Matches(km, p.keys.Next):
		p.cursor = min(p.cursor+1, last)
	case key.Matches(km, p.keys.Select):
		if e := p.Focused(); e != nil {
			e.Press()
		} else {
			p.Cancel.Press()
		}
	case key.Matches(km, p.keys.Cancel):
		p.Cancel.Press()
	}
	return nil
}

// Rows the popup spends outside the milestone list: title edge, bottom
// edge, a blank line above the list, and a blank line plus the Cancel
// button below it.
const popupChromeRows = 7

// View renders the popup at most height rows tall (no limit when
// height <= 0). When the milestones do not fit, the list scrolls to keep
// the focused entry visible.
func (p *MilestoneSelectorPopup) View(width, height int) string {
	inner := max(width-4, 34)
	focused := p.Focused()
	var (
		lines      []string
		focusStart int
		focusEnd   int
	)
	for _, e := range p.Entries {
		rendered := strings.Split(e.View(inner, e == focused), "\n")
		if e == focused {
			focusStart = len(lines)
			focusEnd = focusStart + len(rendered) - 1
		}
		lines = append(lines, rendered...)
	}
	list := strings.Join(lines, "\n")

	if height > 0 && len(lines) > height-popupChromeRows {
		listHeight := max(height-popupChromeRows, 4)
		// The focus marker adds one column to the focused entry.
		p.viewport.Width = inner + 1
		p.viewport.Height = listHeight
		p.viewport.SetContent(list)
		if focused != nil {
			switch {
			case focusStart < p.viewport.YOffset:
				p.viewport.SetYOffset(focusStart)
			case focusEnd >= p.viewport.YOffset+listHeight:
				p.viewport.SetYOffset(focusEnd - listHeight + 1)
			}
		}
		list = p.viewport.View()
	}

	rows := []string{"", list, "", lipgloss.PlaceHorizontal(inner, lipgloss.Right, p.Cancel.View(focused == nil))}
	return LineBox(SelectorTitle, lipgloss.JoinVertical(lipgloss.Left, rows...), width)
}
