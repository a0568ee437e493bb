// Package data extracts display-ready values from Taiga domain objects.
// Every function is pure; none performs I/O.
package data

import (
	"sort"
	"strconv"
	"time"

	"github.com/smileynet/taigaterm/internal/taiga"
)

// Fallback colors used when a status or member has no color.
const (
	DefaultStatusColor = "#ffffff"
	UnassignedColor    = "#ffffff"
)

// Unassigned is shown for tasks without an assignee.
const Unassigned = "Unassigned"

// --- Milestones ---

// MilestoneName returns the milestone's name.
func MilestoneName(m taiga.Milestone) string {
	return m.Name
}

// MilestoneTotalPoints returns the planned points of a milestone, 0 when unknown.
func MilestoneTotalPoints(m taiga.Milestone) float64 {
	return deref(m.TotalPoints)
}

// MilestoneClosedPoints returns the closed points of a milestone, 0 when unknown.
func MilestoneClosedPoints(m taiga.Milestone) float64 {
	return deref(m.ClosedPoints)
}

// MilestoneFinishDate returns the estimated finish as "YYYY-MM-DD".
func MilestoneFinishDate(m taiga.Milestone) string {
	return m.EstimatedFinish.String()
}

// MilestoneIsClosed reports whether the milestone is closed.
func MilestoneIsClosed(m taiga.Milestone) bool {
	return m.Closed
}

// MilestonesAreEqual reports whether a and b are the same milestone.
func MilestonesAreEqual(a, b taiga.Milestone) bool {
	return a.ID != 0 && a.ID == b.ID
}

// ListOfMilestones returns the project's milestones ordered by estimated
// start, most recent first.
func ListOfMilestones(p taiga.Project) []taiga.Milestone {
	ms := append([]taiga.Milestone(nil), p.Milestones...)
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].EstimatedStart.After(ms[j].EstimatedStart.Time)
	})
	return ms
}

// CurrentMilestone picks the milestone to open by default: the open
// milestone with the earliest finish, else the latest milestone.
// ok is false when the project has none.
func CurrentMilestone(p taiga.Project) (m taiga.Milestone, ok bool) {
	if len(p.Milestones) == 0 {
		return taiga.Milestone{}, false
	}
	found := false
	for _, candidate := range p.Milestones {
		if candidate.Closed {
			continue
		}
		if !found || candidate.EstimatedFinish.Before(m.EstimatedFinish.Time) {
			m = candidate
			found = true
		}
	}
	if found {
		return m, true
	}
	return ListOfMilestones(p)[0], true
}

// --- Milestone stats ---

// StatsTotalPoints sums the planned points across roles.
func StatsTotalPoints(s taiga.MilestoneStats) float64 {
	total := 0.0
	for _, v := range s.TotalPoints {
		total += v
	}
	return total
}

// StatsCompletedPoints sums the completed points.
func StatsCompletedPoints(s taiga.MilestoneStats) float64 {
	total := 0.0
	for _, v := range s.CompletedPoints {
		total += v
	}
	return total
}

// StatsTotalTasks returns the number of tasks in the milestone.
func StatsTotalTasks(s taiga.MilestoneStats) int {
	return s.TotalTasks
}

// StatsCompletedTasks returns the number of closed tasks in the milestone.
func StatsCompletedTasks(s taiga.MilestoneStats) int {
	return s.CompletedTasks
}

// StatsEstimatedStart returns the start date as "YYYY-MM-DD".
func StatsEstimatedStart(s taiga.MilestoneStats) string {
	return s.EstimatedStart.String()
}

// StatsEstimatedFinish returns the finish date as "YYYY-MM-DD".
func StatsEstimatedFinish(s taiga.MilestoneStats) string {
	return s.EstimatedFinish.String()
}

// RemainingDays returns whole days from now until the estimated finish,
// never negative. An unknown finish date yields 0.
func RemainingDays(s taiga.MilestoneStats, now time.Time) int {
	if s.EstimatedFinish.IsZero() {
		return 0
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	finish := s.EstimatedFinish.UTC()
	days := int(finish.Sub(today).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// --- Roles and points ---

// ComputableRoles returns the roles that estimate points, ordered by Order.
func ComputableRoles(p taiga.Project) []taiga.Role {
	var roles []taiga.Role
	for _, r := range p.Roles {
		if r.Computable {
			roles = append(roles, r)
		}
	}
	sort.SliceStable(roles, func(i, j int) bool { return roles[i].Order < roles[j].Order })
	return roles
}

// RolePoints is the estimate a story carries for one role.
type RolePoints struct {
	Role   string
	Points string
}

// UsPointsByRoleWithNames returns, for each role, the name of the points
// value the story assigns to it ("?" when unestimated).
func UsPointsByRoleWithNames(us taiga.UserStory, p taiga.Project, roles []taiga.Role) []RolePoints {
	names := make(map[int]string, len(p.Points))
	for _, pv := range p.Points {
		names[pv.ID] = pv.Name
	}
	out := make([]RolePoints, 0, len(roles))
	for _, r := range roles {
		name := "?"
		if pointsID, ok := us.Points[strconv.Itoa(r.ID)]; ok {
			if n, ok := names[pointsID]; ok {
				name = n
			}
		}
		out = append(out, RolePoints{Role: r.Name, Points: name})
	}
	return out
}

// --- User stories ---

// UsRef returns the story's project-scoped reference number.
func UsRef(us taiga.UserStory) int { return us.Ref }

// UsSubject returns the story's subject.
func UsSubject(us taiga.UserStory) string { return us.Subject }

// UsIsClosed reports whether the story is closed.
func UsIsClosed(us taiga.UserStory) bool { return us.IsClosed }

// UsTotalPoints returns the story's total points, 0 when unestimated.
func UsTotalPoints(us taiga.UserStory) float64 { return deref(us.TotalPoints) }

// UsStatusWithColor returns the status color and name of a story.
func UsStatusWithColor(us taiga.UserStory, p taiga.Project) (color, name string) {
	return statusWithColor(us.Status, p.UsStatuses)
}

// --- Tasks ---

// TaskRef returns the task's project-scoped reference number.
func TaskRef(t taiga.Task) int { return t.Ref }

// TaskSubject returns the task's subject.
func TaskSubject(t taiga.Task) string { return t.Subject }

// TaskFinishedDate returns the finish time and whether the task is finished.
func TaskFinishedDate(t taiga.Task) (time.Time, bool) {
	if t.FinishedDate == nil || t.FinishedDate.IsZero() {
		return time.Time{}, false
	}
	return *t.FinishedDate, true
}

// TaskStatusWithColor returns the status color and name of a task.
func TaskStatusWithColor(t taiga.Task, p taiga.Project) (color, name string) {
	return statusWithColor(t.Status, p.TaskStatuses)
}

// TaskAssignedToWithColor returns the assignee's color and full name,
// or UnassignedColor and Unassigned.
func TaskAssignedToWithColor(t taiga.Task, p taiga.Project) (color, name string) {
	if t.AssignedTo == nil {
		return UnassignedColor, Unassigned
	}
	for _, m := range p.Members {
		if m.ID == *t.AssignedTo {
			name = m.FullName
			if name == "" {
				name = m.Username
			}
			color = m.Color
			if color == "" {
				color = UnassignedColor
			}
			return color, name
		}
	}
	return UnassignedColor, Unassigned
}

// TasksPerUserStory returns the tasks attached to us, in input order.
func TasksPerUserStory(tasks []taiga.Task, us taiga.UserStory) []taiga.Task {
	var out []taiga.Task
	for _, t := range tasks {
		if t.UserStory != nil && *t.UserStory == us.ID {
			out = append(out, t)
		}
	}
	return out
}

// UnassignedTasks returns the tasks not attached to any story.
func UnassignedTasks(tasks []taiga.Task) []taiga.Task {
	var out []taiga.Task
	for _, t := range tasks {
		if t.UserStory == nil {
			out = append(out, t)
		}
	}
	return out
}

func statusWithColor(id int, statuses []taiga.Status) (color, name string) {
	for _, s := range statuses {
		if s.ID == id {
			color = s.Color
			if color == "" {
				color = DefaultStatusColor
			}
			return color, s.Name
		}
	}
	return DefaultStatusColor, "?"
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
