package taiga

import (
	"encoding/json"
	"strings"
	"time"
)

// Auth is the response of a successful normal login.
type Auth struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	AuthToken string `json:"auth_token"`
}

// User is a Taiga user account.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Member is a project member as embedded in the project detail. ID is the
// user id, which is what Task.AssignedTo refers to.
type Member struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     int    `json:"role"`
	RoleName string `json:"role_name"`
	FullName string `json:"full_name"`
	Color    string `json:"color"`
}

// Role is a project role. Only computable roles estimate points.
type Role struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	Computable bool   `json:"computable"`
	Order      int    `json:"order"`
}

// PointsValue is one entry of a project's points scale. Value is nil for "?".
type PointsValue struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
	Order int      `json:"order"`
}

// Status is a user story or task status.
type Status struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	IsClosed bool   `json:"is_closed"`
	Order    int    `json:"order"`
}

// Project is a Taiga project. List responses fill the summary fields only;
// the detail endpoint adds memberships, roles, points and statuses.
// Milestones is filled by the executor from the milestones endpoint.
type Project struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	Slug         string        `json:"slug"`
	Description  string        `json:"description"`
	Members      []Member      `json:"members"`
	Roles        []Role        `json:"roles"`
	Points       []PointsValue `json:"points"`
	UsStatuses   []Status      `json:"us_statuses"`
	TaskStatuses []Status      `json:"task_statuses"`
	Milestones   []Milestone   `json:"-"`
}

// Milestone is a sprint.
type Milestone struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	Project         int      `json:"project"`
	EstimatedStart  Date     `json:"estimated_start"`
	EstimatedFinish Date     `json:"estimated_finish"`
	Closed          bool     `json:"closed"`
	TotalPoints     *float64 `json:"total_points"`
	ClosedPoints    *float64 `json:"closed_points"`
}

// MilestoneStats is the /milestones/{id}/stats payload. TotalPoints is keyed
// by role id; CompletedPoints has one entry per completed story-role pair.
type MilestoneStats struct {
	Name                 string             `json:"name"`
	EstimatedStart       Date               `json:"estimated_start"`
	EstimatedFinish      Date               `json:"estimated_finish"`
	TotalPoints          map[string]float64 `json:"total_points"`
	CompletedPoints      []float64          `json:"completed_points"`
	TotalUserStories     int                `json:"total_userstories"`
	CompletedUserStories int                `json:"completed_userstories"`
	TotalTasks           int                `json:"total_tasks"`
	CompletedTasks       int                `json:"completed_tasks"`
}

// UserStory is a user story. Points maps role id to points id.
type UserStory struct {
	ID          int            `json:"id"`
	Ref         int            `json:"ref"`
	Subject     string         `json:"subject"`
	IsClosed    bool           `json:"is_closed"`
	Status      int            `json:"status"`
	Milestone   *int           `json:"milestone"`
	Points      map[string]int `json:"points"`
	TotalPoints *float64       `json:"total_points"`
}

// Task is a task, optionally attached to a user story.
type Task struct {
	ID           int        `json:"id"`
	Ref          int        `json:"ref"`
	Subject      string     `json:"subject"`
	UserStory    *int       `json:"user_story"`
	AssignedTo   *int       `json:"assigned_to"`
	Status       int        `json:"status"`
	Milestone    *int       `json:"milestone"`
	FinishedDate *time.Time `json:"finished_date"`
}

// MilestoneDashboard bundles everything the milestone screen renders.
type MilestoneDashboard struct {
	Project     Project
	Milestone   Milestone
	Stats       MilestoneStats
	UserStories []UserStory
	Tasks       []Task
}

// dateLayout is the wire format of Taiga calendar dates.
const dateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

// UnmarshalJSON parses "YYYY-MM-DD" and accepts null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON writes "YYYY-MM-DD" or null for the zero date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

// String returns the date as "YYYY-MM-DD", or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}
