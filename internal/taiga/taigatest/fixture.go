package taigatest

import (
	"time"

	"github.com/smileynet/taigaterm/internal/taiga"
)

// Sample returns a small but complete fixture: one user, two projects, two
// milestones in the first project, stories and tasks in the open milestone.
func Sample() Fixture {
	sprint1, sprint2 := 11, 12
	story1, story2 := 101, 102
	alice := 7
	finished := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	project := taiga.Project{
		ID:          1,
		Name:        "Apollo",
		Slug:        "apollo",
		Description: "Moon landing backlog",
		Members: []taiga.Member{
			{ID: 7, Username: "alice", FullName: "Alice Doe", Role: 2, RoleName: "Back", Color: "#FC8EAC"},
			{ID: 8, Username: "bob", FullName: "Bob Roe", Role: 3, RoleName: "Front", Color: "#40826D"},
		},
		Roles: []taiga.Role{
			{ID: 1, Name: "UX", Slug: "ux", Computable: false, Order: 10},
			{ID: 2, Name: "Back", Slug: "back", Computable: true, Order: 20},
			{ID: 3, Name: "Front", Slug: "front", Computable: true, Order: 30},
		},
		Points: []taiga.PointsValue{
			{ID: 20, Name: "?", Order: 1},
			{ID: 21, Name: "1", Value: float64Ptr(1), Order: 2},
			{ID: 22, Name: "3", Value: float64Ptr(3), Order: 3},
			{ID: 23, Name: "5", Value: float64Ptr(5), Order: 4},
		},
		UsStatuses: []taiga.Status{
			{ID: 30, Name: "New", Color: "#999999", Order: 1},
			{ID: 31, Name: "In progress", Color: "#ff9900", Order: 2},
			{ID: 32, Name: "Done", Color: "#669900", IsClosed: true, Order: 3},
		},
		TaskStatuses: []taiga.Status{
			{ID: 40, Name: "New", Color: "#999999", Order: 1},
			{ID: 41, Name: "In progress", Color: "#ff9900", Order: 2},
			{ID: 42, Name: "Closed", Color: "#669900", IsClosed: true, Order: 3},
		},
	}

	return Fixture{
		Username: "admin",
		Password: "123123",
		User:     taiga.User{ID: 5, Username: "admin", FullName: "Administrator", Email: "admin@example.com"},
		Projects: []taiga.Project{
			project,
			{ID: 2, Name: "Gemini", Slug: "gemini", Description: "Orbital tests"},
		},
		Milestones: []taiga.Milestone{
			{
				ID: sprint1, Name: "Sprint 1", Slug: "sprint-1", Project: 1, Closed: true,
				EstimatedStart:  date(2026, 2, 1),
				EstimatedFinish: date(2026, 2, 14),
				TotalPoints:     float64Ptr(10), ClosedPoints: float64Ptr(10),
			},
			{
				ID: sprint2, Name: "Sprint 2", Slug: "sprint-2", Project: 1,
				EstimatedStart:  date(2026, 3, 1),
				EstimatedFinish: date(2026, 3, 14),
				TotalPoints:     float64Ptr(11), ClosedPoints: float64Ptr(3),
			},
		},
		Stats: map[int]taiga.MilestoneStats{
			sprint1: {
				Name: "Sprint 1", EstimatedStart: date(2026, 2, 1), EstimatedFinish: date(2026, 2, 14),
				TotalPoints: map[string]float64{"2": 5, "3": 5}, CompletedPoints: []float64{5, 5},
				TotalUserStories: 1, CompletedUserStories: 1, TotalTasks: 2, CompletedTasks: 2,
			},
			sprint2: {
				Name: "Sprint 2", EstimatedStart: date(2026, 3, 1), EstimatedFinish: date(2026, 3, 14),
				TotalPoints: map[string]float64{"2": 6, "3": 5}, CompletedPoints: []float64{3},
				TotalUserStories: 2, CompletedUserStories: 0, TotalTasks: 3, CompletedTasks: 1,
			},
		},
		UserStories: []taiga.UserStory{
			{
				ID: story1, Ref: 4, Subject: "Landing gear", Status: 31, Milestone: &sprint2,
				Points: map[string]int{"1": 20, "2": 22, "3": 21}, TotalPoints: float64Ptr(4),
			},
			{
				ID: story2, Ref: 9, Subject: "Fuel gauge", Status: 30, Milestone: &sprint2,
				Points: map[string]int{"2": 22, "3": 23}, TotalPoints: float64Ptr(8),
			},
		},
		Tasks: []taiga.Task{
			{ID: 201, Ref: 5, Subject: "Weld struts", UserStory: &story1, AssignedTo: &alice, Status: 42, Milestone: &sprint2, FinishedDate: &finished},
			{ID: 202, Ref: 6, Subject: "Test hydraulics", UserStory: &story1, Status: 41, Milestone: &sprint2},
			{ID: 203, Ref: 12, Subject: "Order paint", Status: 40, Milestone: &sprint2},
		},
	}
}

func date(y int, m time.Month, d int) taiga.Date {
	return taiga.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func float64Ptr(v float64) *float64 { return &v }
