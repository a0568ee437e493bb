package statemachine

import (
	"errors"
	"testing"

	"github.com/smileynet/taigaterm/internal/taiga"
)

type entered struct {
	from, to State
	payload  any
}

func newRecorded() (*Machine, *[]entered) {
	var log []entered
	m := New(func(from, to State, payload any) {
		log = append(log, entered{from, to, payload})
	})
	return m, &log
}

// walk drives m to the given state along the happy path.
func walk(t *testing.T, m *Machine, to State) {
	t.Helper()
	steps := []func() error{
		func() error { return m.LoggedIn(taiga.Auth{ID: 1}) },
		func() error { return m.ProjectDetail(taiga.Project{ID: 1}) },
		func() error { return m.ProjectMilestones(taiga.MilestoneDashboard{}) },
	}
	for i := 0; i < int(to)-int(Login) && i < len(steps); i++ {
		if err := steps[i](); err != nil {
			t.Fatalf("walk step %d: %v", i, err)
		}
	}
	if to == Quit {
		_ = m.Quit()
	}
	if m.State() != to {
		t.Fatalf("walk ended in %s, want %s", m.State(), to)
	}
}

func TestNew_StartsAtLogin(t *testing.T) {
	m := New(nil)
	if m.State() != Login {
		t.Errorf("State() = %s, want login", m.State())
	}
}

func TestTransitions_HookPayloads(t *testing.T) {
	m, log := newRecorded()
	auth := taiga.Auth{ID: 5, Username: "admin"}
	project := taiga.Project{ID: 1, Name: "Apollo"}
	dash := taiga.MilestoneDashboard{Milestone: taiga.Milestone{ID: 12}}

	for _, step := range []func() error{
		func() error { return m.LoggedIn(auth) },
		func() error { return m.ProjectDetail(project) },
		func() error { return m.ProjectMilestones(dash) },
		func() error { return m.Projects() },
		func() error { return m.LoggedOut() },
	} {
		if err := step(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	want := []entered{
		{Login, Projects, auth},
		{Projects, ProjectDetail, project},
		{ProjectDetail, ProjectMilestones, dash},
		{ProjectMilestones, Projects, nil},
		{Projects, Login, nil},
	}
	if len(*log) != len(want) {
		t.Fatalf("hook called %d times, want %d", len(*log), len(want))
	}
	for i, w := range want {
		got := (*log)[i]
		if got.from != w.from || got.to != w.to {
			t.Errorf("step %d: %s->%s, want %s->%s", i, got.from, got.to, w.from, w.to)
		}
	}
	if (*log)[0].payload.(taiga.Auth).Username != "admin" {
		t.Error("LoggedIn payload not passed to hook")
	}
	if (*log)[1].payload.(taiga.Project).Name != "Apollo" {
		t.Error("ProjectDetail payload not passed to hook")
	}
	if (*log)[2].payload.(taiga.MilestoneDashboard).Milestone.ID != 12 {
		t.Error("ProjectMilestones payload not passed to hook")
	}
}

func TestTransitions_Illegal(t *testing.T) {
	tests := []struct {
		name  string
		start State
		call  func(*Machine) error
	}{
		{"projects before login", Login, func(m *Machine) error { return m.Projects() }},
		{"detail before login", Login, func(m *Machine) error { return m.ProjectDetail(taiga.Project{}) }},
		{"detail after quit", Quit, func(m *Machine) error { return m.ProjectDetail(taiga.Project{}) }},
		{"login twice from detail", ProjectDetail, func(m *Machine) error { return m.LoggedIn(taiga.Auth{}) }},
		{"milestones before login", Login, func(m *Machine) error { return m.ProjectMilestones(taiga.MilestoneDashboard{}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a machine in the start state
			m, log := newRecorded()
			walk(t, m, tt.start)
			calls := len(*log)

			// When: an illegal transition is attempted
			err := tt.call(m)

			// Then: a TransitionError, unchanged state, no hook call
			var te *TransitionError
			if !errors.As(err, &te) {
				t.Fatalf("err = %v, want *TransitionError", err)
			}
			if te.From != tt.start {
				t.Errorf("From = %s, want %s", te.From, tt.start)
			}
			if m.State() != tt.start {
				t.Errorf("state changed to %s", m.State())
			}
			if len(*log) != calls {
				t.Error("hook called on illegal transition")
			}
		})
	}
}

func TestProjectMilestones_LateDashboardFromProjectList(t *testing.T) {
	// Given: the user went back to the project list
	m, log := newRecorded()
	walk(t, m, ProjectMilestones)
	if err := m.Projects(); err != nil {
		t.Fatal(err)
	}

	// When: a dashboard requested earlier arrives
	dash := taiga.MilestoneDashboard{Milestone: taiga.Milestone{ID: 11}}
	err := m.ProjectMilestones(dash)

	// Then: it still opens
	if err != nil {
		t.Fatalf("ProjectMilestones() error = %v", err)
	}
	if m.State() != ProjectMilestones {
		t.Errorf("State() = %s, want project_milestones", m.State())
	}
	last := (*log)[len(*log)-1]
	if last.from != Projects || last.payload.(taiga.MilestoneDashboard).Milestone.ID != 11 {
		t.Errorf("last hook call = %+v", last)
	}
}

func TestTransitions_ReenterIsIdempotent(t *testing.T) {
	m, log := newRecorded()
	walk(t, m, ProjectMilestones)
	before := len(*log)

	if err := m.ProjectMilestones(taiga.MilestoneDashboard{Milestone: taiga.Milestone{ID: 11}}); err != nil {
		t.Fatalf("re-entering ProjectMilestones: %v", err)
	}

	if m.State() != ProjectMilestones {
		t.Errorf("State() = %s", m.State())
	}
	last := (*log)[len(*log)-1]
	if len(*log) != before+1 || last.from != ProjectMilestones || last.to != ProjectMilestones {
		t.Errorf("self transition not reported to hook: %+v", last)
	}
}

func TestQuit_FromAnyState(t *testing.T) {
	for _, start := range []State{Login, Projects, ProjectDetail, ProjectMilestones} {
		t.Run(start.String(), func(t *testing.T) {
			m, _ := newRecorded()
			walk(t, m, start)

			if err := m.Quit(); err != nil {
				t.Fatalf("Quit: %v", err)
			}
			if m.State() != Quit {
				t.Errorf("State() = %s, want quit", m.State())
			}
		})
	}
}

func TestNoHook(t *testing.T) {
	m := New(nil)
	if err := m.LoggedIn(taiga.Auth{}); err != nil {
		t.Fatalf("LoggedIn: %v", err)
	}
	if err := m.LoggedOut(); err != nil {
		t.Fatalf("LoggedOut: %v", err)
	}
	if m.State() != Login {
		t.Errorf("State() = %s, want login", m.State())
	}
}

func TestState_String(t *testing.T) {
	if Quit.String() != "quit" || ProjectMilestones.String() != "project_milestones" {
		t.Error("unexpected state names")
	}
	if State(42).String() != "state(42)" {
		t.Errorf("unknown state = %q", State(42).String())
	}
	err := &TransitionError{From: Login, To: ProjectMilestones}
	if err.Error() != "statemachine: cannot go from login to project_milestones" {
		t.Errorf("Error() = %q", err.Error())
	}
}
