// Package taigatest provides an in-memory fake of the Taiga API for tests.
package taigatest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/smileynet/taigaterm/internal/taiga"
)

// Token is the auth token the fake issues on a successful login.
const Token = "fake-token"

// Fixture is the data served by a Server.
type Fixture struct {
	Username string
	Password string
	User     taiga.User

	Projects    []taiga.Project
	Milestones  []taiga.Milestone
	Stats       map[int]taiga.MilestoneStats
	UserStories []taiga.UserStory
	Tasks       []taiga.Task
}

// Server is a running fake API.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	fixture  Fixture
	fail     map[string]int
	requests []*http.Request
}

// NewServer starts a fake API serving f and registers its shutdown with t.
func NewServer(t testing.TB, f Fixture) *Server {
	t.Helper()
	s := &Server{fixture: f, fail: make(map[string]int)}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth", s.handleAuth)
		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Get("/users/me", s.handleMe)
			r.Get("/projects", s.handleProjects)
			r.Get("/projects/{id}", s.handleProject)
			r.Get("/milestones", s.handleMilestones)
			r.Get("/milestones/{id}", s.handleMilestone)
			r.Get("/milestones/{id}/stats", s.handleStats)
			r.Get("/userstories", s.handleUserStories)
			r.Get("/tasks", s.handleTasks)
		})
	})

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// FailPath makes every request whose path starts with prefix answer status.
func (s *Server) FailPath(prefix string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[prefix] = status
}

// Requests returns the requests received so far.
func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		var status int
		for prefix, st := range s.fail {
			if strings.HasPrefix(r.URL.Path, prefix) {
				status = st
			}
		}
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"_error_message": "forced failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type     string `json:"type"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Type != "normal" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"_error_message": "bad request"})
		return
	}
	if body.Username != s.fixture.Username || body.Password != s.fixture.Password {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"_error_message": "According to our data you are not registered",
		})
		return
	}
	u := s.fixture.User
	writeJSON(w, http.StatusOK, taiga.Auth{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		AuthToken: Token,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.fixture.User)
}

func (s *Server) handleProjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.fixture.Projects)
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	for _, p := range s.fixture.Projects {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	notFound(w)
}

func (s *Server) handleMilestones(w http.ResponseWriter, r *http.Request) {
	project := queryID(r, "project")
	out := []taiga.Milestone{}
	for _, m := range s.fixture.Milestones {
		if m.Project == project {
			out = append(out, m)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMilestone(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	for _, m := range s.fixture.Milestones {
		if m.ID == id {
			writeJSON(w, http.StatusOK, m)
			return
		}
	}
	notFound(w)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, ok := s.fixture.Stats[pathID(r)]
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUserStories(w http.ResponseWriter, r *http.Request) {
	milestone := queryID(r, "milestone")
	out := []taiga.UserStory{}
	for _, us := range s.fixture.UserStories {
		if us.Milestone != nil && *us.Milestone == milestone {
			out = append(out, us)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	milestone := queryID(r, "milestone")
	out := []taiga.Task{}
	for _, task := range s.fixture.Tasks {
		if task.Milestone != nil && *task.Milestone == milestone {
			out = append(out, task)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	return id
}

func queryID(r *http.Request, name string) int {
	id, _ := strconv.Atoi(r.URL.Query().Get(name))
	return id
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
