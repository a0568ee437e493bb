// Package executor runs Taiga API calls off the UI goroutine and hands the
// results back as futures whose callbacks run on the UI loop.
package executor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/smileynet/taigaterm/internal/async"
	"github.com/smileynet/taigaterm/internal/taiga"
)

// API is the subset of *taiga.Client the executor calls.
type API interface {
	Login(ctx context.Context, username, password string) (taiga.Auth, error)
	SetToken(token string)
	Me(ctx context.Context) (taiga.User, error)
	Projects(ctx context.Context, userID int) ([]taiga.Project, error)
	Project(ctx context.Context, id int) (taiga.Project, error)
	Milestones(ctx context.Context, projectID int) ([]taiga.Milestone, error)
	Milestone(ctx context.Context, id int) (taiga.Milestone, error)
	MilestoneStats(ctx context.Context, id int) (taiga.MilestoneStats, error)
	UserStories(ctx context.Context, projectID, milestoneID int) ([]taiga.UserStory, error)
	Tasks(ctx context.Context, projectID, milestoneID int) ([]taiga.Task, error)
}

const defaultTimeout = 30 * time.Second

// Executor issues one asynchronous request per user action.
type Executor struct {
	api     API
	sched   async.Scheduler
	timeout time.Duration
	logger  *slog.Logger

	userID   atomic.Int64
	inFlight atomic.Int64
}

// Option configures an Executor.
type Option func(*Executor)

// WithTimeout bounds each request, fan-out included.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeout = d }
}

// WithLogger sets the logger for dispatch and completion lines.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithUserID sets the user whose projects are listed, for sessions restored
// from disk without a fresh login.
func WithUserID(id int) Option {
	return func(e *Executor) { e.userID.Store(int64(id)) }
}

// New creates an Executor posting completions to sched.
func New(api API, sched async.Scheduler, opts ...Option) *Executor {
	e := &Executor{
		api:     api,
		sched:   sched,
		timeout: defaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InFlight returns the number of requests that have not completed yet.
func (e *Executor) InFlight() int {
	return int(e.inFlight.Load())
}

// UserID returns the user id recorded by the last successful login.
func (e *Executor) UserID() int {
	return int(e.userID.Load())
}

// Login authenticates and, on success, keeps the token for later calls.
func (e *Executor) Login(username, password string) *async.Future[taiga.Auth] {
	return run(e, "login", func(ctx context.Context) (taiga.Auth, error) {
		auth, err := e.api.Login(ctx, username, password)
		if err != nil {
			return taiga.Auth{}, err
		}
		e.api.SetToken(auth.AuthToken)
		e.userID.Store(int64(auth.ID))
		return auth, nil
	})
}

// Logout forgets the token and user id. Requests already in flight keep
// the credentials they started with.
func (e *Executor) Logout() {
	e.api.SetToken("")
	e.userID.Store(0)
}

// CurrentUser fetches the account the token belongs to. A restored session
// uses it to check the token is still accepted.
func (e *Executor) CurrentUser() *async.Future[taiga.User] {
	return run(e, "current_user", func(ctx context.Context) (taiga.User, error) {
		u, err := e.api.Me(ctx)
		if err != nil {
			return taiga.User{}, err
		}
		e.userID.Store(int64(u.ID))
		return u, nil
	})
}

// Projects lists the projects of the logged-in user.
func (e *Executor) Projects() *async.Future[[]taiga.Project] {
	return run(e, "projects", func(ctx context.Context) ([]taiga.Project, error) {
		return e.api.Projects(ctx, e.UserID())
	})
}

// ProjectDetail fetches the full project and its milestones concurrently.
func (e *Executor) ProjectDetail(project taiga.Project) *async.Future[taiga.Project] {
	return run(e, "project_detail", func(ctx context.Context) (taiga.Project, error) {
		var (
			detail     taiga.Project
			milestones []taiga.Milestone
		)
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			detail, err = e.api.Project(ctx, project.ID)
			return err
		})
		g.Go(func() error {
			var err error
			milestones, err = e.api.Milestones(ctx, project.ID)
			return err
		})
		if err := g.Wait(); err != nil {
			return taiga.Project{}, err
		}
		detail.Milestones = milestones
		return detail, nil
	})
}

// MilestoneDashboard fetches everything the milestone screen shows.
func (e *Executor) MilestoneDashboard(project taiga.Project, milestone taiga.Milestone) *async.Future[taiga.MilestoneDashboard] {
	return run(e, "milestone_dashboard", func(ctx context.Context) (taiga.MilestoneDashboard, error) {
		d := taiga.MilestoneDashboard{Project: project}
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			d.Milestone, err = e.api.Milestone(ctx, milestone.ID)
			return err
		})
		g.Go(func() error {
			var err error
			d.Stats, err = e.api.MilestoneStats(ctx, milestone.ID)
			return err
		})
		g.Go(func() error {
			var err error
			d.UserStories, err = e.api.UserStories(ctx, project.ID, milestone.ID)
			return err
		})
		g.Go(func() error {
			var err error
			d.Tasks, err = e.api.Tasks(ctx, project.ID, milestone.ID)
			return err
		})
		if err := g.Wait(); err != nil {
			return taiga.MilestoneDashboard{}, err
		}
		return d, nil
	})
}

// run dispatches fn with a fresh request id and the executor's timeout.
func run[T any](e *Executor, op string, fn func(context.Context) (T, error)) *async.Future[T] {
	id := uuid.NewString()
	log := e.logger.With(slog.String("op", op), slog.String("request_id", id))
	log.Debug("request dispatched")
	e.inFlight.Add(1)

	ctx := taiga.WithRequestID(context.Background(), id)
	return async.Go(ctx, e.sched, func(ctx context.Context) (T, error) {
		defer e.inFlight.Add(-1)
		ctx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		start := time.Now()
		v, err := fn(ctx)
		if err != nil {
			log.Warn("request failed", slog.Duration("elapsed", time.Since(start)), slog.Any("error", err))
			return v, err
		}
		log.Debug("request completed", slog.Duration("elapsed", time.Since(start)))
		return v, nil
	})
}
