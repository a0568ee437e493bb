package executor_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smileynet/taigaterm/internal/async"
	"github.com/smileynet/taigaterm/internal/executor"
	"github.com/smileynet/taigaterm/internal/taiga"
	"github.com/smileynet/taigaterm/internal/taiga/taigatest"
)

type harness struct {
	exec   *executor.Executor
	client *taiga.Client
	srv    *taigatest.Server
	queue  *async.Queue
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := taigatest.NewServer(t, taigatest.Sample())
	client := taiga.NewClient(srv.URL, taiga.WithRateLimit(0, 0))
	q := async.NewQueue()
	t.Cleanup(q.Close)
	return &harness{
		exec:   executor.New(client, q, executor.WithTimeout(5*time.Second)),
		client: client,
		srv:    srv,
		queue:  q,
	}
}

// await registers a callback on f and runs the queue until it fires.
func await[T any](t *testing.T, q *async.Queue, f *async.Future[T]) async.Result[T] {
	t.Helper()
	var (
		got   async.Result[T]
		fired int
	)
	f.OnDone(func(r async.Result[T]) {
		got = r
		fired++
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fn, ok := q.Next(ctx)
	require.True(t, ok, "no completion delivered")
	fn()
	require.Equal(t, 1, fired)
	return got
}

func TestLogin_StoresToken(t *testing.T) {
	h := newHarness(t)

	r := await(t, h.queue, h.exec.Login("admin", "123123"))

	require.NoError(t, r.Err)
	assert.Equal(t, "admin", r.Value.Username)
	assert.Equal(t, taigatest.Token, h.client.Token())
	assert.Equal(t, 5, h.exec.UserID())
	assert.Equal(t, 0, h.exec.InFlight())
}

func TestLogin_Failure(t *testing.T) {
	h := newHarness(t)

	r := await(t, h.queue, h.exec.Login("admin", "nope"))

	require.Error(t, r.Err)
	assert.False(t, r.OK())
	assert.Empty(t, h.client.Token())
	assert.Equal(t, 0, h.exec.UserID())
}

func TestLogout_ForgetsCredentials(t *testing.T) {
	h := newHarness(t)
	await(t, h.queue, h.exec.Login("admin", "123123"))

	h.exec.Logout()

	assert.Empty(t, h.client.Token())
	assert.Equal(t, 0, h.exec.UserID())
	r := await(t, h.queue, h.exec.Projects())
	assert.True(t, taiga.IsUnauthorized(r.Err))
}

func TestProjects_UsesLoggedInUser(t *testing.T) {
	h := newHarness(t)
	await(t, h.queue, h.exec.Login("admin", "123123"))

	r := await(t, h.queue, h.exec.Projects())

	require.NoError(t, r.Err)
	require.Len(t, r.Value, 2)
	reqs := h.srv.Requests()
	last := reqs[len(reqs)-1]
	assert.Equal(t, "5", last.URL.Query().Get("member"))
	assert.NotEmpty(t, last.Header.Get("X-Request-Id"))
}

func TestProjectDetail_FillsMilestones(t *testing.T) {
	h := newHarness(t)
	h.client.SetToken(taigatest.Token)

	r := await(t, h.queue, h.exec.ProjectDetail(taiga.Project{ID: 1}))

	require.NoError(t, r.Err)
	assert.Equal(t, "Apollo", r.Value.Name)
	assert.Len(t, r.Value.Roles, 3)
	require.Len(t, r.Value.Milestones, 2)
}

func TestMilestoneDashboard_FanOut(t *testing.T) {
	h := newHarness(t)
	h.client.SetToken(taigatest.Token)
	project := taigatest.Sample().Projects[0]

	r := await(t, h.queue, h.exec.MilestoneDashboard(project, taiga.Milestone{ID: 12}))

	require.NoError(t, r.Err)
	d := r.Value
	assert.Equal(t, "Apollo", d.Project.Name)
	assert.Equal(t, "Sprint 2", d.Milestone.Name)
	assert.Equal(t, 3, d.Stats.TotalTasks)
	assert.Len(t, d.UserStories, 2)
	assert.Len(t, d.Tasks, 3)
}

func TestMilestoneDashboard_AnyFailureFailsAll(t *testing.T) {
	h := newHarness(t)
	h.client.SetToken(taigatest.Token)
	h.srv.FailPath("/api/v1/tasks", http.StatusInternalServerError)

	r := await(t, h.queue, h.exec.MilestoneDashboard(taiga.Project{ID: 1}, taiga.Milestone{ID: 12}))

	require.Error(t, r.Err)
	assert.Empty(t, r.Value.Milestone.Name, "failure must not carry a partial dashboard")
}

func TestWithUserID(t *testing.T) {
	srv := taigatest.NewServer(t, taigatest.Sample())
	client := taiga.NewClient(srv.URL, taiga.WithRateLimit(0, 0), taiga.WithToken(taigatest.Token))

	e := executor.New(client, async.Inline{}, executor.WithUserID(5))

	assert.Equal(t, 5, e.UserID())
}

func TestCurrentUser_ChecksRestoredToken(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		h := newHarness(t)
		h.client.SetToken(taigatest.Token)

		r := await(t, h.queue, h.exec.CurrentUser())

		require.NoError(t, r.Err)
		assert.Equal(t, "Administrator", r.Value.FullName)
		assert.Equal(t, 5, h.exec.UserID())
	})

	t.Run("expired token", func(t *testing.T) {
		h := newHarness(t)
		h.client.SetToken("stale")

		r := await(t, h.queue, h.exec.CurrentUser())

		assert.True(t, taiga.IsUnauthorized(r.Err), "err = %v", r.Err)
		assert.Equal(t, 0, h.exec.UserID())
	})
}

func TestInFlight_CountsOutstandingRequests(t *testing.T) {
	// Given: a server that blocks until released
	release := make(chan struct{})
	blocking := &blockingAPI{release: release}
	q := async.NewQueue()
	defer q.Close()
	e := executor.New(blocking, q)

	// When: a request is dispatched
	f := e.Projects()

	// Then: it is counted until the work returns
	assert.Equal(t, 1, e.InFlight())
	close(release)
	await(t, q, f)
	assert.Equal(t, 0, e.InFlight())
}

type blockingAPI struct {
	executor.API
	release chan struct{}
}

func (b *blockingAPI) Projects(ctx context.Context, _ int) ([]taiga.Project, error) {
	select {
	case <-b.release:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
