package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/taigaterm/internal/async"
	"github.com/smileynet/taigaterm/internal/config"
	"github.com/smileynet/taigaterm/internal/executor"
	"github.com/smileynet/taigaterm/internal/logging"
	"github.com/smileynet/taigaterm/internal/session"
	"github.com/smileynet/taigaterm/internal/taiga"
	"github.com/smileynet/taigaterm/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config string `help:"Extra config file, read after the default locations." type:"path"`
	Host   string `help:"Taiga API host, overriding config."`
	Debug  bool   `help:"Log at debug level."`
}

// CLI is the top-level command structure for taigaterm.
type CLI struct {
	Globals

	Version  kong.VersionFlag `help:"Show version." short:"V"`
	UI       UICmd            `cmd:"" default:"1" help:"Open the interactive client (default)."`
	Projects ProjectsCmd      `cmd:"" help:"List your projects using the saved session."`
	Logout   LogoutCmd        `cmd:"" help:"Forget the saved session."`
}

// errNotLoggedIn is returned by commands that need a saved session.
var errNotLoggedIn = errors.New("not logged in; run taigaterm to log in")

// loadConfig loads layered config with env and flag overrides.
func (g *Globals) loadConfig() (*config.Config, error) {
	paths := config.Paths()
	if g.Config != "" {
		paths = append(paths, g.Config)
	}
	cfg, err := config.LoadLayered(paths...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if g.Host != "" {
		cfg.API.Host = g.Host
	}
	if g.Debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env is what every command builds from config.
type env struct {
	cfg      *config.Config
	logger   *logging.Logger
	sessions *session.FileStore
}

func (g *Globals) setup() (*env, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	logPath, err := cfg.LogFile()
	if err != nil {
		return nil, err
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger, err := logging.Open(logPath, level)
	if err != nil {
		return nil, err
	}
	sessionPath, err := cfg.SessionPath()
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, sessions: session.NewFileStore(sessionPath)}, nil
}

func (e *env) client(token string) *taiga.Client {
	opts := []taiga.Option{
		taiga.WithTimeout(e.cfg.API.Timeout),
		taiga.WithRateLimit(e.cfg.API.RateLimit, e.cfg.API.Burst),
		taiga.WithLogger(e.logger.Component("taiga")),
	}
	if token != "" {
		opts = append(opts, taiga.WithToken(token))
	}
	return taiga.NewClient(e.cfg.API.Host, opts...)
}

// --- UI command ---

// UICmd opens the interactive client.
type UICmd struct {
	Fresh bool `help:"Ignore the saved session and show the login screen."`
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the TUI.
func (u *UICmd) Run(g *Globals) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return u.run(false, nil)
	}

	e, err := g.setup()
	if err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	defer e.logger.Close()
	log := e.logger.Component("main")
	log.Info("starting", slog.String("version", version), slog.String("host", e.cfg.API.Host))

	var restore *session.Session
	if e.cfg.Session.Remember && !u.Fresh {
		s, found, err := e.sessions.Load(e.cfg.API.Host)
		switch {
		case err != nil:
			log.Warn("ignoring saved session", slog.Any("error", err))
		case found:
			restore = &s
		}
	}

	token := ""
	execOpts := []executor.Option{
		executor.WithTimeout(e.cfg.API.Timeout),
		executor.WithLogger(e.logger.Component("executor")),
	}
	if restore != nil {
		token = restore.AuthToken
		execOpts = append(execOpts, executor.WithUserID(restore.UserID))
	}

	queue := async.NewQueue()
	defer queue.Close()

	opts := ui.Options{
		Executor: executor.New(e.client(token), queue, execOpts...),
		Queue:    queue,
		Host:     e.cfg.API.Host,
		Logger:   e.logger.Logger,
		Restore:  restore,
	}
	if e.cfg.Session.Remember {
		opts.Sessions = e.sessions
	}

	prog := tea.NewProgram(ui.NewApp(opts), tea.WithAltScreen())
	return u.run(true, prog)
}

// run executes the tea program, enabling testable wiring.
func (u *UICmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("ui: requires a terminal (TTY); use 'taigaterm projects' for plain output")
	}
	_, err := prog.Run()
	return err
}

// --- Projects command ---

// ProjectsCmd prints the projects of the saved session's user.
type ProjectsCmd struct{}

// projectLister abstracts the API call for testing.
type projectLister interface {
	Projects(ctx context.Context, userID int) ([]taiga.Project, error)
}

// Run executes the projects command.
func (p *ProjectsCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return fmt.Errorf("projects: %w", err)
	}
	defer e.logger.Close()

	sess, found, err := e.sessions.Load(e.cfg.API.Host)
	if err != nil {
		return fmt.Errorf("projects: %w", err)
	}
	if !found {
		return fmt.Errorf("projects: %w", errNotLoggedIn)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return p.run(ctx, os.Stdout, e.client(sess.AuthToken), sess)
}

// run lists projects with the given API, enabling testable wiring.
func (p *ProjectsCmd) run(ctx context.Context, w io.Writer, api projectLister, sess session.Session) error {
	projects, err := api.Projects(ctx, sess.UserID)
	if err != nil {
		if taiga.IsUnauthorized(err) {
			return fmt.Errorf("projects: saved session expired: %w", errNotLoggedIn)
		}
		return fmt.Errorf("projects: %w", err)
	}
	if len(projects) == 0 {
		_, _ = fmt.Fprintln(w, "You are not a member of any project.")
		return nil
	}

	nameWidth := len("NAME")
	for _, pr := range projects {
		nameWidth = max(nameWidth, len(pr.Name))
	}
	_, _ = fmt.Fprintf(w, "%-6s %-*s %s\n", "ID", nameWidth, "NAME", "DESCRIPTION")
	for _, pr := range projects {
		desc, _, _ := strings.Cut(pr.Description, "\n")
		_, _ = fmt.Fprintf(w, "%-6d %-*s %s\n", pr.ID, nameWidth, pr.Name, desc)
	}
	return nil
}

// --- Logout command ---

// LogoutCmd deletes the saved session.
type LogoutCmd struct{}

// sessionClearer abstracts the session store for testing.
type sessionClearer interface {
	Clear() error
}

// Run executes the logout command.
func (l *LogoutCmd) Run(g *Globals) error {
	e, err := g.setup()
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer e.logger.Close()
	return l.run(os.Stdout, e.sessions)
}

// run clears the session with the given store, enabling testable wiring.
func (l *LogoutCmd) run(w io.Writer, store sessionClearer) error {
	if err := store.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	_, _ = fmt.Fprintln(w, "Logged out.")
	return nil
}

const (
	exitSuccess = 0
	exitFailure = 1
	exitAuth    = 3
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errNotLoggedIn), taiga.IsUnauthorized(err):
		return exitAuth
	default:
		return exitFailure
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("taigaterm"),
		kong.Description("A terminal client for Taiga."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
