package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/client/client"
	"github.com/dmitrijs2005/shoplist/internal/client/clipboard"
	"github.com/dmitrijs2005/shoplist/internal/client/config"
	"github.com/dmitrijs2005/shoplist/internal/client/notify"
	"github.com/dmitrijs2005/shoplist/internal/client/render"
	"github.com/dmitrijs2005/shoplist/internal/client/router"
	"github.com/dmitrijs2005/shoplist/internal/client/services"
	"github.com/dmitrijs2005/shoplist/internal/client/views"
	"github.com/dmitrijs2005/shoplist/internal/clock"
	"github.com/dmitrijs2005/shoplist/internal/logging"
)

// Deps are the collaborators of an App. Client and DB are required.
type Deps struct {
	Client      client.Client
	DB          *sql.DB
	Metrics     *client.Metrics
	In          io.Reader
	Out         io.Writer
	Log         logging.Logger
	Clock       clock.Clock
	Clipboard   views.Clipboard
	SearchDelay time.Duration
}

// sessionUser is implemented by clients that send the session token.
type sessionUser interface {
	UseSession(s client.SessionHooks)
}

type App struct {
	ctx     context.Context
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	outMu   sync.Mutex
	metrics *client.Metrics
	closers []io.Closer

	notes   notify.Notifier
	session *services.SessionManager
	router  *router.Router
	guard   *router.Guard
	render  *render.Renderer
	env     views.Env

	mu      sync.Mutex
	mounted router.RouteName
	groups  *views.GroupsView
	detail  *views.GroupDetailView
	profile *views.ProfileView
}

// New wires an App from its collaborators. The session is attached to the
// client so that every request carries the token.
func New(d Deps) *App {
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	if d.Clock == nil {
		d.Clock = clock.Real()
	}

	a := &App{
		ctx:     context.Background(),
		log:     d.Log,
		reader:  bufio.NewReader(d.In),
		out:     d.Out,
		metrics: d.Metrics,
		notes:   notify.NewConsole(d.Out),
		router:  router.New(router.PathHome),
		render:  render.New(d.Clock.Now),
	}

	a.session = services.NewSessionManager(d.Client, d.DB, a.notes, a, d.Log)
	if su, ok := d.Client.(sessionUser); ok {
		su.UseSession(a.session)
	}
	a.guard = router.NewGuard(a.session)

	a.env = views.Env{
		Client:      d.Client,
		Session:     a.session,
		Nav:         a,
		Notifier:    a.notes,
		Log:         d.Log,
		Clock:       d.Clock,
		Clipboard:   d.Clipboard,
		SearchDelay: d.SearchDelay,
	}

	a.router.OnChange(a.onLocation)
	return a
}

// NewApp builds the production App: local sqlite store, HTTP client with
// metrics and the terminal clipboard.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	metrics := client.NewMetrics()
	api, err := client.NewHTTPClient(client.Config{
		BaseURL: c.APIBaseURL,
		Timeout: c.RequestTimeout,
		Logger:  log,
		Metrics: metrics,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := New(Deps{
		Client:      api,
		DB:          db,
		Metrics:     metrics,
		Log:         log,
		Clipboard:   clipboard.New(),
		SearchDelay: c.SearchDebounce,
	})
	a.closers = append(a.closers, db)
	return a, nil
}

// Run restores the session, shows the start page and runs the REPL until
// the user exits.
func (a *App) Run(ctx context.Context) {
	a.ctx = ctx
	defer a.unmount()

	a.println("Welcome to shoplist (type 'help' for commands)")

	a.onLocation(a.router.Current())
	a.session.Init(ctx)
	a.onLocation(a.router.Current())

	runREPL(ctx, a, a.status, a.reader)
}

// Close releases the local store.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Navigate moves to path; the guard then decides what is shown.
func (a *App) Navigate(path string) {
	a.router.Navigate(path)
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == services.StateAuthenticated
}

func (a *App) status() string {
	path := a.router.Current().Path
	if u := a.session.User(); u != nil {
		return u.Username + " " + path
	}
	return path
}

func (a *App) onLocation(loc router.Location) {
	out := a.guard.Resolve(a.ctx, loc)

	// a 401 during the guard's check may already have moved us on
	if a.router.Current() != loc {
		return
	}

	switch out.Decision {
	case router.DecisionLoading:
		a.println("Loading...")
	case router.DecisionRedirect:
		a.router.Redirect(out.Location.Path, out.Location.From)
	case router.DecisionRender:
		a.mount(out.Match, loc)
	}
}

func (a *App) unmount() {
	a.mu.Lock()
	g := a.groups
	a.groups = nil
	a.detail = nil
	a.profile = nil
	a.mounted = ""
	a.mu.Unlock()

	if g != nil {
		g.Unmount()
	}
}

func (a *App) mount(m router.Match, loc router.Location) {
	a.unmount()
	a.mu.Lock()
	a.mounted = m.Name
	a.mu.Unlock()

	ctx := a.ctx
	switch m.Name {
	case router.RouteLogin:
		if loc.From != "" {
			a.printf("Please log in to open %s.\n", loc.From)
		}
		a.println("Type 'login' to sign in or 'register' to create an account.")

	case router.RouteRegister:
		a.println("Type 'register' to create an account.")

	case router.RouteHome:
		v := views.NewGroupsView(a.env)
		v.OnResults = a.printSearchResults
		a.mu.Lock()
		a.groups = v
		a.mu.Unlock()
		v.Mount(ctx)
		if a.groupsView() == v {
			a.printGroups(v)
		}

	case router.RouteGroupDetail:
		v := views.NewGroupDetailView(a.env, m.Params["groupId"])
		a.mu.Lock()
		a.detail = v
		a.mu.Unlock()
		if err := v.Load(ctx); err == nil && a.detailView() == v {
			a.printGroupDetail(v)
		}

	case router.RouteProfile:
		v := views.NewProfileView(a.env)
		a.mu.Lock()
		a.profile = v
		a.mu.Unlock()
		a.printProfile(v)

	default:
		a.log.Warn(ctx, "route not found", "path", loc.Path)
		a.println("404: page not found. Type 'home' to go back.")
	}
}

func (a *App) groupsView() *views.GroupsView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.groups
}

func (a *App) detailView() *views.GroupDetailView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.detail
}

// profileView returns the mounted profile, or a fresh one; the profile
// actions work from anywhere.
func (a *App) profileView() *views.ProfileView {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.profile != nil {
		return a.profile
	}
	return views.NewProfileView(a.env)
}

func (a *App) println(s string) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, s)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}
