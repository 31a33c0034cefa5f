package views

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/client/client/clienttest"
	"github.com/dmitrijs2005/shoplist/internal/client/models"
	"github.com/dmitrijs2005/shoplist/internal/client/notify"
	"github.com/dmitrijs2005/shoplist/internal/clock"
)

// fakeSession is a signed-in session over a clienttest backend.
type fakeSession struct {
	mu           sync.Mutex
	user         *models.User
	token        string
	logouts      int
	unauthorized int
}

func (s *fakeSession) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *fakeSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) Logout(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logouts++
	s.user = nil
	s.token = ""
}

func (s *fakeSession) Unauthorized(_ context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == s.token {
		s.unauthorized++
		s.user = nil
		s.token = ""
	}
}

func (s *fakeSession) signIn(u models.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
	s.token = token
}

type fakeNav struct {
	mu    sync.Mutex
	paths []string
}

func (n *fakeNav) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *fakeNav) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

func (n *fakeNav) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.paths) == 0 {
		return ""
	}
	return n.paths[len(n.paths)-1]
}

type fakeClipboard struct {
	copied []string
	err    error
}

func (c *fakeClipboard) Copy(text string) error {
	if c.err != nil {
		return c.err
	}
	c.copied = append(c.copied, text)
	return nil
}

type fixture struct {
	backend *clienttest.Backend
	session *fakeSession
	nav     *fakeNav
	notes   *notify.Recorder
	clock   *clock.FakeClock
	clip    *fakeClipboard
	env     Env

	alice models.User
	bob   models.User
	carol models.User
}

// newFixture signs alice in against a backend that also knows bob and carol.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		backend: clienttest.NewBackend(),
		session: &fakeSession{},
		nav:     &fakeNav{},
		notes:   &notify.Recorder{},
		clock:   clock.Fake(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
		clip:    &fakeClipboard{},
	}
	f.backend.UseSession(f.session)

	f.alice = f.backend.AddUser("Alice", "alice", "pw-a")
	f.bob = f.backend.AddUser("Bob", "bob", "pw-b")
	f.carol = f.backend.AddUser("Carol", "carol", "pw-c")
	f.signIn(f.alice)

	f.env = Env{
		Client:    f.backend,
		Session:   f.session,
		Nav:       f.nav,
		Notifier:  f.notes,
		Clock:     f.clock,
		Clipboard: f.clip,
	}
	return f
}

func (f *fixture) signIn(u models.User) {
	f.session.signIn(u, f.backend.IssueToken(u.ID))
}

func success(text string) notify.Message { return notify.Message{Kind: notify.KindSuccess, Text: text} }

func failure(text string) notify.Message { return notify.Message{Kind: notify.KindError, Text: text} }
