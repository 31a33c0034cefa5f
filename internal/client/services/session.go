// Package services contains the client's long-lived services. The session
// manager is the single owner of the authentication token: it restores it at
// startup, exchanges credentials for it, and tears it down on logout or when
// the backend rejects it.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/client/client"
	"github.com/dmitrijs2005/shoplist/internal/client/models"
	"github.com/dmitrijs2005/shoplist/internal/client/notify"
	"github.com/dmitrijs2005/shoplist/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/shoplist/internal/common"
	"github.com/dmitrijs2005/shoplist/internal/dbx"
	"github.com/dmitrijs2005/shoplist/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// State is the session lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateRestoring
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Navigator is the part of the router the session drives.
type Navigator interface {
	Navigate(path string)
}

const (
	PathHome  = "/"
	PathLogin = "/login"
)

// SessionManager implements client.SessionHooks.
type SessionManager struct {
	client   client.Client
	db       *sql.DB
	notifier notify.Notifier
	nav      Navigator
	log      logging.Logger

	mu      sync.RWMutex
	state   State
	loading bool
	token   string
	user    *models.User
}

var _ client.SessionHooks = (*SessionManager)(nil)

func NewSessionManager(c client.Client, db *sql.DB, n notify.Notifier, nav Navigator, log logging.Logger) *SessionManager {
	return &SessionManager{
		client:   c,
		db:       db,
		notifier: n,
		nav:      nav,
		log:      log.With("component", "session"),
		state:    StateUninitialized,
	}
}

func (s *SessionManager) metadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

func (s *SessionManager) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *SessionManager) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *SessionManager) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user, or nil.
func (s *SessionManager) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Init restores a persisted token and validates it against the backend.
func (s *SessionManager) Init(ctx context.Context) {
	token, err := s.metadataRepo().Get(ctx, common.TokenKey)
	if err != nil {
		s.log.Error(ctx, "read persisted token", "error", err)
	}

	if token == "" {
		s.mu.Lock()
		s.state = StateAnonymous
		s.loading = false
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.state = StateRestoring
	s.loading = true
	s.token = token
	s.mu.Unlock()

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.log.Warn(ctx, "persisted session rejected", "error", err)
		s.dropIfCurrent(ctx, token)
		return
	}
	s.adoptIfCurrent(token, user)
}

// Login exchanges credentials for a token. Any previous token is discarded
// first so it is never sent along with the credentials.
func (s *SessionManager) Login(ctx context.Context, username, password string) error {
	s.clear(ctx)

	res, err := s.client.Login(ctx, username, password)
	if err != nil {
		s.log.Error(ctx, "login failed", "username", username, "error", err)
		s.notifier.Error("Invalid username or password")
		return fmt.Errorf("login error: %w", err)
	}

	if err := s.persist(ctx, res.Token, username); err != nil {
		s.log.Warn(ctx, "session token not persisted", "error", err)
	}

	user := res.User
	s.mu.Lock()
	s.token = res.Token
	s.user = &user
	s.state = StateAuthenticated
	s.loading = false
	s.mu.Unlock()

	s.notifier.Success("Logged in successfully")
	s.nav.Navigate(PathHome)
	return nil
}

// Register creates an account. It does not sign the new user in.
func (s *SessionManager) Register(ctx context.Context, name, username, password string) error {
	if _, err := s.client.Register(ctx, name, username, password); err != nil {
		s.log.Error(ctx, "registration failed", "username", username, "error", err)
		s.notifier.Error("Registration failed. Username may already be taken.")
		return fmt.Errorf("register error: %w", err)
	}

	s.notifier.Success("Registration successful! Please log in.")
	s.nav.Navigate(PathLogin)
	return nil
}

func (s *SessionManager) Logout(ctx context.Context) {
	s.clear(ctx)
	s.notifier.Success("Logged out successfully")
	s.nav.Navigate(PathLogin)
}

// CheckAuth re-validates the current token. It is safe to call repeatedly and
// always leaves Loading false.
func (s *SessionManager) CheckAuth(ctx context.Context) bool {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	token := s.Token()
	if token == "" {
		return false
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		s.log.Warn(ctx, "session validation failed", "error", err)
		s.dropIfCurrent(ctx, token)
		return false
	}
	return s.adoptIfCurrent(token, user)
}

// Unauthorized tears the session down after the backend rejected token. Only
// the first report for the current token has an effect, so a burst of 401s
// from parallel requests redirects once.
func (s *SessionManager) Unauthorized(ctx context.Context, token string) {
	if !s.dropIfCurrent(ctx, token) {
		return
	}
	s.log.Warn(ctx, "session expired, signing out")
	s.nav.Navigate(PathLogin)
}

// Expiry reports the exp claim when the token happens to be a JWT. The
// signature is not checked; the value is for display only.
func (s *SessionManager) Expiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// LastUsername returns the username of the last successful login.
func (s *SessionManager) LastUsername(ctx context.Context) string {
	name, err := s.metadataRepo().Get(ctx, common.LastUsernameKey)
	if err != nil {
		s.log.Warn(ctx, "read last username", "error", err)
		return ""
	}
	return name
}

func (s *SessionManager) persist(ctx context.Context, token, username string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.TokenKey, token); err != nil {
			return err
		}
		return repo.Set(ctx, common.LastUsernameKey, username)
	})
}

// clear forgets the session unconditionally.
func (s *SessionManager) clear(ctx context.Context) {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	s.forgetPersisted(ctx)
}

// dropIfCurrent clears the session only if token is still the active one. It
// reports whether it did.
func (s *SessionManager) dropIfCurrent(ctx context.Context, token string) bool {
	s.mu.Lock()
	if token == "" || token != s.token {
		s.loading = false
		s.mu.Unlock()
		return false
	}
	s.resetLocked()
	s.mu.Unlock()

	s.forgetPersisted(ctx)
	return true
}

func (s *SessionManager) adoptIfCurrent(token string, user *models.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if token != s.token {
		return false
	}
	u := *user
	s.user = &u
	s.state = StateAuthenticated
	return true
}

func (s *SessionManager) resetLocked() {
	s.token = ""
	s.user = nil
	s.state = StateAnonymous
	s.loading = false
}

func (s *SessionManager) forgetPersisted(ctx context.Context) {
	if err := s.metadataRepo().Delete(ctx, common.TokenKey); err != nil {
		s.log.Error(ctx, "remove persisted token", "error", err)
	}
}
