package views

import (
	"context"
	"time"

	"github.com/dmitrijs2005/shoplist/internal/client/client"
	"github.com/dmitrijs2005/shoplist/internal/client/models"
	"github.com/dmitrijs2005/shoplist/internal/client/notify"
	"github.com/dmitrijs2005/shoplist/internal/clock"
	"github.com/dmitrijs2005/shoplist/internal/logging"
)

// Session is the view-side slice of the session manager.
type Session interface {
	User() *models.User
	Logout(ctx context.Context)
}

type Navigator interface {
	Navigate(path string)
}

type Clipboard interface {
	Copy(text string) error
}

// DefaultSearchDelay is how long the group search waits for input to settle.
const DefaultSearchDelay = 500 * time.Millisecond

// Env bundles what every controller needs.
type Env struct {
	Client      client.Client
	Session     Session
	Nav         Navigator
	Notifier    notify.Notifier
	Log         logging.Logger
	Clock       clock.Clock
	Clipboard   Clipboard
	SearchDelay time.Duration
}

func (e Env) withDefaults() Env {
	if e.Log == nil {
		e.Log = logging.Discard()
	}
	if e.Clock == nil {
		e.Clock = clock.Real()
	}
	if e.SearchDelay <= 0 {
		e.SearchDelay = DefaultSearchDelay
	}
	return e
}

func (e Env) me() string {
	if u := e.Session.User(); u != nil {
		return u.ID
	}
	return ""
}
