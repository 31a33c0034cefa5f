package views

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/shoplist/internal/client/notify"
	"github.com/dmitrijs2005/shoplist/internal/logging"
)

var (
	ErrInFlight     = errors.New("action already in progress")
	ErrValidation   = errors.New("required field is empty")
	ErrNotPermitted = errors.New("action not permitted")
	ErrNotFound     = errors.New("no such entry on screen")
	ErrNotLoaded    = errors.New("view is not loaded")
)

// InFlight disables re-submission of one control while its action runs.
type InFlight struct {
	mu   sync.Mutex
	busy bool
}

func (f *InFlight) TryStart() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return false
	}
	f.busy = true
	return true
}

func (f *InFlight) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
}

func (f *InFlight) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Mutation is one user action against the backend.
type Mutation struct {
	// Name identifies the action in logs.
	Name string

	// Flag, when set, rejects the mutation with ErrInFlight while another
	// one holding the same flag runs.
	Flag *InFlight

	Action func(ctx context.Context) error

	// Success and Failure are the notification texts; empty means silent.
	Success string
	Failure string

	OnSuccess func()
	OnFailure func(err error)

	// Reload re-fetches whatever the action changed. It runs only after a
	// successful action.
	Reload func(ctx context.Context)

	// Finally runs last on every path.
	Finally func()
}

// Runner runs mutations with uniform logging and notification.
type Runner struct {
	notifier notify.Notifier
	log      logging.Logger
}

func NewRunner(n notify.Notifier, log logging.Logger) *Runner {
	return &Runner{notifier: n, log: log}
}

func (r *Runner) Run(ctx context.Context, m Mutation) error {
	if m.Flag != nil {
		if !m.Flag.TryStart() {
			return ErrInFlight
		}
		defer m.Flag.Done()
	}
	if m.Finally != nil {
		defer m.Finally()
	}

	if err := m.Action(ctx); err != nil {
		r.log.Error(ctx, "action failed", "action", m.Name, "error", err)
		if m.Failure != "" {
			r.notifier.Error(m.Failure)
		}
		if m.OnFailure != nil {
			m.OnFailure(err)
		}
		return err
	}

	if m.Success != "" {
		r.notifier.Success(m.Success)
	}
	if m.OnSuccess != nil {
		m.OnSuccess()
	}
	if m.Reload != nil {
		m.Reload(ctx)
	}
	return nil
}
