package router

import (
	"context"

	"github.com/dmitrijs2005/shoplist/internal/client/services"
)

// Session is what the guard needs from the session manager.
type Session interface {
	State() services.State
	CheckAuth(ctx context.Context) bool
}

type Decision int

const (
	// DecisionLoading: the session is still being restored; show only a
	// loading indicator.
	DecisionLoading Decision = iota
	// DecisionRedirect: go to Outcome.Location instead.
	DecisionRedirect
	// DecisionRender: show the requested view.
	DecisionRender
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirect:
		return "redirect"
	case DecisionRender:
		return "render"
	default:
		return "unknown"
	}
}

type Outcome struct {
	Decision Decision
	Match    Match
	Location Location
}

type Guard struct {
	session Session
}

func NewGuard(s Session) *Guard {
	return &Guard{session: s}
}

// Resolve decides what to show for loc. Protected routes re-validate the
// session with the backend on every call.
func (g *Guard) Resolve(ctx context.Context, loc Location) Outcome {
	m := Resolve(loc.Path)
	if !m.Protected {
		return Outcome{Decision: DecisionRender, Match: m, Location: loc}
	}

	switch g.session.State() {
	case services.StateUninitialized, services.StateRestoring:
		return Outcome{Decision: DecisionLoading, Match: m, Location: loc}
	case services.StateAuthenticated:
		if g.session.CheckAuth(ctx) {
			return Outcome{Decision: DecisionRender, Match: m, Location: loc}
		}
	}

	return Outcome{
		Decision: DecisionRedirect,
		Match:    m,
		Location: Location{Path: PathLogin, From: Clean(loc.Path)},
	}
}
