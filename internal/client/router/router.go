package router

import "sync"

// Location is where the client currently is. From is set on redirects to the
// login page and holds the originally requested path.
type Location struct {
	Path string
	From string
}

// Router keeps the current location and its history. Listeners run after each
// change, outside the router lock.
type Router struct {
	mu        sync.Mutex
	current   Location
	history   []Location
	listeners []func(Location)
}

func New(initial string) *Router {
	loc := Location{Path: Clean(initial)}
	return &Router{current: loc, history: []Location{loc}}
}

// Navigate moves to path.
func (r *Router) Navigate(path string) {
	r.set(Location{Path: Clean(path)})
}

// Redirect moves to path, remembering from.
func (r *Router) Redirect(path, from string) {
	r.set(Location{Path: Clean(path), From: from})
}

func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Router) History() []Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Location(nil), r.history...)
}

// OnChange registers fn to run after every location change.
func (r *Router) OnChange(fn func(Location)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *Router) set(loc Location) {
	r.mu.Lock()
	r.current = loc
	r.history = append(r.history, loc)
	listeners := append(([]func(Location))(nil), r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(loc)
	}
}
