// Package router maps client locations to views and guards the protected
// ones behind a valid session.
package router

import (
	"net/url"
	"strings"
)

type RouteName string

const (
	RouteLogin       RouteName = "login"
	RouteRegister    RouteName = "register"
	RouteHome        RouteName = "home"
	RouteProfile     RouteName = "profile"
	RouteGroupDetail RouteName = "group-detail"
	RouteNotFound    RouteName = "not-found"
)

const (
	PathLogin    = "/login"
	PathRegister = "/register"
	PathHome     = "/"
	PathProfile  = "/profile"
)

// GroupPath is the location of a group's detail view.
func GroupPath(groupID string) string {
	return "/groups/" + url.PathEscape(groupID)
}

// Match is the result of resolving a path.
type Match struct {
	Name      RouteName
	Protected bool
	Params    map[string]string
}

// Resolve matches path against the route table. Unknown paths resolve to
// RouteNotFound, which is public.
func Resolve(path string) Match {
	p := Clean(path)

	switch p {
	case PathLogin:
		return Match{Name: RouteLogin}
	case PathRegister:
		return Match{Name: RouteRegister}
	case PathHome:
		return Match{Name: RouteHome, Protected: true}
	case PathProfile:
		return Match{Name: RouteProfile, Protected: true}
	}

	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	if len(segs) == 2 && segs[0] == "groups" && segs[1] != "" {
		id, err := url.PathUnescape(segs[1])
		if err == nil {
			return Match{
				Name:      RouteGroupDetail,
				Protected: true,
				Params:    map[string]string{"groupId": id},
			}
		}
	}
	return Match{Name: RouteNotFound}
}

// Clean normalizes user input into an absolute path without query, fragment
// or trailing slash.
func Clean(path string) string {
	p := strings.TrimSpace(path)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
