// Package routes holds the navigation table of the portal and the guard that
// decides, before every navigation, whether the visitor may reach a route.
package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

var (
	// ErrDuplicatePath is returned when two routes share a path pattern.
	ErrDuplicatePath = errors.New("duplicate route path")
	// ErrDuplicateName is returned when two routes share a name.
	ErrDuplicateName = errors.New("duplicate route name")
	// ErrInvalidRoute is returned for routes missing a path, name or view.
	ErrInvalidRoute = errors.New("invalid route")
	// ErrUnknownRoute is returned when reverse routing an unregistered name.
	ErrUnknownRoute = errors.New("unknown route")
)

// Route describes one navigable path. Routes are built once at startup and
// never mutated.
type Route struct {
	Path         string
	Name         string
	Title        string
	View         *View
	RequiresAuth bool
}

// HasParams reports whether the path contains a variable segment.
func (r Route) HasParams() bool {
	return strings.Contains(r.Path, "{")
}

// Table is an ordered, immutable list of routes. The first matching route wins.
// Matching and reverse routing run on the same gorilla/mux patterns NewRouter
// dispatches with, so "{id:[0-9]+}" constraints apply in both places.
type Table struct {
	routes  []Route
	byName  map[string]int
	matcher *mux.Router
}

// NewTable validates the routes and keeps them in the given order.
func NewTable(routes ...Route) (Table, error) {
	t := Table{
		routes:  make([]Route, 0, len(routes)),
		byName:  make(map[string]int, len(routes)),
		matcher: mux.NewRouter(),
	}
	paths := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		if strings.TrimSpace(r.Path) == "" || !strings.HasPrefix(r.Path, "/") {
			return Table{}, fmt.Errorf("%w: path %q", ErrInvalidRoute, r.Path)
		}
		if strings.TrimSpace(r.Name) == "" {
			return Table{}, fmt.Errorf("%w: route %s has no name", ErrInvalidRoute, r.Path)
		}
		if r.View == nil {
			return Table{}, fmt.Errorf("%w: route %s has no view", ErrInvalidRoute, r.Name)
		}
		if _, ok := paths[r.Path]; ok {
			return Table{}, fmt.Errorf("%w: %s", ErrDuplicatePath, r.Path)
		}
		if _, ok := t.byName[r.Name]; ok {
			return Table{}, fmt.Errorf("%w: %s", ErrDuplicateName, r.Name)
		}
		if err := t.matcher.Handle(r.Path, http.NotFoundHandler()).Name(r.Name).GetError(); err != nil {
			return Table{}, fmt.Errorf("%w: route %s: %v", ErrInvalidRoute, r.Name, err)
		}
		paths[r.Path] = struct{}{}
		t.byName[r.Name] = len(t.routes)
		t.routes = append(t.routes, r)
	}
	return t, nil
}

// MustTable is NewTable for static configuration; it panics on error.
func MustTable(routes ...Route) Table {
	t, err := NewTable(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns a copy of the routes in precedence order.
func (t Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Len returns the number of routes.
func (t Table) Len() int {
	return len(t.routes)
}

// Lookup returns the route registered under name.
func (t Table) Lookup(name string) (Route, bool) {
	idx, ok := t.byName[name]
	if !ok {
		return Route{}, false
	}
	return t.routes[idx], true
}

// Match returns the first route whose pattern matches path, along with the
// values of its variable segments.
func (t Table) Match(path string) (Route, map[string]string, bool) {
	if t.matcher == nil {
		return Route{}, nil, false
	}
	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return Route{}, nil, false
	}
	var m mux.RouteMatch
	if !t.matcher.Match(req, &m) || m.Route == nil {
		return Route{}, nil, false
	}
	r, ok := t.Lookup(m.Route.GetName())
	if !ok {
		return Route{}, nil, false
	}
	return r, m.Vars, true
}

// URL builds the path of the named route. Params are key/value pairs and must
// satisfy the pattern's constraints.
func (t Table) URL(name string, params ...string) (string, error) {
	if _, ok := t.Lookup(name); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}
	u, err := t.matcher.Get(name).URLPath(params...)
	if err != nil {
		return "", fmt.Errorf("route %s: %w", name, err)
	}
	return u.String(), nil
}
