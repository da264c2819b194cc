package routes

import (
	"context"
	"net/http"
)

// DefaultLoginPath is where unauthenticated visitors are sent.
const DefaultLoginPath = "/login"

// LoginState is the per-request view of the session the guard works from.
type LoginState struct {
	LoggedIn bool
}

// StateFunc reads the login state for a request.
type StateFunc func(r *http.Request) LoginState

// Outcome is the result of a guard check.
type Outcome int

const (
	// Proceed lets the navigation continue to the target view.
	Proceed Outcome = iota
	// Redirect sends the visitor to Decision.Location instead.
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Proceed:
		return "proceed"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is what the guard wants done with a navigation.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Guard gates routes flagged RequiresAuth on the login state.
type Guard struct {
	LoginPath string
}

// DefaultGuard redirects to DefaultLoginPath.
func DefaultGuard() Guard {
	return Guard{LoginPath: DefaultLoginPath}
}

// Decide redirects to the login path if and only if the target requires
// authentication and the visitor is not logged in.
func (g Guard) Decide(target Route, state LoginState) Decision {
	if target.RequiresAuth && !state.LoggedIn {
		loc := g.LoginPath
		if loc == "" {
			loc = DefaultLoginPath
		}
		return Decision{Outcome: Redirect, Location: loc}
	}
	return Decision{Outcome: Proceed}
}

type routeKey struct{}

// WithRoute stores the matched route on the context.
func WithRoute(ctx context.Context, r Route) context.Context {
	return context.WithValue(ctx, routeKey{}, r)
}

// RouteFromContext returns the route a request was dispatched through.
func RouteFromContext(ctx context.Context) (Route, bool) {
	r, ok := ctx.Value(routeKey{}).(Route)
	return r, ok
}
