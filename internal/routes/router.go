package routes

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// Option customizes NewRouter.
type Option func(*routerOptions)

type routerOptions struct {
	logger   *slog.Logger
	notFound http.Handler
}

// WithLogger logs guard redirects at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *routerOptions) {
		o.logger = logger
	}
}

// WithNotFound sets the handler for paths no route matches.
func WithNotFound(h http.Handler) Option {
	return func(o *routerOptions) {
		o.notFound = h
	}
}

// NewRouter registers every route of the table, in order, on a mux router.
// Each navigation runs through the guard before its view is resolved.
func NewRouter(table Table, guard Guard, state StateFunc, opts ...Option) *mux.Router {
	o := routerOptions{
		logger:   slog.New(slog.DiscardHandler),
		notFound: http.NotFoundHandler(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if state == nil {
		state = func(*http.Request) LoginState { return LoginState{} }
	}

	router := mux.NewRouter()
	router.NotFoundHandler = o.notFound
	for _, route := range table.Routes() {
		router.Handle(route.Path, guarded(route, guard, state, o.logger)).Name(route.Name)
	}
	return router
}

func guarded(route Route, guard Guard, state StateFunc, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := guard.Decide(route, state(r))
		if decision.Outcome == Redirect {
			logger.DebugContext(r.Context(), "navigation redirected",
				"route", route.Name,
				"path", r.URL.Path,
				"location", decision.Location,
			)
			http.Redirect(w, r, decision.Location, http.StatusFound)
			return
		}
		if !route.View.Loaded() {
			logger.DebugContext(r.Context(), "resolving view", "route", route.Name, "view", route.View.ID())
		}
		for key, value := range mux.Vars(r) {
			r.SetPathValue(key, value)
		}
		route.View.Handler().ServeHTTP(w, r.WithContext(WithRoute(r.Context(), route)))
	})
}
