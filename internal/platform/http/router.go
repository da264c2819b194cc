package http

import (
	"net/http"

	"portal/internal/config"
	"portal/internal/features/albums"
	"portal/internal/features/articles"
	"portal/internal/features/auth"
	"portal/internal/features/health"
	"portal/internal/features/home"
	"portal/internal/features/messages"
	"portal/internal/features/notes"
	"portal/internal/features/profile"
	"portal/internal/platform/logging"
	portalserver "portal/internal/platform/server"
	"portal/internal/platform/wiring"
	"portal/internal/routes"
)

// Table returns the navigation table. Order matters: the first matching
// route wins. Views are built on first navigation.
func Table(deps wiring.Deps, cfg config.Config) routes.Table {
	lazy := func(id string, build func() http.HandlerFunc) *routes.View {
		return routes.Lazy(id, func() http.Handler { return build() })
	}
	albumsCfg := albums.Config{
		PhotoDir:       cfg.PhotoDir,
		AllowedExts:    cfg.AllowedExts,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	return routes.MustTable(
		routes.Route{Path: "/", Name: "home", Title: "Home", RequiresAuth: true,
			View: lazy("HomeView", func() http.HandlerFunc { return home.NewHandler(deps).Home })},
		routes.Route{Path: "/about", Name: "about", Title: "About", RequiresAuth: true,
			View: lazy("AboutView", func() http.HandlerFunc { return home.NewHandler(deps).About })},
		routes.Route{Path: "/articles", Name: "articles", Title: "Articles", RequiresAuth: true,
			View: lazy("ArticlesView", func() http.HandlerFunc { return articles.NewHandler(deps).List })},
		routes.Route{Path: "/articles/{id}", Name: "article-detail", RequiresAuth: true,
			View: lazy("ArticleDetailView", func() http.HandlerFunc { return articles.NewHandler(deps).Detail })},
		routes.Route{Path: "/notes", Name: "notes", Title: "Notes", RequiresAuth: true,
			View: lazy("NotesView", func() http.HandlerFunc { return notes.NewHandler(deps).Notes })},
		routes.Route{Path: "/messages", Name: "messages", Title: "Messages", RequiresAuth: true,
			View: lazy("MessagesView", func() http.HandlerFunc { return messages.NewHandler(deps).Messages })},
		routes.Route{Path: "/albums", Name: "albums", Title: "Albums", RequiresAuth: true,
			View: lazy("AlbumView", func() http.HandlerFunc { return albums.NewHandler(albumsCfg, deps).List })},
		routes.Route{Path: "/login", Name: "login",
			View: lazy("LoginView", func() http.HandlerFunc { return auth.NewHandler(deps).Login })},
		routes.Route{Path: "/register", Name: "register",
			View: lazy("RegisterView", func() http.HandlerFunc { return auth.NewHandler(deps).Register })},
		routes.Route{Path: "/profile", Name: "profile", Title: "Profile", RequiresAuth: true,
			View: lazy("ProfileView", func() http.HandlerFunc { return profile.NewHandler(deps).Profile })},
		routes.Route{Path: "/logout", Name: "logout",
			View: lazy("LogoutView", func() http.HandlerFunc { return auth.NewHandler(deps).Logout })},
		routes.Route{Path: "/albums/{id}", Name: "album-detail", RequiresAuth: true,
			View: lazy("AlbumDetailView", func() http.HandlerFunc { return albums.NewHandler(albumsCfg, deps).Detail })},
		routes.Route{Path: "/albums/{id}/photos/{photo}", Name: "album-photo", RequiresAuth: true,
			View: lazy("AlbumPhotoView", func() http.HandlerFunc { return albums.NewHandler(albumsCfg, deps).Photo })},
	)
}

// Routes builds the HTTP handler: the guarded route table plus the health
// endpoint, wrapped in rate limiting, security headers and request logging.
func Routes(s *portalserver.Server) http.Handler {
	cfg := s.Config()
	deps := wiring.NewDeps(s)
	table := Table(deps, cfg)
	s.SetRoutes(table)

	router := routes.NewRouter(table, routes.DefaultGuard(), s.LoginState,
		routes.WithLogger(s.Logger()),
		routes.WithNotFound(notFound(s)),
	)
	router.Handle("/healthz", http.HandlerFunc(health.NewHandler(cfg, deps).Health)).Methods(http.MethodGet, http.MethodHead)

	limiter := newRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	return logging.WithRequestLog(s.Logger(), s.WithSecurityHeaders(withLoginRateLimit(limiter, cfg.TrustProxy, router)))
}

func notFound(s *portalserver.Server) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := map[string]interface{}{"Title": "Not found"}
		if err := s.RenderTemplateStatus(w, http.StatusNotFound, "not_found.html", data); err != nil {
			http.NotFound(w, r)
		}
	})
}
