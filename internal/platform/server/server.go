package server

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"portal/internal/config"
	"portal/internal/contracts"
	"portal/internal/domain"
	"portal/internal/platform/core"
	sqlitestore "portal/internal/platform/storage/sqlite"
	"portal/internal/routes"
)

// NavItem is a link shown in the page header.
type NavItem struct {
	Name  string
	Title string
	URL   string
}

// Server bundles dependencies for HTTP handlers.
type Server struct {
	cfg    config.Config
	db     *sql.DB
	store  *sessions.CookieStore
	tmpl   *template.Template
	repos  contracts.Repos
	logger *slog.Logger
	table  routes.Table
	nav    []NavItem
}

// NewServer configures dependencies and templates for handlers using the default SQLite-backed repositories.
func NewServer(cfg config.Config, db *sql.DB, logger *slog.Logger) (*Server, error) {
	return NewServerWithRepos(cfg, db, sqlitestore.NewRepos(db), logger)
}

// NewServerWithRepos constructs a new server with repos.
func NewServerWithRepos(cfg config.Config, db *sql.DB, repos contracts.Repos, logger *slog.Logger) (*Server, error) {
	if len(cfg.SecretKey) == 0 {
		return nil, errors.New("session secret key is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	store := sessions.NewCookieStore(cfg.SecretKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   cfg.Secure(),
		SameSite: cfg.CookieSameSite,
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:    cfg,
		db:     db,
		store:  store,
		tmpl:   tmpl,
		repos:  repos,
		logger: logger,
	}, nil
}

// Config returns a copy of the server configuration.
func (s *Server) Config() config.Config {
	return s.cfg
}

// Repos returns the repository bundle for storage access.
func (s *Server) Repos() contracts.Repos {
	return s.repos
}

// Logger returns the application logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SetRoutes installs the route table used for reverse routing. The header
// links are its titled, parameterless routes behind login.
func (s *Server) SetRoutes(table routes.Table) {
	s.table = table
	s.nav = make([]NavItem, 0, table.Len())
	for _, route := range table.Routes() {
		if route.Title == "" || route.HasParams() || !route.RequiresAuth {
			continue
		}
		s.nav = append(s.nav, NavItem{Name: route.Name, Title: route.Title, URL: route.Path})
	}
}

// Nav returns the header links.
func (s *Server) Nav() []NavItem {
	return append([]NavItem(nil), s.nav...)
}

// RouteURL builds the path of a named route from key/value params.
func (s *Server) RouteURL(name string, params ...string) (string, error) {
	return s.table.URL(name, params...)
}

// Ping checks database connectivity.
func (s *Server) Ping(ctx context.Context) error {
	if s.db == nil {
		return errors.New("no database")
	}
	return s.db.PingContext(ctx)
}

// WithSecurityHeaders wraps the handler with additional behavior.
func (s *Server) WithSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'")
		next.ServeHTTP(w, r)
	})
}

// GetSession returns the named cookie session. A tampered or expired cookie
// yields a fresh session together with the decode error.
func (s *Server) GetSession(r *http.Request, name string) (*sessions.Session, error) {
	return s.store.Get(r, name)
}

// LoginState reads the login flag for the navigation guard.
func (s *Server) LoginState(r *http.Request) routes.LoginState {
	session, _ := s.store.Get(r, core.SessionName)
	return routes.LoginState{LoggedIn: core.SessionLoggedIn(session)}
}

// CurrentUser returns the authenticated user from the session.
func (s *Server) CurrentUser(r *http.Request) (domain.User, error) {
	session, _ := s.store.Get(r, core.SessionName)
	id, ok := core.SessionUserID(session)
	if !ok || !core.SessionLoggedIn(session) {
		return domain.User{}, domain.ErrNotLoggedIn
	}
	return s.repos.Users.GetUserByID(r.Context(), id)
}

// EnsureCSRF ensures CSRF is initialized and available.
func (s *Server) EnsureCSRF(session *sessions.Session) string {
	if token, ok := session.Values["csrf_token"].(string); ok && token != "" {
		return token
	}
	token := core.RandomToken(32)
	session.Values["csrf_token"] = token
	return token
}

// ValidateCSRF checks the submitted CSRF token unless disabled by config.
func (s *Server) ValidateCSRF(session *sessions.Session, token string) bool {
	if s.cfg.CSRFDisabled {
		return true
	}
	stored, _ := session.Values["csrf_token"].(string)
	if stored == "" || token == "" {
		return false
	}
	return core.SubtleCompare(stored, token)
}

// RenderTemplate renders a named template. Map data gets the header links
// under "Nav" unless the caller set them.
func (s *Server) RenderTemplate(w http.ResponseWriter, name string, data interface{}) error {
	return s.RenderTemplateStatus(w, http.StatusOK, name, data)
}

// RenderTemplateStatus renders a named template with the given status code.
// Nothing is written when the template fails.
func (s *Server) RenderTemplateStatus(w http.ResponseWriter, status int, name string, data interface{}) error {
	if m, ok := data.(map[string]interface{}); ok {
		if _, set := m["Nav"]; !set {
			m["Nav"] = s.nav
		}
	}
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render template", "template", name, "err", err)
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
