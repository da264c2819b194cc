package wiring

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"portal/internal/config"
	"portal/internal/domain"
)

// Platform helpers.
func (d Deps) Config() config.Config {
	return d.srv.Config()
}

// Logger returns the server logger.
func (d Deps) Logger() *slog.Logger {
	return d.srv.Logger()
}

// Ping checks the database connection.
func (d Deps) Ping(ctx context.Context) error {
	return d.srv.Ping(ctx)
}

// GetSession returns the session by delegating to configured services.
func (d Deps) GetSession(r *http.Request, name string) (*sessions.Session, error) {
	return d.srv.GetSession(r, name)
}

// EnsureCSRF ensures CSRF is initialized and available by delegating to configured services.
func (d Deps) EnsureCSRF(session *sessions.Session) string {
	return d.srv.EnsureCSRF(session)
}

// ValidateCSRF validates CSRF and returns an error on failure.
func (d Deps) ValidateCSRF(session *sessions.Session, token string) bool {
	return d.srv.ValidateCSRF(session, token)
}

// RenderTemplate renders a named template with the provided data.
func (d Deps) RenderTemplate(w http.ResponseWriter, name string, data interface{}) error {
	return d.srv.RenderTemplate(w, name, data)
}

// RouteURL builds the path of a named route.
func (d Deps) RouteURL(name string, params ...string) (string, error) {
	return d.srv.RouteURL(name, params...)
}

// CurrentUser returns the authenticated user from the request.
func (d Deps) CurrentUser(r *http.Request) (domain.User, error) {
	return d.srv.CurrentUser(r)
}

// AuditOutcome records outcome as an audit event.
func (d Deps) AuditOutcome(ctx context.Context, actorID int, action, target string, err error, meta map[string]string) {
	d.srv.AuditOutcome(ctx, actorID, action, target, err, meta)
}
