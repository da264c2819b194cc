package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"portal/internal/config"
	"portal/internal/domain"
	"portal/internal/platform/core"
	portalserver "portal/internal/platform/server"
	"portal/internal/routes"
	"portal/internal/testutil"
)

func TestNewServerRequiresSecret(t *testing.T) {
	_, err := portalserver.NewServer(config.Config{}, testutil.OpenDB(t), nil)
	assert.Error(t, err)
}

func TestLoginStateFollowsSessionFlag(t *testing.T) {
	srv := testutil.NewServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, srv.LoginState(req).LoggedIn)

	session, err := srv.GetSession(req, core.SessionName)
	require.NoError(t, err)
	core.SetLoggedIn(session, 1)
	rec := httptest.NewRecorder()
	require.NoError(t, session.Save(req, rec))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	assert.True(t, srv.LoginState(next).LoggedIn)

	_, err = srv.CurrentUser(next)
	assert.ErrorIs(t, err, domain.ErrNotFound, "flag set for a user that does not exist")
	_, err = srv.CurrentUser(req)
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestValidateCSRF(t *testing.T) {
	cfg := testutil.TestConfig(t)
	cfg.CSRFDisabled = false
	srv := testutil.NewServerWithConfig(t, cfg)
	session, _ := srv.GetSession(httptest.NewRequest(http.MethodGet, "/", nil), core.SessionName)

	token := srv.EnsureCSRF(session)
	assert.Equal(t, token, srv.EnsureCSRF(session))
	assert.True(t, srv.ValidateCSRF(session, token))
	assert.False(t, srv.ValidateCSRF(session, "forged"))
	assert.False(t, srv.ValidateCSRF(session, ""))
}

func TestTemplatesRender(t *testing.T) {
	srv := testutil.NewServer(t)
	srv.SetRoutes(routes.MustTable(routes.Route{Path: "/", Name: "home", Title: "Home", RequiresAuth: true, View: routes.Eager("HomeView", http.NotFoundHandler())}))
	user := domain.User{ID: 1, Username: "alice"}

	pages := map[string]map[string]interface{}{
		"home.html":           {"User": user, "Counts": domain.Counts{Articles: 3}},
		"about.html":          {"User": user, "About": "About text"},
		"articles.html":       {"User": user, "Form": struct{ Title, Body string }{}, "Articles": []domain.Article{{ID: 1, Title: "A"}}},
		"article_detail.html": {"User": user, "Article": domain.Article{ID: 1, Title: "A"}},
		"notes.html":          {"User": user, "Notes": []domain.Note{{ID: 1, Body: "n"}}},
		"messages.html":       {"User": user, "Form": struct{ To, Body string }{}, "Inbox": []domain.Message{{Body: "hi"}}},
		"albums.html":         {"User": user, "Albums": []domain.Album{{ID: 1, Title: "Trip"}}},
		"album_detail.html":   {"User": user, "Album": domain.Album{ID: 1}, "Photos": []domain.Photo{{ID: 2}}},
		"login.html":          {"Next": "/notes"},
		"register.html":       {},
		"profile.html":        {"User": user, "PendingSecret": ""},
		"not_found.html":      {},
	}
	for name, data := range pages {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, srv.RenderTemplate(rec, name, data))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `<a href="/">Home</a>`)
		})
	}
}

func TestRenderTemplateStatus(t *testing.T) {
	srv := testutil.NewServer(t)
	rec := httptest.NewRecorder()
	require.NoError(t, srv.RenderTemplateStatus(rec, http.StatusNotFound, "not_found.html", map[string]interface{}{}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	assert.Error(t, srv.RenderTemplate(rec, "missing.html", nil))
}

func TestSetRoutesDerivesNavAndReverseRoutes(t *testing.T) {
	srv := testutil.NewServer(t)
	_, err := srv.RouteURL("home")
	assert.ErrorIs(t, err, routes.ErrUnknownRoute)

	view := routes.Eager("View", http.NotFoundHandler())
	srv.SetRoutes(routes.MustTable(
		routes.Route{Path: "/", Name: "home", Title: "Home", RequiresAuth: true, View: view},
		routes.Route{Path: "/notes/{id}", Name: "note", Title: "Note", RequiresAuth: true, View: view},
		routes.Route{Path: "/login", Name: "login", Title: "Login", View: view},
	))

	assert.Equal(t, []portalserver.NavItem{{Name: "home", Title: "Home", URL: "/"}}, srv.Nav())
	got, err := srv.RouteURL("note", "id", "5")
	require.NoError(t, err)
	assert.Equal(t, "/notes/5", got)
}
