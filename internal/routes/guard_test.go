package routes

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecorder(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func testTable() Table {
	return MustTable(
		Route{Path: "/", Name: "home", View: stubView("HomeView"), RequiresAuth: true},
		Route{Path: "/articles/{id}", Name: "article-detail", View: Eager("ArticleDetailView", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, _ := RouteFromContext(r.Context())
			_, _ = w.Write([]byte(route.Name + ":" + r.PathValue("id")))
		})), RequiresAuth: true},
		Route{Path: "/login", Name: "login", View: stubView("LoginView")},
		Route{Path: "/profile", Name: "profile", View: stubView("ProfileView"), RequiresAuth: true},
	)
}

func TestDecide(t *testing.T) {
	guard := DefaultGuard()
	protected := Route{Path: "/profile", Name: "profile", RequiresAuth: true}
	open := Route{Path: "/login", Name: "login"}

	assert.Equal(t, Decision{Outcome: Redirect, Location: "/login"}, guard.Decide(protected, LoginState{}))
	assert.Equal(t, Decision{Outcome: Proceed}, guard.Decide(protected, LoginState{LoggedIn: true}))
	assert.Equal(t, Decision{Outcome: Proceed}, guard.Decide(open, LoginState{}))
	assert.Equal(t, Decision{Outcome: Proceed}, guard.Decide(open, LoginState{LoggedIn: true}))
}

func TestDecideEmptyLoginPathFallsBack(t *testing.T) {
	d := Guard{}.Decide(Route{RequiresAuth: true}, LoginState{})
	assert.Equal(t, DefaultLoginPath, d.Location)
	assert.Equal(t, "redirect", d.Outcome.String())
}

func TestDecideOverEveryRoute(t *testing.T) {
	guard := DefaultGuard()
	for _, route := range testTable().Routes() {
		for _, loggedIn := range []bool{false, true} {
			d := guard.Decide(route, LoginState{LoggedIn: loggedIn})
			if route.RequiresAuth && !loggedIn {
				assert.Equal(t, Redirect, d.Outcome, route.Name)
				assert.Equal(t, "/login", d.Location, route.Name)
				continue
			}
			assert.Equal(t, Proceed, d.Outcome, route.Name)
		}
	}
}

func TestRouterRedirectsAnonymousVisitors(t *testing.T) {
	router := NewRouter(testTable(), DefaultGuard(), func(*http.Request) LoginState { return LoginState{} })

	rec := newRecorder(t, router, "/profile")
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = newRecorder(t, router, "/login")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "LoginView", rec.Body.String())
}

func TestRouterLetsLoggedInVisitorsThrough(t *testing.T) {
	router := NewRouter(testTable(), DefaultGuard(), func(*http.Request) LoginState { return LoginState{LoggedIn: true} })

	rec := newRecorder(t, router, "/articles/42")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "article-detail:42", rec.Body.String())

	rec = newRecorder(t, router, "/")
	assert.Equal(t, "HomeView", rec.Body.String())
}

func TestRouterDoesNotResolveGuardedViews(t *testing.T) {
	loaded := false
	table := MustTable(Route{Path: "/secret", Name: "secret", RequiresAuth: true, View: Lazy("SecretView", func() http.Handler {
		loaded = true
		return http.NotFoundHandler()
	})})
	router := NewRouter(table, DefaultGuard(), nil)

	rec := newRecorder(t, router, "/secret")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.False(t, loaded)
}

func TestRouterResolvesViewOnceAcrossConcurrentNavigations(t *testing.T) {
	var loads atomic.Int32
	table := MustTable(Route{Path: "/notes", Name: "notes", RequiresAuth: true, View: Lazy("NotesView", func() http.Handler {
		loads.Add(1)
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("NotesView"))
		})
	})})
	router := NewRouter(table, DefaultGuard(), func(*http.Request) LoginState { return LoginState{LoggedIn: true} })

	var wg sync.WaitGroup
	codes := make([]int, 24)
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes", nil))
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
}

func TestRouterNotFound(t *testing.T) {
	router := NewRouter(testTable(), DefaultGuard(), nil, WithNotFound(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	rec := newRecorder(t, router, "/nowhere")
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
