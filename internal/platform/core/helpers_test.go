package core

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"portal/internal/domain"
)

// TestIsSafeRedirect verifies is safe redirect behavior.
func TestIsSafeRedirect(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://example.com/base", nil)

	if !IsSafeRedirect(req, "/profile") {
		t.Fatalf("expected relative redirect to be safe")
	}
	if !IsSafeRedirect(req, "https://example.com/path") {
		t.Fatalf("expected same-host redirect to be safe")
	}
	if IsSafeRedirect(req, "https://evil.example.com/") {
		t.Fatalf("expected different host to be unsafe")
	}
	if IsSafeRedirect(req, "//evil.example.com/") {
		t.Fatalf("expected protocol-relative URL to be unsafe")
	}
	if IsSafeRedirect(req, "/\\evil.example.com") {
		t.Fatalf("expected backslash URL to be unsafe")
	}
	if IsSafeRedirect(req, "javascript:alert(1)") {
		t.Fatalf("expected javascript URL to be unsafe")
	}
	if IsSafeRedirect(req, "") {
		t.Fatalf("expected empty target to be unsafe")
	}
}

func newSession() *sessions.Session {
	return sessions.NewSession(sessions.NewCookieStore([]byte("test-secret")), SessionName)
}

// TestSessionUserID verifies session user ID behavior.
func TestSessionUserID(t *testing.T) {
	session := newSession()
	if _, ok := SessionUserID(session); ok {
		t.Fatalf("expected no user id")
	}
	session.Values[UserIDKey] = int64(7)
	if id, ok := SessionUserID(session); !ok || id != 7 {
		t.Fatalf("expected user id 7, got %d %v", id, ok)
	}
	session.Values[UserIDKey] = "7"
	if _, ok := SessionUserID(session); ok {
		t.Fatalf("expected string user id to be rejected")
	}
	if _, ok := SessionUserID(nil); ok {
		t.Fatalf("expected nil session to have no user")
	}
}

func TestSessionLoggedIn(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		set   bool
		want  bool
	}{
		{name: "absent", want: false},
		{name: "nil", value: nil, set: true, want: false},
		{name: "true", value: true, set: true, want: true},
		{name: "false", value: false, set: true, want: false},
		{name: "string", value: "true", set: true, want: true},
		{name: "empty string", value: "", set: true, want: false},
		{name: "number", value: 1, set: true, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := newSession()
			if tc.set {
				session.Values[LoginFlagKey] = tc.value
			}
			if got := SessionLoggedIn(session); got != tc.want {
				t.Fatalf("SessionLoggedIn() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSetLoggedInAndClear(t *testing.T) {
	session := newSession()
	SetLoggedIn(session, 42)
	if !SessionLoggedIn(session) {
		t.Fatalf("expected logged in")
	}
	if id, _ := SessionUserID(session); id != 42 {
		t.Fatalf("expected user 42, got %d", id)
	}
	ClearSession(session)
	if SessionLoggedIn(session) {
		t.Fatalf("expected cleared flag")
	}
	if session.Options.MaxAge != -1 {
		t.Fatalf("expected expired cookie, got MaxAge %d", session.Options.MaxAge)
	}
}

func TestParseID(t *testing.T) {
	if id, ok := ParseID("42"); !ok || id != 42 {
		t.Fatalf("expected 42, got %d %v", id, ok)
	}
	for _, raw := range []string{"", "0", "-1", "abc", "4.2"} {
		if _, ok := ParseID(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestRandomTokenLength(t *testing.T) {
	if got := RandomToken(16); len(got) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(got))
	}
	if !SubtleCompare("abc", "abc") || SubtleCompare("abc", "abd") {
		t.Fatalf("unexpected compare result")
	}
}

func TestRequireUser(t *testing.T) {
	ok := func(*http.Request) (domain.User, error) { return domain.User{ID: 3}, nil }
	gone := func(*http.Request) (domain.User, error) { return domain.User{}, domain.ErrNotFound }
	broken := func(*http.Request) (domain.User, error) { return domain.User{}, errors.New("db down") }

	rec := httptest.NewRecorder()
	user, cont := RequireUser(rec, httptest.NewRequest(http.MethodGet, "/", nil), ok)
	if !cont || user.ID != 3 {
		t.Fatalf("expected user 3, got %+v %v", user, cont)
	}

	rec = httptest.NewRecorder()
	if _, cont := RequireUser(rec, httptest.NewRequest(http.MethodGet, "/", nil), gone); cont {
		t.Fatalf("expected stop for missing user")
	}
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/logout" {
		t.Fatalf("expected redirect to /logout, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	if _, cont := RequireUser(rec, httptest.NewRequest(http.MethodGet, "/", nil), broken); cont {
		t.Fatalf("expected stop on failure")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
