package core

import (
	"errors"
	"net/http"

	"portal/internal/domain"
)

// RequireUser loads the session user for a view. When the session points at
// no usable account the visitor is sent through /logout, which clears the
// login flag; other failures answer 500. It reports whether the view should
// continue.
func RequireUser(w http.ResponseWriter, r *http.Request, load func(*http.Request) (domain.User, error)) (domain.User, bool) {
	user, err := load(r)
	if err == nil {
		return user, true
	}
	if errors.Is(err, domain.ErrNotLoggedIn) || errors.Is(err, domain.ErrNotFound) {
		http.Redirect(w, r, "/logout", http.StatusFound)
		return domain.User{}, false
	}
	http.Error(w, "Failed to load user", http.StatusInternalServerError)
	return domain.User{}, false
}
