package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
	"portal/internal/domain"
	"portal/internal/platform/core"
)

type Dependencies interface {
	GetSession(r *http.Request, name string) (*sessions.Session, error)
	EnsureCSRF(session *sessions.Session) string
	ValidateCSRF(session *sessions.Session, token string) bool
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	ClaimTOTPStep(ctx context.Context, userID int, step int64) (bool, error)
	AuditOutcome(ctx context.Context, actorID int, action, target string, err error, meta map[string]string)
	RenderTemplate(w http.ResponseWriter, name string, data interface{}) error
	Logger() *slog.Logger
}

type Handler struct {
	deps Dependencies
}

func NewHandler(deps Dependencies) Handler {
	return Handler{deps: deps}
}

var errInvalidCredentials = errors.New("Invalid username or password")

// dummyHash keeps the cost of a failed lookup close to a failed comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("portal-dummy-password"), bcrypt.DefaultCost)

// Login renders the login form and authenticates the user. A successful login
// sets the session login flag read by the navigation guard.
func (h Handler) Login(w http.ResponseWriter, r *http.Request) {
	session, _ := h.deps.GetSession(r, core.SessionName)
	next := safeNext(r, r.URL.Query().Get("next"))

	if r.Method == http.MethodGet && core.SessionLoggedIn(session) {
		http.Redirect(w, r, next, http.StatusFound)
		return
	}

	data := map[string]interface{}{
		"Title":     "Log in",
		"Error":     "",
		"Next":      r.URL.Query().Get("next"),
		"Username":  "",
		"CSRFToken": h.deps.EnsureCSRF(session),
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		if !h.deps.ValidateCSRF(session, r.FormValue("csrf_token")) {
			http.Error(w, "Invalid CSRF token", http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		data["Username"] = username
		user, err := h.authenticate(r.Context(), username, r.FormValue("password"), strings.TrimSpace(r.FormValue("totp")))
		if err != nil {
			if !errors.Is(err, errInvalidCredentials) {
				h.deps.Logger().ErrorContext(r.Context(), "login lookup failed", "err", err)
				http.Error(w, "Failed to load user", http.StatusInternalServerError)
				return
			}
			h.deps.AuditOutcome(r.Context(), user.ID, "user.login", "session", err, map[string]string{"username": username})
			data["Error"] = err.Error()
		} else {
			core.SetLoggedIn(session, user.ID)
			if err := session.Save(r, w); err != nil {
				http.Error(w, "Session error", http.StatusInternalServerError)
				return
			}
			h.deps.AuditOutcome(r.Context(), user.ID, "user.login", "session", nil, nil)
			http.Redirect(w, r, next, http.StatusFound)
			return
		}
	}

	if err := session.Save(r, w); err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	if err := h.deps.RenderTemplate(w, "login.html", data); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// authenticate checks the password and, when enabled, the one-time code. On
// a wrong password or code the known user is still returned for auditing.
func (h Handler) authenticate(ctx context.Context, username, password, code string) (domain.User, error) {
	user, err := h.deps.GetUserByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return domain.User{}, errInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return user, errInvalidCredentials
	}
	if !user.TwoFactorEnabled() {
		return user, nil
	}
	step, ok := matchTOTP(code, user.TOTPSecret, time.Now())
	if !ok || step <= user.TOTPLastStep {
		return user, errInvalidCredentials
	}
	claimed, err := h.deps.ClaimTOTPStep(ctx, user.ID, step)
	if err != nil {
		return user, err
	}
	if !claimed {
		return user, errInvalidCredentials
	}
	return user, nil
}

// totpPeriod is the validity window of one code.
const totpPeriod = 30 * time.Second

// matchTOTP checks code against the current window and one on either side,
// returning the time step it belongs to. A step is accepted at most once.
func matchTOTP(code, secret string, now time.Time) (int64, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, false
	}
	for _, skew := range []int{0, -1, 1} {
		at := now.Add(time.Duration(skew) * totpPeriod)
		want, err := totp.GenerateCode(secret, at)
		if err != nil {
			return 0, false
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return at.Unix() / int64(totpPeriod/time.Second), true
		}
	}
	return 0, false
}

// Register creates an account and logs the new user in.
func (h Handler) Register(w http.ResponseWriter, r *http.Request) {
	session, _ := h.deps.GetSession(r, core.SessionName)
	if r.Method == http.MethodGet && core.SessionLoggedIn(session) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	data := map[string]interface{}{
		"Title":     "Register",
		"Error":     "",
		"Username":  "",
		"CSRFToken": h.deps.EnsureCSRF(session),
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		if !h.deps.ValidateCSRF(session, r.FormValue("csrf_token")) {
			http.Error(w, "Invalid CSRF token", http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		data["Username"] = username
		id, err := h.register(r.Context(), username, r.FormValue("password"), r.FormValue("confirm"))
		switch {
		case err == nil:
			core.SetLoggedIn(session, id)
			if err := session.Save(r, w); err != nil {
				http.Error(w, "Session error", http.StatusInternalServerError)
				return
			}
			h.deps.AuditOutcome(r.Context(), id, "user.register", username, nil, nil)
			http.Redirect(w, r, "/", http.StatusFound)
			return
		case errors.As(err, new(validationError)):
			data["Error"] = err.Error()
		case errors.Is(err, domain.ErrUsernameTaken):
			data["Error"] = "Username already taken"
		default:
			h.deps.Logger().ErrorContext(r.Context(), "register failed", "err", err)
			http.Error(w, "Failed to create account", http.StatusInternalServerError)
			return
		}
	}

	if err := session.Save(r, w); err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	if err := h.deps.RenderTemplate(w, "register.html", data); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// validationError carries a message safe to show on the form.
type validationError struct {
	err error
}

func (e validationError) Error() string { return e.err.Error() }

func (h Handler) register(ctx context.Context, username, password, confirm string) (int, error) {
	if err := ValidateUsername(username); err != nil {
		return 0, validationError{err}
	}
	if err := ValidatePassword(password, confirm); err != nil {
		return 0, validationError{err}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	id, err := h.deps.CreateUser(ctx, username, string(hash))
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// Logout clears the session and redirects to the login page.
func (h Handler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.deps.GetSession(r, core.SessionName)
	if id, ok := core.SessionUserID(session); ok {
		h.deps.AuditOutcome(r.Context(), id, "user.logout", "session", nil, nil)
	}
	core.ClearSession(session)
	_ = session.Save(r, w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// safeNext returns the post-login destination, defaulting to the home page.
func safeNext(r *http.Request, next string) string {
	if next == "" || !core.IsSafeRedirect(r, next) {
		return "/"
	}
	switch strings.SplitN(next, "?", 2)[0] {
	case "/login", "/register", "/logout":
		return "/"
	}
	return next
}
