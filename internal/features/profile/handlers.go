package profile

import (
	"context"
	"encoding/base64"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gorilla/sessions"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"
	"portal/internal/domain"
	"portal/internal/features/auth"
	"portal/internal/platform/core"
)

// PendingTOTPKey holds the otpauth URL of an enrolment that has not been
// confirmed yet.
const PendingTOTPKey = "totp_pending"

const noticeKey = "profile_notice"

const (
	issuer         = "portal"
	maxDisplayName = 80
	maxBioLen      = 1000
	activityLimit  = 10
)

type Dependencies interface {
	CurrentUser(r *http.Request) (domain.User, error)
	GetSession(r *http.Request, name string) (*sessions.Session, error)
	EnsureCSRF(session *sessions.Session) string
	ValidateCSRF(session *sessions.Session, token string) bool
	UpdateProfile(ctx context.Context, userID int, displayName, bio string) error
	UpdatePassword(ctx context.Context, userID int, passwordHash string) error
	UpdateTOTPSecret(ctx context.Context, userID int, secret string) error
	ListAuditLogsForUser(ctx context.Context, userID, limit int) ([]domain.AuditLog, error)
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

// userError is shown on the form instead of failing the request.
type userError string

func (e userError) Error() string { return string(e) }

// Profile shows the account page and applies the posted action.
func (h Handler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := core.RequireUser(w, r, h.deps.CurrentUser)
	if !ok {
		return
	}
	session, _ := h.deps.GetSession(r, core.SessionName)
	errMsg := ""

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		if !h.deps.ValidateCSRF(session, r.FormValue("csrf_token")) {
			http.Error(w, "Invalid CSRF token", http.StatusBadRequest)
			return
		}
		notice, err := h.apply(r, session, user)
		var input userError
		switch {
		case err == nil:
			if notice != "" {
				session.Values[noticeKey] = notice
			}
			if err := session.Save(r, w); err != nil {
				http.Error(w, "Session error", http.StatusInternalServerError)
				return
			}
			http.Redirect(w, r, "/profile", http.StatusFound)
			return
		case errors.As(err, &input):
			errMsg = input.Error()
		default:
			h.deps.Logger().ErrorContext(r.Context(), "update profile", "user", user.ID, "err", err)
			http.Error(w, "Failed to update profile", http.StatusInternalServerError)
			return
		}
	}

	activity, err := h.deps.ListAuditLogsForUser(r.Context(), user.ID, activityLimit)
	if err != nil {
		h.deps.Logger().WarnContext(r.Context(), "load activity", "user", user.ID, "err", err)
	}
	notice, _ := session.Values[noticeKey].(string)
	delete(session.Values, noticeKey)
	data := map[string]interface{}{
		"Title":         "Profile",
		"User":          user,
		"Error":         errMsg,
		"Notice":        notice,
		"Activity":      activity,
		"PendingSecret": "",
		"QRCode":        template.URL(""),
		"CSRFToken":     h.deps.EnsureCSRF(session),
	}
	if !user.TwoFactorEnabled() {
		if key, ok := pendingKey(session); ok {
			data["PendingSecret"] = key.Secret()
			if qr, err := qrDataURL(key.URL()); err == nil {
				data["QRCode"] = qr
			} else {
				h.deps.Logger().WarnContext(r.Context(), "render totp qr", "err", err)
			}
		}
	}
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	if err := h.deps.RenderTemplate(w, "profile.html", data); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (h Handler) apply(r *http.Request, session *sessions.Session, user domain.User) (string, error) {
	ctx := r.Context()
	target := strconv.Itoa(user.ID)
	switch r.FormValue("action") {
	case "profile":
		displayName := strings.TrimSpace(r.FormValue("display_name"))
		bio := strings.TrimSpace(r.FormValue("bio"))
		if utf8.RuneCountInString(displayName) > maxDisplayName {
			return "", userError("Display name is too long")
		}
		if utf8.RuneCountInString(bio) > maxBioLen {
			return "", userError("Bio is too long")
		}
		if err := h.deps.UpdateProfile(ctx, user.ID, displayName, bio); err != nil {
			return "", err
		}
		return "Profile saved", nil

	case "password":
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(r.FormValue("current"))) != nil {
			return "", userError("Current password is incorrect")
		}
		password := r.FormValue("password")
		if err := auth.ValidatePassword(password, r.FormValue("confirm")); err != nil {
			return "", userError(err.Error())
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		err = h.deps.UpdatePassword(ctx, user.ID, string(hash))
		h.deps.AuditOutcome(ctx, user.ID, "user.password", target, err, nil)
		if err != nil {
			return "", err
		}
		return "Password changed", nil

	case "totp_begin":
		if user.TwoFactorEnabled() {
			return "", userError("Two-factor authentication is already enabled")
		}
		key, err := totp.Generate(totp.GenerateOpts{Issuer: issuer, AccountName: user.Username})
		if err != nil {
			return "", err
		}
		session.Values[PendingTOTPKey] = key.URL()
		return "", nil

	case "totp_confirm":
		key, ok := pendingKey(session)
		if !ok {
			return "", userError("Start two-factor setup first")
		}
		if !totp.Validate(strings.TrimSpace(r.FormValue("totp")), key.Secret()) {
			return "", userError("Invalid code")
		}
		err := h.deps.UpdateTOTPSecret(ctx, user.ID, key.Secret())
		h.deps.AuditOutcome(ctx, user.ID, "user.totp_enable", target, err, nil)
		if err != nil {
			return "", err
		}
		delete(session.Values, PendingTOTPKey)
		return "Two-factor authentication enabled", nil

	case "totp_disable":
		if !user.TwoFactorEnabled() {
			return "", userError("Two-factor authentication is not enabled")
		}
		if !totp.Validate(strings.TrimSpace(r.FormValue("totp")), user.TOTPSecret) {
			return "", userError("Invalid code")
		}
		err := h.deps.UpdateTOTPSecret(ctx, user.ID, "")
		h.deps.AuditOutcome(ctx, user.ID, "user.totp_disable", target, err, nil)
		if err != nil {
			return "", err
		}
		return "Two-factor authentication disabled", nil
	}
	return "", userError("Unknown action")
}

func pendingKey(session *sessions.Session) (*otp.Key, bool) {
	raw, _ := session.Values[PendingTOTPKey].(string)
	if raw == "" {
		return nil, false
	}
	key, err := otp.NewKeyFromURL(raw)
	if err != nil {
		return nil, false
	}
	return key, true
}

func qrDataURL(content string) (template.URL, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
}
