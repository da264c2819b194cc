package profile

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"portal/internal/domain"
	"portal/internal/platform/core"
)

type profileDeps struct {
	user    *domain.User
	session *sessions.Session
	audits  *[]string
	data    *map[string]interface{}
}

func newDeps(t *testing.T) profileDeps {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	require.NoError(t, err)
	store := sessions.NewCookieStore([]byte("test-secret"))
	return profileDeps{
		user:    &domain.User{ID: 7, Username: "alice", PasswordHash: string(hash)},
		session: sessions.NewSession(store, core.SessionName),
		audits:  &[]string{},
		data:    &map[string]interface{}{},
	}
}

func (d profileDeps) CurrentUser(r *http.Request) (domain.User, error) { return *d.user, nil }
func (d profileDeps) GetSession(r *http.Request, name string) (*sessions.Session, error) {
	return d.session, nil
}
func (profileDeps) EnsureCSRF(session *sessions.Session) string               { return "token" }
func (profileDeps) ValidateCSRF(session *sessions.Session, token string) bool { return token == "token" }
func (d profileDeps) UpdateProfile(ctx context.Context, userID int, displayName, bio string) error {
	d.user.DisplayName, d.user.Bio = displayName, bio
	return nil
}
func (d profileDeps) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	d.user.PasswordHash = passwordHash
	return nil
}
func (d profileDeps) UpdateTOTPSecret(ctx context.Context, userID int, secret string) error {
	d.user.TOTPSecret = secret
	return nil
}
func (profileDeps) ListAuditLogsForUser(ctx context.Context, userID, limit int) ([]domain.AuditLog, error) {
	return []domain.AuditLog{{Action: "user.login"}}, nil
}
func (d profileDeps) AuditOutcome(ctx context.Context, actorID int, action, target string, err error, meta map[string]string) {
	*d.audits = append(*d.audits, action)
}
func (d profileDeps) RenderTemplate(w http.ResponseWriter, name string, data interface{}) error {
	*d.data = data.(map[string]interface{})
	return nil
}
func (profileDeps) Logger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func post(t *testing.T, deps profileDeps, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	form.Set("csrf_token", "token")
	req := httptest.NewRequest(http.MethodPost, "/profile", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	NewHandler(deps).Profile(rec, req)
	return rec
}

func get(deps profileDeps) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewHandler(deps).Profile(rec, httptest.NewRequest(http.MethodGet, "/profile", nil))
	return rec
}

func TestProfileUpdate(t *testing.T) {
	deps := newDeps(t)
	rec := post(t, deps, url.Values{"action": {"profile"}, "display_name": {" Alice "}, "bio": {"Hello"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "Alice", deps.user.DisplayName)
	assert.Equal(t, "Hello", deps.user.Bio)

	require.Equal(t, http.StatusOK, get(deps).Code)
	assert.Equal(t, "Profile saved", (*deps.data)["Notice"])
	assert.Len(t, (*deps.data)["Activity"], 1)
}

func TestPasswordChange(t *testing.T) {
	deps := newDeps(t)
	rec := post(t, deps, url.Values{"action": {"password"}, "current": {"wrong"}, "password": {"new-password"}, "confirm": {"new-password"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Current password is incorrect", (*deps.data)["Error"])

	rec = post(t, deps, url.Values{"action": {"password"}, "current": {"old-password"}, "password": {"short"}, "confirm": {"short"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password must be at least 8 characters", (*deps.data)["Error"])

	rec = post(t, deps, url.Values{"action": {"password"}, "current": {"old-password"}, "password": {"new-password"}, "confirm": {"new-password"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(deps.user.PasswordHash), []byte("new-password")))
	assert.Equal(t, []string{"user.password"}, *deps.audits)
}

func TestTOTPEnrolment(t *testing.T) {
	deps := newDeps(t)
	require.Equal(t, http.StatusFound, post(t, deps, url.Values{"action": {"totp_begin"}}).Code)

	require.Equal(t, http.StatusOK, get(deps).Code)
	secret, _ := (*deps.data)["PendingSecret"].(string)
	require.NotEmpty(t, secret)
	qr, _ := (*deps.data)["QRCode"].(template.URL)
	assert.True(t, strings.HasPrefix(string(qr), "data:image/png;base64,"))

	rec := post(t, deps, url.Values{"action": {"totp_confirm"}, "totp": {"000000"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Invalid code", (*deps.data)["Error"])

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, post(t, deps, url.Values{"action": {"totp_confirm"}, "totp": {code}}).Code)
	assert.Equal(t, secret, deps.user.TOTPSecret)
	assert.NotContains(t, deps.session.Values, PendingTOTPKey)

	code, err = totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, post(t, deps, url.Values{"action": {"totp_disable"}, "totp": {code}}).Code)
	assert.Empty(t, deps.user.TOTPSecret)
	assert.Equal(t, []string{"user.totp_enable", "user.totp_disable"}, *deps.audits)
}

func TestUnknownAction(t *testing.T) {
	deps := newDeps(t)
	rec := post(t, deps, url.Values{"action": {"nope"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Unknown action", (*deps.data)["Error"])
}
