package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/sessions"
)

const (
	// SessionName is the cookie session shared by every feature.
	SessionName = "portal_session"
	// LoginFlagKey holds the "is logged in" flag read by the navigation guard.
	LoginFlagKey = "is_logged_in"
	// UserIDKey holds the authenticated user id.
	UserIDKey = "user_id"
)

// WriteJSON marshals JSON responses and sets the content type.
func WriteJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	_ = enc.Encode(data)
}

// IsSafeRedirect ensures redirect targets stay on the same host.
func IsSafeRedirect(r *http.Request, target string) bool {
	if target == "" {
		return false
	}
	if strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.IsAbs() {
		return u.Host == r.Host && (u.Scheme == "http" || u.Scheme == "https")
	}
	return strings.HasPrefix(target, "/")
}

// RandomToken returns a hex-encoded random token (fallbacks to time-based string).
func RandomToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// SubtleCompare uses constant-time comparison for security tokens.
func SubtleCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func SessionUserID(session *sessions.Session) (int, bool) {
	if session == nil {
		return 0, false
	}
	switch v := session.Values[UserIDKey].(type) {
	case int:
		return v, v > 0
	case int64:
		return int(v), v > 0
	case float64:
		return int(v), v > 0
	default:
		return 0, false
	}
}

// SessionLoggedIn reads the login flag. Presence counts as true: a bool is
// taken at face value, an empty string or a missing key is false, and any
// other stored value is true.
func SessionLoggedIn(session *sessions.Session) bool {
	if session == nil {
		return false
	}
	v, ok := session.Values[LoginFlagKey]
	if !ok || v == nil {
		return false
	}
	switch flag := v.(type) {
	case bool:
		return flag
	case string:
		return flag != ""
	default:
		return true
	}
}

// SetLoggedIn records a successful login on the session.
func SetLoggedIn(session *sessions.Session, userID int) {
	session.Values[UserIDKey] = userID
	session.Values[LoginFlagKey] = true
}

// ClearSession drops every value and expires the cookie.
func ClearSession(session *sessions.Session) {
	session.Values = map[interface{}]interface{}{}
	if session.Options != nil {
		opts := *session.Options
		opts.MaxAge = -1
		session.Options = &opts
	} else {
		session.Options = &sessions.Options{Path: "/", MaxAge: -1}
	}
}

// ParseID parses a positive integer path parameter.
func ParseID(raw string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
