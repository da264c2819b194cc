package messages

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"portal/internal/domain"
	"portal/internal/platform/core"
)

const maxMessageLen = 5000

type Dependencies interface {
	CurrentUser(r *http.Request) (domain.User, error)
	GetSession(r *http.Request, name string) (*sessions.Session, error)
	EnsureCSRF(session *sessions.Session) string
	ValidateCSRF(session *sessions.Session, token string) bool
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	ListInbox(ctx context.Context, userID int) ([]domain.Message, error)
	ListSent(ctx context.Context, userID int) ([]domain.Message, error)
	SendMessage(ctx context.Context, senderID, recipientID int, body string) (int64, error)
	MarkInboxRead(ctx context.Context, userID, upToID int) error
	RenderTemplate(w http.ResponseWriter, name string, data interface{}) error
	Logger() *slog.Logger
}

type Handler struct {
	deps Dependencies
}

func NewHandler(deps Dependencies) Handler {
	return Handler{deps: deps}
}

type Form struct {
	To   string
	Body string
}

// newestID is the highest message id shown; only those get marked read.
func newestID(inbox []domain.Message) int {
	newest := 0
	for _, m := range inbox {
		if m.ID > newest {
			newest = m.ID
		}
	}
	return newest
}

// Messages shows the inbox and sent folders and sends a message on POST.
// Viewing the inbox marks its messages read.
func (h Handler) Messages(w http.ResponseWriter, r *http.Request) {
	user, ok := core.RequireUser(w, r, h.deps.CurrentUser)
	if !ok {
		return
	}
	session, _ := h.deps.GetSession(r, core.SessionName)
	form := Form{}
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
		form = Form{To: strings.TrimSpace(r.FormValue("to")), Body: strings.TrimSpace(r.FormValue("body"))}
		msg, err := h.send(r.Context(), user, form)
		if err != nil {
			h.deps.Logger().ErrorContext(r.Context(), "send message", "user", user.ID, "err", err)
			http.Error(w, "Failed to send message", http.StatusInternalServerError)
			return
		}
		if msg == "" {
			http.Redirect(w, r, "/messages", http.StatusFound)
			return
		}
		errMsg = msg
	}

	inbox, err := h.deps.ListInbox(r.Context(), user.ID)
	if err != nil {
		h.deps.Logger().ErrorContext(r.Context(), "list inbox", "user", user.ID, "err", err)
		http.Error(w, "Failed to load messages", http.StatusInternalServerError)
		return
	}
	sent, err := h.deps.ListSent(r.Context(), user.ID)
	if err != nil {
		h.deps.Logger().ErrorContext(r.Context(), "list sent", "user", user.ID, "err", err)
		http.Error(w, "Failed to load messages", http.StatusInternalServerError)
		return
	}
	if newest := newestID(inbox); newest > 0 {
		if err := h.deps.MarkInboxRead(r.Context(), user.ID, newest); err != nil {
			h.deps.Logger().WarnContext(r.Context(), "mark inbox read", "user", user.ID, "err", err)
		}
	}

	data := map[string]interface{}{
		"Title":     "Messages",
		"User":      user,
		"Inbox":     inbox,
		"Sent":      sent,
		"Form":      form,
		"Error":     errMsg,
		"CSRFToken": h.deps.EnsureCSRF(session),
	}
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	if err := h.deps.RenderTemplate(w, "messages.html", data); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// send returns a user-facing message for invalid input, or an error when
// storage fails.
func (h Handler) send(ctx context.Context, sender domain.User, form Form) (string, error) {
	if form.To == "" || form.Body == "" {
		return "Recipient and message are required", nil
	}
	if len(form.Body) > maxMessageLen {
		return "Message is too long", nil
	}
	recipient, err := h.deps.GetUserByUsername(ctx, form.To)
	if errors.Is(err, domain.ErrNotFound) {
		return "Unknown recipient", nil
	}
	if err != nil {
		return "", err
	}
	if recipient.ID == sender.ID {
		return "You cannot message yourself", nil
	}
	if _, err := h.deps.SendMessage(ctx, sender.ID, recipient.ID, form.Body); err != nil {
		return "", err
	}
	return "", nil
}
