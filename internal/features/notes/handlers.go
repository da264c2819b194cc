package notes

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

const maxNoteLen = 5000

type Dependencies interface {
	CurrentUser(r *http.Request) (domain.User, error)
	GetSession(r *http.Request, name string) (*sessions.Session, error)
	EnsureCSRF(session *sessions.Session) string
	ValidateCSRF(session *sessions.Session, token string) bool
	ListNotes(ctx context.Context, userID int) ([]domain.Note, error)
	CreateNote(ctx context.Context, userID int, body string) (int64, error)
	DeleteNote(ctx context.Context, userID, noteID int) error
	RenderTemplate(w http.ResponseWriter, name string, data interface{}) error
	Logger() *slog.Logger
}

type Handler struct {
	deps Dependencies
}

func NewHandler(deps Dependencies) Handler {
	return Handler{deps: deps}
}

// Notes lists the user's private notes. POST creates a note, or deletes one
// when action=delete.
func (h Handler) Notes(w http.ResponseWriter, r *http.Request) {
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
		var err error
		if r.FormValue("action") == "delete" {
			err = h.delete(r, user.ID)
		} else {
			err = h.create(r, user.ID)
		}
		var input inputError
		switch {
		case err == nil:
			http.Redirect(w, r, "/notes", http.StatusFound)
			return
		case errors.As(err, &input):
			errMsg = input.Error()
		case errors.Is(err, domain.ErrNotFound):
			http.NotFound(w, r)
			return
		default:
			h.deps.Logger().ErrorContext(r.Context(), "update notes", "user", user.ID, "err", err)
			http.Error(w, "Failed to update notes", http.StatusInternalServerError)
			return
		}
	}

	list, err := h.deps.ListNotes(r.Context(), user.ID)
	if err != nil {
		h.deps.Logger().ErrorContext(r.Context(), "list notes", "user", user.ID, "err", err)
		http.Error(w, "Failed to load notes", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Title":     "Notes",
		"User":      user,
		"Notes":     list,
		"Error":     errMsg,
		"CSRFToken": h.deps.EnsureCSRF(session),
	}
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	if err := h.deps.RenderTemplate(w, "notes.html", data); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

type inputError string

func (e inputError) Error() string { return string(e) }

func (h Handler) create(r *http.Request, userID int) error {
	body := strings.TrimSpace(r.FormValue("body"))
	if body == "" {
		return inputError("Note is empty")
	}
	if len(body) > maxNoteLen {
		return inputError("Note is too long")
	}
	_, err := h.deps.CreateNote(r.Context(), userID, body)
	return err
}

func (h Handler) delete(r *http.Request, userID int) error {
	id, ok := core.ParseID(r.FormValue("id"))
	if !ok {
		return domain.ErrNotFound
	}
	return h.deps.DeleteNote(r.Context(), userID, id)
}
