package home

import (
	"context"
	"log/slog"
	"net/http"

	"portal/internal/domain"
	"portal/internal/platform/core"
)

// AboutSettingKey stores the text shown on the about page.
const AboutSettingKey = "about_text"

// DefaultAbout is shown until an about text is configured.
const DefaultAbout = "A small personal portal for articles, notes, messages and photo albums."

type Dependencies interface {
	CurrentUser(r *http.Request) (domain.User, error)
	CountArticlesByAuthor(ctx context.Context, authorID int) (int, error)
	CountNotes(ctx context.Context, userID int) (int, error)
	CountUnread(ctx context.Context, userID int) (int, error)
	CountAlbums(ctx context.Context, userID int) (int, error)
	GetSetting(ctx context.Context, key string) (string, bool, error)
	RenderTemplate(w http.ResponseWriter, name string, data interface{}) error
	Logger() *slog.Logger
}

type Handler struct {
	deps Dependencies
}

func NewHandler(deps Dependencies) Handler {
	return Handler{deps: deps}
}

// Home greets the user with a summary of their content.
func (h Handler) Home(w http.ResponseWriter, r *http.Request) {
	user, ok := core.RequireUser(w, r, h.deps.CurrentUser)
	if !ok {
		return
	}
	counts, err := h.counts(r.Context(), user.ID)
	if err != nil {
		h.deps.Logger().ErrorContext(r.Context(), "load counts", "user", user.ID, "err", err)
		http.Error(w, "Failed to load summary", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Title":  "Home",
		"User":   user,
		"Counts": counts,
	}
	if err := h.deps.RenderTemplate(w, "home.html", data); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (h Handler) counts(ctx context.Context, userID int) (domain.Counts, error) {
	var c domain.Counts
	var err error
	if c.Articles, err = h.deps.CountArticlesByAuthor(ctx, userID); err != nil {
		return c, err
	}
	if c.Notes, err = h.deps.CountNotes(ctx, userID); err != nil {
		return c, err
	}
	if c.UnreadMessages, err = h.deps.CountUnread(ctx, userID); err != nil {
		return c, err
	}
	if c.Albums, err = h.deps.CountAlbums(ctx, userID); err != nil {
		return c, err
	}
	return c, nil
}

// About renders the configured about text.
func (h Handler) About(w http.ResponseWriter, r *http.Request) {
	user, ok := core.RequireUser(w, r, h.deps.CurrentUser)
	if !ok {
		return
	}
	about, found, err := h.deps.GetSetting(r.Context(), AboutSettingKey)
	if err != nil {
		h.deps.Logger().WarnContext(r.Context(), "load about text", "err", err)
	}
	if !found || about == "" {
		about = DefaultAbout
	}
	data := map[string]interface{}{
		"Title": "About",
		"User":  user,
		"About": about,
	}
	if err := h.deps.RenderTemplate(w, "about.html", data); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
