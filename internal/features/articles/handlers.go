package articles

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/sessions"
	"portal/internal/domain"
	"portal/internal/platform/core"
)

// PageSize is the number of articles listed per page.
const PageSize = 10

// maxPage keeps the offset computation far from overflow.
const maxPage = 1_000_000

const (
	maxTitleLen = 200
	maxBodyLen  = 50_000
)

type Dependencies interface {
	CurrentUser(r *http.Request) (domain.User, error)
	GetSession(r *http.Request, name string) (*sessions.Session, error)
	EnsureCSRF(session *sessions.Session) string
	ValidateCSRF(session *sessions.Session, token string) bool
	ListArticles(ctx context.Context, limit, offset int) ([]domain.Article, int, error)
	GetArticle(ctx context.Context, id int) (domain.Article, error)
	CreateArticle(ctx context.Context, authorID int, title, body string) (int64, error)
	RouteURL(name string, params ...string) (string, error)
	RenderTemplate(w http.ResponseWriter, name string, data interface{}) error
	Logger() *slog.Logger
}

type Handler struct {
	deps Dependencies
}

func NewHandler(deps Dependencies) Handler {
	return Handler{deps: deps}
}

// Form holds submitted article fields for re-rendering after an error.
type Form struct {
	Title string
	Body  string
}

// List renders the article index and publishes new articles on POST.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
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
		form = Form{Title: strings.TrimSpace(r.FormValue("title")), Body: strings.TrimSpace(r.FormValue("body"))}
		if err := validate(form); err != nil {
			errMsg = err.Error()
		} else {
			id, err := h.deps.CreateArticle(r.Context(), user.ID, form.Title, form.Body)
			if err != nil {
				h.deps.Logger().ErrorContext(r.Context(), "create article", "err", err)
				http.Error(w, "Failed to save article", http.StatusInternalServerError)
				return
			}
			target, err := h.deps.RouteURL("article-detail", "id", strconv.FormatInt(id, 10))
			if err != nil {
				h.deps.Logger().ErrorContext(r.Context(), "article url", "id", id, "err", err)
				http.Error(w, "Failed to save article", http.StatusInternalServerError)
				return
			}
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
	}

	page := 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 1 {
		page = min(v, maxPage)
	}
	list, total, err := h.deps.ListArticles(r.Context(), PageSize, (page-1)*PageSize)
	if err != nil {
		h.deps.Logger().ErrorContext(r.Context(), "list articles", "err", err)
		http.Error(w, "Failed to load articles", http.StatusInternalServerError)
		return
	}
	if last := max(1, (total+PageSize-1)/PageSize); page > last {
		target, err := h.deps.RouteURL("articles")
		if err != nil {
			h.deps.Logger().ErrorContext(r.Context(), "articles url", "err", err)
			http.Error(w, "Failed to load articles", http.StatusInternalServerError)
			return
		}
		if last > 1 {
			target += "?page=" + strconv.Itoa(last)
		}
		http.Redirect(w, r, target, http.StatusFound)
		return
	}
	prev, next := 0, 0
	if page > 1 {
		prev = page - 1
	}
	if page*PageSize < total {
		next = page + 1
	}

	data := map[string]interface{}{
		"Title":     "Articles",
		"User":      user,
		"Articles":  list,
		"Total":     total,
		"PrevPage":  prev,
		"NextPage":  next,
		"Form":      form,
		"Error":     errMsg,
		"CSRFToken": h.deps.EnsureCSRF(session),
	}
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	if err := h.deps.RenderTemplate(w, "articles.html", data); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// Detail renders one article addressed by the {id} path segment.
func (h Handler) Detail(w http.ResponseWriter, r *http.Request) {
	user, ok := core.RequireUser(w, r, h.deps.CurrentUser)
	if !ok {
		return
	}
	id, ok := core.ParseID(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	article, err := h.deps.GetArticle(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.deps.Logger().ErrorContext(r.Context(), "load article", "id", id, "err", err)
		http.Error(w, "Failed to load article", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Title":   article.Title,
		"User":    user,
		"Article": article,
	}
	if err := h.deps.RenderTemplate(w, "article_detail.html", data); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func validate(f Form) error {
	switch {
	case f.Title == "":
		return errors.New("Title is required")
	case len([]rune(f.Title)) > maxTitleLen:
		return errors.New("Title is too long")
	case f.Body == "":
		return errors.New("Body is required")
	case len(f.Body) > maxBodyLen:
		return errors.New("Body is too long")
	}
	return nil
}
