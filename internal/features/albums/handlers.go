package albums

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/sessions"
	"portal/internal/domain"
	"portal/internal/platform/core"
	"portal/internal/platform/media"
)

const (
	maxTitleLen   = 120
	maxCaptionLen = 300
)

type Config struct {
	PhotoDir       string
	AllowedExts    map[string]bool
	MaxUploadBytes int64
	MaxPhotoSize   int
}

type Dependencies interface {
	CurrentUser(r *http.Request) (domain.User, error)
	GetSession(r *http.Request, name string) (*sessions.Session, error)
	EnsureCSRF(session *sessions.Session) string
	ValidateCSRF(session *sessions.Session, token string) bool
	ListAlbums(ctx context.Context, userID int) ([]domain.Album, error)
	GetAlbum(ctx context.Context, userID, albumID int) (domain.Album, error)
	CreateAlbum(ctx context.Context, userID int, title string) (int64, error)
	ListPhotos(ctx context.Context, albumID int) ([]domain.Photo, error)
	GetPhoto(ctx context.Context, albumID, photoID int) (domain.Photo, error)
	AddPhoto(ctx context.Context, photo domain.Photo) (int64, error)
	RouteURL(name string, params ...string) (string, error)
	RenderTemplate(w http.ResponseWriter, name string, data interface{}) error
	Logger() *slog.Logger
}

type Handler struct {
	cfg  Config
	deps Dependencies
}

func NewHandler(cfg Config, deps Dependencies) Handler {
	if cfg.MaxPhotoSize <= 0 {
		cfg.MaxPhotoSize = media.MaxPhotoSize
	}
	return Handler{cfg: cfg, deps: deps}
}

// List shows the user's albums and creates a new one on POST.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
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
		title := strings.TrimSpace(r.FormValue("title"))
		switch {
		case title == "":
			errMsg = "Album title is required"
		case len([]rune(title)) > maxTitleLen:
			errMsg = "Album title is too long"
		default:
			id, err := h.deps.CreateAlbum(r.Context(), user.ID, title)
			if err != nil {
				h.deps.Logger().ErrorContext(r.Context(), "create album", "user", user.ID, "err", err)
				http.Error(w, "Failed to create album", http.StatusInternalServerError)
				return
			}
			h.redirectToAlbum(w, r, id)
			return
		}
	}

	list, err := h.deps.ListAlbums(r.Context(), user.ID)
	if err != nil {
		h.deps.Logger().ErrorContext(r.Context(), "list albums", "user", user.ID, "err", err)
		http.Error(w, "Failed to load albums", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Title":     "Albums",
		"User":      user,
		"Albums":    list,
		"Error":     errMsg,
		"CSRFToken": h.deps.EnsureCSRF(session),
	}
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	if err := h.deps.RenderTemplate(w, "albums.html", data); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// Detail shows the photos of one album and accepts multipart uploads.
func (h Handler) Detail(w http.ResponseWriter, r *http.Request) {
	user, ok := core.RequireUser(w, r, h.deps.CurrentUser)
	if !ok {
		return
	}
	album, ok := h.album(w, r, user.ID)
	if !ok {
		return
	}
	session, _ := h.deps.GetSession(r, core.SessionName)
	errMsg := ""

	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
		if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
			http.Error(w, "Upload too large", http.StatusBadRequest)
			return
		}
		if !h.deps.ValidateCSRF(session, r.FormValue("csrf_token")) {
			http.Error(w, "Invalid CSRF token", http.StatusBadRequest)
			return
		}
		msg, err := h.upload(r, album)
		if err != nil {
			h.deps.Logger().ErrorContext(r.Context(), "upload photo", "album", album.ID, "err", err)
			http.Error(w, "Failed to save photo", http.StatusInternalServerError)
			return
		}
		if msg == "" {
			h.redirectToAlbum(w, r, int64(album.ID))
			return
		}
		errMsg = msg
	}

	photos, err := h.deps.ListPhotos(r.Context(), album.ID)
	if err != nil {
		h.deps.Logger().ErrorContext(r.Context(), "list photos", "album", album.ID, "err", err)
		http.Error(w, "Failed to load photos", http.StatusInternalServerError)
		return
	}
	data := map[string]interface{}{
		"Title":     album.Title,
		"User":      user,
		"Album":     album,
		"Photos":    photos,
		"Error":     errMsg,
		"CSRFToken": h.deps.EnsureCSRF(session),
	}
	if err := session.Save(r, w); err != nil {
		http.Error(w, "Session error", http.StatusInternalServerError)
		return
	}
	if err := h.deps.RenderTemplate(w, "album_detail.html", data); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// Photo serves a stored photo. Only the album owner can fetch it.
func (h Handler) Photo(w http.ResponseWriter, r *http.Request) {
	user, ok := core.RequireUser(w, r, h.deps.CurrentUser)
	if !ok {
		return
	}
	album, ok := h.album(w, r, user.ID)
	if !ok {
		return
	}
	photoID, ok := core.ParseID(r.PathValue("photo"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	photo, err := h.deps.GetPhoto(r.Context(), album.ID, photoID)
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.deps.Logger().ErrorContext(r.Context(), "load photo", "photo", photoID, "err", err)
		http.Error(w, "Failed to load photo", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeFile(w, r, filepath.Join(h.cfg.PhotoDir, filepath.Base(photo.Filename)))
}

func (h Handler) redirectToAlbum(w http.ResponseWriter, r *http.Request, id int64) {
	target, err := h.deps.RouteURL("album-detail", "id", strconv.FormatInt(id, 10))
	if err != nil {
		h.deps.Logger().ErrorContext(r.Context(), "album url", "album", id, "err", err)
		http.Error(w, "Failed to load album", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// album resolves the {id} path segment to an album owned by userID and
// writes a 404 otherwise.
func (h Handler) album(w http.ResponseWriter, r *http.Request, userID int) (domain.Album, bool) {
	id, ok := core.ParseID(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return domain.Album{}, false
	}
	album, err := h.deps.GetAlbum(r.Context(), userID, id)
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return domain.Album{}, false
	}
	if err != nil {
		h.deps.Logger().ErrorContext(r.Context(), "load album", "album", id, "err", err)
		http.Error(w, "Failed to load album", http.StatusInternalServerError)
		return domain.Album{}, false
	}
	return album, true
}

// upload returns a user-facing message for rejected input, or an error when
// the photo could not be stored.
func (h Handler) upload(r *http.Request, album domain.Album) (string, error) {
	file, header, err := r.FormFile("photo")
	if err != nil || header == nil || header.Filename == "" {
		return "Choose a photo to upload", nil
	}
	defer file.Close()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !h.cfg.AllowedExts[ext] {
		return "Photo must be an image (png/jpg/gif/webp)", nil
	}
	caption := strings.TrimSpace(r.FormValue("caption"))
	if len([]rune(caption)) > maxCaptionLen {
		return "Caption is too long", nil
	}

	stored, err := media.SavePhoto(file, h.cfg.PhotoDir, h.cfg.MaxPhotoSize)
	switch {
	case errors.Is(err, media.ErrUnsupportedImage):
		return "Photo could not be read as an image", nil
	case errors.Is(err, media.ErrImageTooLarge):
		return "Photo dimensions are too large", nil
	case err != nil:
		return "", err
	}
	photo := domain.Photo{
		AlbumID:  album.ID,
		Filename: stored.Filename,
		Caption:  caption,
		Width:    stored.Width,
		Height:   stored.Height,
	}
	if _, err := h.deps.AddPhoto(r.Context(), photo); err != nil {
		if rmErr := os.Remove(filepath.Join(h.cfg.PhotoDir, stored.Filename)); rmErr != nil {
			h.deps.Logger().WarnContext(r.Context(), "remove unrecorded photo", "file", stored.Filename, "err", rmErr)
		}
		return "", fmt.Errorf("record photo %q: %w", stored.Filename, err)
	}
	return "", nil
}
