package notes

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"portal/internal/domain"
)

type noteDeps struct {
	notes *[]domain.Note
	data  *map[string]interface{}
}

func newDeps() noteDeps {
	return noteDeps{
		notes: &[]domain.Note{{ID: 1, UserID: 7, Body: "first"}},
		data:  &map[string]interface{}{},
	}
}

func (noteDeps) CurrentUser(r *http.Request) (domain.User, error) {
	return domain.User{ID: 7, Username: "alice"}, nil
}
func (noteDeps) GetSession(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.NewCookieStore([]byte("test-secret")).Get(r, name)
}
func (noteDeps) EnsureCSRF(session *sessions.Session) string               { return "token" }
func (noteDeps) ValidateCSRF(session *sessions.Session, token string) bool { return token == "token" }
func (d noteDeps) ListNotes(ctx context.Context, userID int) ([]domain.Note, error) {
	return *d.notes, nil
}
func (d noteDeps) CreateNote(ctx context.Context, userID int, body string) (int64, error) {
	id := len(*d.notes) + 1
	*d.notes = append(*d.notes, domain.Note{ID: id, UserID: userID, Body: body})
	return int64(id), nil
}
func (d noteDeps) DeleteNote(ctx context.Context, userID, noteID int) error {
	for i, n := range *d.notes {
		if n.ID == noteID && n.UserID == userID {
			*d.notes = append((*d.notes)[:i], (*d.notes)[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
func (d noteDeps) RenderTemplate(w http.ResponseWriter, name string, data interface{}) error {
	*d.data = data.(map[string]interface{})
	return nil
}
func (noteDeps) Logger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func post(t *testing.T, deps noteDeps, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	form.Set("csrf_token", "token")
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	NewHandler(deps).Notes(rec, req)
	return rec
}

func TestNotesList(t *testing.T) {
	deps := newDeps()
	rec := httptest.NewRecorder()
	NewHandler(deps).Notes(rec, httptest.NewRequest(http.MethodGet, "/notes", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, (*deps.data)["Notes"], 1)
}

func TestNotesCreateAndDelete(t *testing.T) {
	deps := newDeps()
	rec := post(t, deps, url.Values{"body": {"second"}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Len(t, *deps.notes, 2)
	assert.Equal(t, "second", (*deps.notes)[1].Body)

	rec = post(t, deps, url.Values{"action": {"delete"}, "id": {"1"}})
	require.Equal(t, http.StatusFound, rec.Code)
	require.Len(t, *deps.notes, 1)
	assert.Equal(t, 2, (*deps.notes)[0].ID)
}

func TestNotesRejectsEmpty(t *testing.T) {
	deps := newDeps()
	rec := post(t, deps, url.Values{"body": {"   "}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Note is empty", (*deps.data)["Error"])
}

func TestNotesDeleteUnknown(t *testing.T) {
	rec := post(t, newDeps(), url.Values{"action": {"delete"}, "id": {"99"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotesRejectsBadCSRF(t *testing.T) {
	deps := newDeps()
	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader("body=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	NewHandler(deps).Notes(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, *deps.notes, 1)
}
