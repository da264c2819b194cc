package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"portal/internal/config"
	platformhttp "portal/internal/platform/http"
	sqlitestore "portal/internal/platform/storage/sqlite"
	"portal/internal/testutil"
)

func TestMainWiring(t *testing.T) {
	srv := testutil.NewServer(t)
	require.NotNil(t, platformhttp.Routes(srv))
}

func TestRoutesCommandPrintsTableInOrder(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	require.NoError(t, app.Run(context.Background(), []string{"portal", "routes"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 14)
	assert.Equal(t, []string{"/", "home", "HomeView", "true"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"/login", "login", "LoginView", "false"}, strings.Fields(lines[8]))
	assert.Equal(t, []string{"/profile", "profile", "ProfileView", "true"}, strings.Fields(lines[10]))
}

func TestUserAddCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PORTAL_DB_PATH", filepath.Join(dir, "portal.db"))
	t.Setenv("PORTAL_UPLOADS_DIR", filepath.Join(dir, "uploads"))

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.Reader = strings.NewReader("correct-horse\n")
	require.NoError(t, app.Run(context.Background(), []string{"portal", "user", "add", "alice"}))
	assert.Contains(t, out.String(), "created user alice")

	db, err := openDB(config.Config{DBPath: filepath.Join(dir, "portal.db")})
	require.NoError(t, err)
	defer db.Close()
	user, err := sqlitestore.NewRepos(db).Users.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))

	err = newApp().Run(context.Background(), []string{"portal", "user", "add", "--password", "correct-horse", "alice"})
	assert.Error(t, err)
}

func TestUserAddRejectsShortPassword(t *testing.T) {
	err := newApp().Run(context.Background(), []string{"portal", "user", "add", "--password", "short", "bob"})
	assert.EqualError(t, err, "Password must be at least 8 characters")
}
