package testutil

import (
	"database/sql"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
	"portal/internal/config"
	platformserver "portal/internal/platform/server"
	sqlitestore "portal/internal/platform/storage/sqlite"
)

func TestConfig(t *testing.T) config.Config {
	t.Helper()
	uploadsDir := filepath.Join(t.TempDir(), "uploads")
	return config.Config{
		Env:             "test",
		SecretKey:       []byte("test-secret-test-secret-test-sec"),
		UploadsDir:      uploadsDir,
		PhotoDir:        filepath.Join(uploadsDir, "photos"),
		AllowedExts:     map[string]bool{".png": true},
		MaxUploadBytes:  1 << 20,
		CookieSameSite:  http.SameSiteLaxMode,
		CSRFDisabled:    true,
		LoginRateLimit:  100,
		LoginRateWindow: time.Minute,
	}
}

// OpenDB returns an initialised in-memory database. A single connection
// keeps every query on the same in-memory instance.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := sqlitestore.InitDB(db); err != nil {
		t.Fatalf("init db: %v", err)
	}
	return db
}

func NewServer(t *testing.T) *platformserver.Server {
	t.Helper()
	return NewServerWithConfig(t, TestConfig(t))
}

func NewServerWithConfig(t *testing.T, cfg config.Config) *platformserver.Server {
	t.Helper()
	srv, err := platformserver.NewServer(cfg, OpenDB(t), nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}
