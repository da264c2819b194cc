package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings loaded from environment variables.
type Config struct {
	Env             string          `env:"ENV" envDefault:"development"`
	IsProd          bool            `env:"-"`
	Secret          string          `env:"SECRET_KEY"`
	SecretKey       []byte          `env:"-"`
	DBPath          string          `env:"DB_PATH" envDefault:"portal.db"`
	UploadsDir      string          `env:"UPLOADS_DIR" envDefault:"uploads"`
	PhotoDir        string          `env:"-"`
	AllowedExts     map[string]bool `env:"-"`
	Host            string          `env:"HOST" envDefault:"127.0.0.1"`
	Port            string          `env:"PORT" envDefault:"5000"`
	CookieSecure    *bool           `env:"COOKIE_SECURE"`
	SameSite        string          `env:"COOKIE_SAMESITE" envDefault:"lax"`
	CookieSameSite  http.SameSite   `env:"-"`
	MaxUploadBytes  int64           `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	DisableCSRF     *bool           `env:"DISABLE_CSRF"`
	CSRFDisabled    bool            `env:"-"`
	LogLevel        string          `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string          `env:"LOG_FORMAT" envDefault:"text"`
	LoginRateLimit  int             `env:"LOGIN_RATE_LIMIT" envDefault:"20"`
	LoginRateWindow time.Duration   `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`
	TrustProxy      bool            `env:"TRUST_PROXY"`
}

// Secure reports whether cookies carry the Secure attribute.
func (c Config) Secure() bool {
	if c.CookieSecure != nil {
		return *c.CookieSecure
	}
	return c.IsProd
}

// LoadConfig reads PORTAL_* environment variables, applies defaults, and
// validates required settings.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "PORTAL_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return finalize(cfg)
}

// LoadFrom is LoadConfig over an explicit environment map.
func LoadFrom(environment map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "PORTAL_", Environment: environment}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return finalize(cfg)
}

func finalize(cfg Config) (Config, error) {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.IsProd = cfg.Env == "production"

	if cfg.Secret == "" && cfg.IsProd {
		return Config{}, errors.New("PORTAL_SECRET_KEY is required in production")
	}
	if cfg.Secret == "" {
		cfg.Secret = randomSecret(32)
	}
	cfg.SecretKey = []byte(cfg.Secret)

	cfg.CookieSameSite = ParseSameSite(cfg.SameSite)
	cfg.CSRFDisabled = !cfg.IsProd
	if cfg.DisableCSRF != nil {
		cfg.CSRFDisabled = *cfg.DisableCSRF
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 * 1024 * 1024
	}
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 20
	}
	if cfg.LoginRateWindow <= 0 {
		cfg.LoginRateWindow = time.Minute
	}
	cfg.PhotoDir = filepath.Join(cfg.UploadsDir, "photos")
	cfg.AllowedExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}
	return cfg, nil
}

// ParseSameSite maps lax|strict|none to the cookie mode, defaulting to lax.
func ParseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// randomSecret returns a hex token, falling back to a timestamp on RNG failure.
func randomSecret(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
