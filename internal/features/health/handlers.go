package health

import (
	"context"
	"net/http"
	"os"
	"time"

	"portal/internal/config"
	"portal/internal/platform/core"
)

const pingTimeout = 2 * time.Second

type Dependencies interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	cfg  config.Config
	deps Dependencies
}

// NewHandler builds a health handler with config dependencies.
func NewHandler(cfg config.Config, deps Dependencies) Handler {
	return Handler{cfg: cfg, deps: deps}
}

// Health reports database and upload storage availability. It answers 503
// when the database cannot be reached.
func (h Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":   "ok",
		"database": "ok",
		"uploads":  "ok",
	}
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	if err := h.deps.Ping(ctx); err != nil {
		status["status"] = "unavailable"
		status["database"] = err.Error()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		core.WriteJSON(w, status)
		return
	}
	if info, err := os.Stat(h.cfg.UploadsDir); err != nil || !info.IsDir() {
		status["uploads"] = "missing"
	}
	core.WriteJSON(w, status)
}
