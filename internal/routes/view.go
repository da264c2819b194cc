package routes

import (
	"net/http"
	"sync"
	"sync/atomic"
)

// View is a lazily resolved display unit. The loader runs once, on the first
// navigation that needs the view.
type View struct {
	id     string
	load   func() http.Handler
	once   sync.Once
	h      http.Handler
	loaded atomic.Bool
}

// Lazy returns a view reference that resolves through loader on first use.
func Lazy(id string, loader func() http.Handler) *View {
	return &View{id: id, load: loader}
}

// Eager wraps an already constructed handler.
func Eager(id string, h http.Handler) *View {
	return Lazy(id, func() http.Handler { return h })
}

// ID returns the view identifier.
func (v *View) ID() string {
	return v.id
}

// Handler resolves the view. A nil loader or a loader returning nil yields a
// handler answering 500.
func (v *View) Handler() http.Handler {
	v.once.Do(func() {
		if v.load != nil {
			v.h = v.load()
		}
		if v.h == nil {
			id := v.id
			v.h = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "View unavailable: "+id, http.StatusInternalServerError)
			})
		}
		v.loaded.Store(true)
	})
	return v.h
}

// Loaded reports whether the view has been resolved.
func (v *View) Loaded() bool {
	return v.loaded.Load()
}
